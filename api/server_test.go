package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zeta-labs/riemann/db"
)

type stubSource struct{}

func (stubSource) Uptime() time.Duration         { return 90 * time.Second }
func (stubSource) GuildCount() int               { return 3 }
func (stubSource) GatewayLatency() time.Duration { return 120 * time.Millisecond }
func (stubSource) Version() string               { return "0.1.0" }

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.engine.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s := NewServer(Config{Addr: ":0"}, stubSource{}, db.NoDatabase{})

	w := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStatus(t *testing.T) {
	s := NewServer(Config{Addr: ":0"}, stubSource{}, db.NoDatabase{})

	w := get(t, s, "/api/v1/status")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"guilds":3`)
	assert.Contains(t, w.Body.String(), `"version":"0.1.0"`)
	assert.Contains(t, w.Body.String(), `"gateway_latency_ms":120`)
}

func TestDatabaseDown(t *testing.T) {
	s := NewServer(Config{Addr: ":0"}, stubSource{}, db.NoDatabase{})

	w := get(t, s, "/api/v1/database")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"down"`)
}
