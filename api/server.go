// Package api serves an optional HTTP status surface next to the
// gateway connection, mainly for container health checks.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zeta-labs/riemann/db"
	"github.com/zeta-labs/riemann/logging"
)

// Config maps the [api] table of the configuration file.
type Config struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// StatusSource exposes the live bot state the API reports on.
type StatusSource interface {
	Uptime() time.Duration
	GuildCount() int
	GatewayLatency() time.Duration
	Version() string
}

// Server is the HTTP status server.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	source StatusSource
	db     db.Database
}

// NewServer wires the routes. Start actually binds the listener.
func NewServer(cfg Config, source StatusSource, database db.Database) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine: engine,
		http:   &http.Server{Addr: cfg.Addr, Handler: engine},
		source: source,
		db:     database,
	}

	engine.GET("/healthz", s.healthz)
	v1 := engine.Group("/api/v1")
	v1.GET("/status", s.status)
	v1.GET("/database", s.database)

	return s
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		err := s.http.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log := logging.Base()
			log.Error().Err(err).Msg("status api failed")
		}
	}()
	log := logging.Base()
	log.Info().Str("addr", s.http.Addr).Msg("status api listening")
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":            s.source.Version(),
		"uptime":             s.source.Uptime().String(),
		"guilds":             s.source.GuildCount(),
		"gateway_latency_ms": s.source.GatewayLatency().Milliseconds(),
	})
}

func (s *Server) database(c *gin.Context) {
	if err := s.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "up"})
}
