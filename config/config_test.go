package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing TOML configuration file")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.toml")
	require.NoError(t, os.WriteFile(path, []byte(`token = "abc"`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Token)
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`token = "abc"`))
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, "none", cfg.Database.Type)
	assert.Equal(t, "riemann.db", cfg.Database.SQLite.Database)
	assert.Equal(t, "none", cfg.Cache.Type)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, "stderr", cfg.Logging.Type)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.API.Enabled)
	assert.Equal(t, ":8080", cfg.API.Addr)
}

func TestParseUserValuesWin(t *testing.T) {
	cfg, err := Parse([]byte(`
token = "abc"

[database]
type = "sqlite"

[database.sqlite]
database = "/tmp/custom.db"

[logging.discord]
channel-id = "123"
`))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "/tmp/custom.db", cfg.Database.SQLite.Database)
	assert.Equal(t, "123", cfg.Logging.Discord.ChannelID)

	// Sibling defaults survive a partial table override.
	assert.Equal(t, "stderr", cfg.Logging.Type)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "", cfg.Database.PostgreSQL.Conninfo)
}

func TestGet(t *testing.T) {
	cfg, err := Parse([]byte(`
token = "abc"

[greeter]
message = "hello"
delay = 3
`))
	require.NoError(t, err)

	msg, ok := cfg.Get("greeter.message")
	require.True(t, ok)
	assert.Equal(t, "hello", msg)

	delay, ok := cfg.Get("greeter.delay")
	require.True(t, ok)
	assert.EqualValues(t, 3, delay)

	// Defaults are part of the merged tree.
	typ, ok := cfg.Get("database.type")
	require.True(t, ok)
	assert.Equal(t, "none", typ)

	_, ok = cfg.Get("greeter.missing")
	assert.False(t, ok)
	_, ok = cfg.Get("greeter.message.deeper")
	assert.False(t, ok)
}

func TestParseInvalidTOML(t *testing.T) {
	_, err := Parse([]byte(`= broken`))
	require.Error(t, err)
}
