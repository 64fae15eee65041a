// Package config loads the TOML configuration file of a bot and fills
// in the library defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	_ "embed"

	"github.com/pelletier/go-toml/v2"

	"github.com/zeta-labs/riemann/api"
	"github.com/zeta-labs/riemann/cache"
	"github.com/zeta-labs/riemann/db"
	"github.com/zeta-labs/riemann/logging"
	"github.com/zeta-labs/riemann/scheduler"
)

// DefaultPath is used when no configuration path is given.
const DefaultPath = "conf.toml"

//go:embed defaults.toml
var defaultsTOML []byte

// Config is the parsed configuration of a bot. The sections the
// library owns are typed; everything else stays reachable through Get
// so bot extensions can carry their own tables.
type Config struct {
	Token     string           `toml:"token"`
	Database  db.Config        `toml:"database"`
	Cache     cache.Config     `toml:"cache"`
	Logging   logging.Config   `toml:"logging"`
	Scheduler scheduler.Config `toml:"scheduler"`
	API       api.Config       `toml:"api"`

	raw map[string]any
}

// Load reads the TOML file at path, merges the library defaults under
// it and returns the parsed configuration. An empty path falls back to
// DefaultPath. A missing file is an error: the bot never starts from
// defaults alone.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config: missing TOML configuration file %q", path)
		}
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes raw TOML and merges the library defaults under it.
func Parse(data []byte) (*Config, error) {
	var user map[string]any
	if err := toml.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("config: parse TOML: %w", err)
	}
	if user == nil {
		user = make(map[string]any)
	}

	var defaults map[string]any
	if err := toml.Unmarshal(defaultsTOML, &defaults); err != nil {
		return nil, fmt.Errorf("config: parse defaults: %w", err)
	}

	for key, content := range defaults {
		addDefault(key, content, user)
	}

	merged, err := toml.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("config: merge defaults: %w", err)
	}

	cfg := &Config{raw: user}
	if err := toml.Unmarshal(merged, cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// addDefault inserts a default value unless the user configuration
// already carries the key. Tables recurse so a partial user table
// keeps the remaining default keys.
func addDefault(key string, content any, conf map[string]any) {
	existing, ok := conf[key]
	if !ok {
		conf[key] = content
		return
	}

	defTable, defOK := content.(map[string]any)
	curTable, curOK := existing.(map[string]any)
	if defOK && curOK {
		for subkey, subcontent := range defTable {
			addDefault(subkey, subcontent, curTable)
		}
	}
}

// Get looks up a dotted path ("logging.discord.channel-id") in the
// merged configuration tree. The boolean reports whether the full path
// exists.
func (c *Config) Get(path string) (any, bool) {
	cur := any(c.raw)
	for _, part := range strings.Split(path, ".") {
		table, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = table[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
