// Package config loads ldapwired's configuration from file, environment,
// and defaults via viper, a layered config loader rather than a
// hand-rolled flag/file parser.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is ldapwired's static, process-wide configuration: everything
// needed to build a ldapwire.Config and open listening sockets before any
// Endpoint exists.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Reject  RejectConfig  `mapstructure:"reject" yaml:"reject"`
}

// ServerConfig holds listener configuration. Address is host:port for a
// TCP listener, or a filesystem path when Unix is true (mirroring the
// core engine's port-131072 node-name sentinel at the config layer).
type ServerConfig struct {
	Address        string        `mapstructure:"address" yaml:"address"`
	Unix           bool          `mapstructure:"unix" yaml:"unix"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	MaxConnections int           `mapstructure:"max_connections" yaml:"max_connections"`
}

// LoggingConfig holds the logging level and format settings. cmd/ldapwired
// does not read them: it always logs through obalog.NewDefault.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// RejectConfig lists opcode names refused at startup, applied to every
// Endpoint's default reject bitmap via opcode.Table's Name field.
type RejectConfig struct {
	Opcodes []string `mapstructure:"opcodes" yaml:"opcodes"`
}

// Default returns the configuration used when no file, flag, or
// environment variable overrides a setting.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        "127.0.0.1:389",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxConnections: 1024,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads configPath (if non-empty) or the default search locations,
// overlays LDAPWIRED_-prefixed environment variables onto the keys the
// file sets, and falls back to Default for anything left unset. When no
// config file is found, Default is returned as is and the environment is
// not consulted.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LDAPWIRED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("ldapwired")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(home + "/ldapwired")
		}
	}

	cfg := Default()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, os.ErrNotExist) {
			if configPath == "" {
				return cfg, nil
			}
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
		return cfg, nil
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
