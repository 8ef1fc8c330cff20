// Package config loads server configuration from the environment and an
// optional config file.
//
// Configuration is resolved by viper in the usual precedence order:
// explicit env vars beat the config file, which beats the built-in
// defaults. Env vars use the MOODTUNE_ prefix, e.g.
//
//	MOODTUNE_PORT=9090
//	MOODTUNE_DB_PATH=/var/lib/moodtune/prod.db
//	MOODTUNE_AUTH_SECRET=$(openssl rand -hex 32)
//
// The config file (config.yaml in the working directory) is optional —
// a missing file is not an error, env vars alone are enough to run.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the server needs to start.
type Config struct {
	Port        int      `mapstructure:"port"`
	DBPath      string   `mapstructure:"db_path"`
	AuthSecret  string   `mapstructure:"auth_secret"` // HMAC secret shared with the identity provider
	AuthIssuer  string   `mapstructure:"auth_issuer"` // expected "iss" claim on bearer tokens
	CORSOrigins []string `mapstructure:"cors_origins"`
	LogLevel    string   `mapstructure:"log_level"` // debug, info, warn, error
}

// Load reads configuration from config.yaml (if present) and the
// environment, applying defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("MOODTUNE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults double as the key registry: AutomaticEnv only resolves keys
	// viper already knows about, so every key needs a default here.
	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "data/moodtune.db")
	v.SetDefault("auth_secret", "")
	v.SetDefault("auth_issuer", "moodtune-identity")
	v.SetDefault("cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling: %w", err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: invalid port %d", cfg.Port)
	}

	return &cfg, nil
}
