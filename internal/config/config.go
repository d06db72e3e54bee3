package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"habitd/internal/util"
)

// Storage drivers understood by the server.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Server struct {
		Addr      string `yaml:"addr"`
		StaticDir string `yaml:"static_dir"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Storage struct {
		Driver string `yaml:"driver"`
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		Postgres struct {
			URL string `yaml:"url"`
		} `yaml:"postgres"`
		Mongo struct {
			URI      string `yaml:"uri"`
			Database string `yaml:"database"`
		} `yaml:"mongo"`
	} `yaml:"storage"`

	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`
}

// Default returns the configuration used when no file or variable overrides it.
func Default() *Config {
	var cfg Config
	cfg.Server.Addr = ":5000"
	cfg.Server.StaticDir = "web/dist"
	cfg.Log.Level = "info"
	cfg.Storage.Driver = DriverSQLite
	cfg.Storage.SQLite.Path = "data/habitd.db"
	cfg.Storage.Mongo.Database = "habitd"
	cfg.Auth.TokenTTL = 30 * 24 * time.Hour
	return &cfg
}

// Load reads path on top of Default, expanding ${VAR} placeholders from the
// environment, then applies HABITD_* overrides and validates the result. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("error reading config file: %w", err)
		default:
			if err := yaml.Unmarshal([]byte(expandEnv(string(data))), cfg); err != nil {
				return nil, fmt.Errorf("error parsing config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandEnv replaces ${NAME} placeholders with environment values. Bare $NAME
// is left alone so secrets containing '$' survive.
func expandEnv(content string) string {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		content = strings.ReplaceAll(content, "${"+pair[0]+"}", pair[1])
	}
	return content
}

func (c *Config) applyEnv() {
	c.Server.Addr = util.EnvOrDefault("HABITD_ADDR", c.Server.Addr)
	c.Server.StaticDir = util.EnvOrDefault("HABITD_STATIC_DIR", c.Server.StaticDir)
	c.Log.Level = util.EnvOrDefault("HABITD_LOG_LEVEL", c.Log.Level)
	c.Storage.Driver = util.EnvOrDefault("HABITD_DB_DRIVER", c.Storage.Driver)
	c.Storage.SQLite.Path = util.EnvOrDefault("HABITD_DB_PATH", c.Storage.SQLite.Path)
	c.Storage.Postgres.URL = util.EnvOrDefault("HABITD_POSTGRES_URL", c.Storage.Postgres.URL)
	c.Storage.Mongo.URI = util.EnvOrDefault("HABITD_MONGO_URI", c.Storage.Mongo.URI)
	c.Storage.Mongo.Database = util.EnvOrDefault("HABITD_MONGO_DB", c.Storage.Mongo.Database)
	c.Auth.JWTSecret = util.EnvOrDefault("HABITD_JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = util.EnvDurationOrDefault("HABITD_TOKEN_TTL", c.Auth.TokenTTL)
}

// Validate checks that the selected driver has what it needs.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required")
		}
	case DriverPostgres:
		if c.Storage.Postgres.URL == "" {
			return fmt.Errorf("storage.postgres.url is required")
		}
	case DriverMongo:
		if c.Storage.Mongo.URI == "" || c.Storage.Mongo.Database == "" {
			return fmt.Errorf("storage.mongo.uri and storage.mongo.database are required")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}
