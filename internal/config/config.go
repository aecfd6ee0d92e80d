package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the settings shared by the serve and play commands.
type Config struct {
	LogLevel          string        `yaml:"log-level" env:"GOMOKU_LOG_LEVEL" env-default:"info"`
	HTTPAddr          string        `yaml:"http-addr" env:"GOMOKU_HTTP_ADDR" env-default:":8080"`
	SessionTTL        time.Duration `yaml:"session-ttl" env:"GOMOKU_SESSION_TTL" env-default:"2h"`
	SweepInterval     time.Duration `yaml:"sweep-interval" env:"GOMOKU_SWEEP_INTERVAL" env-default:"5m"`
	HeartbeatInterval time.Duration `yaml:"heartbeat-interval" env:"GOMOKU_HEARTBEAT_INTERVAL" env-default:"15s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown-timeout" env:"GOMOKU_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "gomoku", "config.yml")
}

// Load reads a .env file from the working directory if present, then the
// YAML file at path, then GOMOKU_* environment overrides. An empty path uses
// DefaultPath when that file exists and the environment alone otherwise.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to load .env file: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultPath()); err == nil {
			path = DefaultPath()
		}
	}

	conf := &Config{}
	if path == "" {
		if err := cleanenv.ReadEnv(conf); err != nil {
			return nil, fmt.Errorf("unable to read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, conf); err != nil {
		return nil, fmt.Errorf("unable to load config file %s: %w", path, err)
	}

	if _, err := conf.Level(); err != nil {
		return nil, err
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// validate rejects durations that would stop the janitor or panic a ticker.
func (c *Config) validate() error {
	for _, d := range []struct {
		key string
		val time.Duration
	}{
		{"session-ttl", c.SessionTTL},
		{"sweep-interval", c.SweepInterval},
		{"heartbeat-interval", c.HeartbeatInterval},
		{"shutdown-timeout", c.ShutdownTimeout},
	} {
		if d.val <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.key, d.val)
		}
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("log-level: %w", err)
	}
	return lvl, nil
}
