package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Viewer     string           `yaml:"viewer"`
	Storage    StorageConfig    `yaml:"storage"`
	Session    SessionConfig    `yaml:"session"`
	Engagement EngagementConfig `yaml:"engagement"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`
	PerPage int    `yaml:"perPage"`
}

type StorageConfig struct {
	// "memory" or "sqlite"
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// Optional YAML seed replacing the embedded one
	SeedPath string `yaml:"seedPath"`
}

type SessionConfig struct {
	Name string `yaml:"name"`
	// If empty, read from env CHIRP_SECRET_KEY
	Secret string `yaml:"secret"`
}

type EngagementConfig struct {
	// Mutating requests allowed per second; zero or less disables the limit
	RatePerSecond float64 `yaml:"ratePerSecond"`
	Burst         int     `yaml:"burst"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Server:     ServerConfig{Addr: ":5000", PerPage: 30},
		Viewer:     "yourhandle",
		Storage:    StorageConfig{Driver: "memory", DSN: ":memory:"},
		Session:    SessionConfig{Name: "session", Secret: "development key"},
		Engagement: EngagementConfig{RatePerSecond: 10, Burst: 20},
		Log:        LogConfig{Level: "info"},
	}
}

// ResolveEnv overrides config fields from environment variables when set.
func (c *Config) ResolveEnv() {
	if v := os.Getenv("CHIRP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CHIRP_VIEWER"); v != "" {
		c.Viewer = v
	}
	if v := os.Getenv("CHIRP_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("CHIRP_STORAGE_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("CHIRP_SECRET_KEY"); v != "" {
		c.Session.Secret = v
	}
	if v := os.Getenv("CHIRP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("CHIRP_RATE_PER_SECOND"), 64); err == nil {
		c.Engagement.RatePerSecond = v
	}
}

// Load reads YAML config from path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Viewer == "" {
		return errors.New("viewer must be set")
	}
	if c.Session.Secret == "" {
		return errors.New("session secret must be set")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must be set")
	}
	if c.Server.PerPage <= 0 {
		return errors.New("server.perPage must be positive")
	}
	switch c.Storage.Driver {
	case "", "memory":
	case "sqlite", "sqlite3":
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn must be set for sqlite")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
