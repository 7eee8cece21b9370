package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "blog.yaml"

type Config struct {
	Addr            string        `yaml:"addr"`
	Database        string        `yaml:"database"`
	AuthEnabled     bool          `yaml:"auth_enabled"`
	SecureCookies   bool          `yaml:"secure_cookies"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	Timezone        string        `yaml:"timezone"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Seed            bool          `yaml:"seed"`

	location *time.Location
}

func defaultConfig() Config {
	return Config{
		Addr:            ":8080",
		Database:        "blog.db",
		AuthEnabled:     true,
		SessionTTL:      24 * time.Hour,
		Timezone:        "Asia/Tokyo",
		LogLevel:        "info",
		LogFormat:       "text",
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file
// named by BLOG_CONFIG (or blog.yaml if it exists), then the environment.
// A .env file in the working directory is loaded into the environment first.
func LoadConfig() (Config, error) {
	godotenv.Load()

	cfg := defaultConfig()

	path := os.Getenv("BLOG_CONFIG")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	if err := loadConfigFile(&cfg, path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := loadConfigEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func loadConfigEnv(cfg *Config) error {
	if v := os.Getenv("BLOG_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("BLOG_DB"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("BLOG_TZ"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}

	bools := []struct {
		env string
		dst *bool
	}{
		{"BLOG_AUTH", &cfg.AuthEnabled},
		{"SECURE_COOKIES", &cfg.SecureCookies},
		{"BLOG_SEED", &cfg.Seed},
	}
	for _, b := range bools {
		v := os.Getenv(b.env)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", b.env, err)
		}
		*b.dst = parsed
	}

	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"SESSION_TTL", &cfg.SessionTTL},
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.env, err)
		}
		*d.dst = parsed
	}

	return nil
}

func (c *Config) validate() error {
	if c.Database == "" {
		return errors.New("database path must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	c.location = loc
	return nil
}

// Location is the zone timestamps are displayed in.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}
