package config

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env               string
	LogLevel          string
	HTTPAddr          string
	DBType            string
	DBDSN             string
	SQLitePath        string
	FileDailyLogs     string
	AuthPassword      string
	SessionSigningKey string
	Timezone          string
}

var (
	cfg     *Config
	loadErr error
	once    sync.Once
)

// Load reads .env (when present) and the environment once per process.
func Load() (*Config, error) {
	once.Do(func() {
		_ = godotenv.Load()
		cfg = FromEnv()
		loadErr = cfg.Validate()
	})
	return cfg, loadErr
}

// FromEnv builds a Config from the current environment without memoizing it.
func FromEnv() *Config {
	c := &Config{
		Env:               getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8088"),
		DBType:            getEnv("STORAGE_BACKEND", "file"),
		DBDSN:             getEnv("POSTGRES_DSN", ""),
		SQLitePath:        getEnv("SQLITE_PATH", "data/rehab.db"),
		FileDailyLogs:     getEnv("DAILY_LOGS_FILE", "data/daily_logs.json"),
		AuthPassword:      os.Getenv("AUTH_PASSWORD"),
		SessionSigningKey: os.Getenv("SESSION_SIGNING_KEY"),
		Timezone:          getEnv("APP_TIMEZONE", "Local"),
	}
	if c.SessionSigningKey == "" {
		c.SessionSigningKey = c.AuthPassword
	}
	return c
}

func (c *Config) Validate() error {
	switch c.DBType {
	case "postgres":
		if c.DBDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	case "file":
		if c.FileDailyLogs == "" {
			return errors.New("file storage requires DAILY_LOGS_FILE to be set")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: file, sqlite, postgres")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.AuthPassword == "" {
		return errors.New("AUTH_PASSWORD is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return errors.New("APP_TIMEZONE must be an IANA time zone name: " + err.Error())
	}
	return nil
}

// Location returns the configured time zone used to decide what "today" is.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// SecureCookies reports whether session cookies need the Secure attribute.
func (c *Config) SecureCookies() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
