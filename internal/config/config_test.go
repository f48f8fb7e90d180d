package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("AUTH_PASSWORD", "hunter2")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("SESSION_SIGNING_KEY", "")
	t.Setenv("APP_ENV", "")

	c := FromEnv()
	require.NoError(t, c.Validate())
	assert.Equal(t, "development", c.Env)
	assert.Equal(t, "file", c.DBType)
	assert.Equal(t, ":8088", c.HTTPAddr)
	assert.Equal(t, "hunter2", c.SessionSigningKey)
	assert.False(t, c.SecureCookies())
}

func TestValidate(t *testing.T) {
	base := Config{Env: "production", DBType: "file", FileDailyLogs: "x.json", AuthPassword: "pw", Timezone: "UTC"}
	require.NoError(t, base.Validate())
	assert.True(t, base.SecureCookies())

	cases := map[string]func(*Config){
		"postgres without dsn": func(c *Config) { c.DBType = "postgres" },
		"sqlite without path":  func(c *Config) { c.DBType = "sqlite"; c.SQLitePath = "" },
		"unknown backend":      func(c *Config) { c.DBType = "mongo" },
		"unknown env":          func(c *Config) { c.Env = "qa" },
		"no password":          func(c *Config) { c.AuthPassword = "" },
		"bad timezone":         func(c *Config) { c.Timezone = "Mars/Olympus" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLocation(t *testing.T) {
	c := Config{Timezone: "UTC"}
	assert.Equal(t, "UTC", c.Location().String())

	c.Timezone = "Nowhere/Special"
	assert.Equal(t, time.Local, c.Location())
}
