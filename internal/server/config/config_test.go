package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, 24*time.Hour, c.TokenTTL)
	assert.Error(t, c.Validate(), "no secret by default")

	c.JWTSecret = secret
	assert.NoError(t, c.Validate())
}

func TestLoadEnv(t *testing.T) {
	var c Config
	c.LoadDefaults()

	require.NoError(t, c.LoadEnv(env(map[string]string{
		"MEDICNOTE_SERVER_ADDR": "127.0.0.1:9090",
		"MEDICNOTE_SERVER_DB":   "/var/lib/medicnote/server.db",
		"MEDICNOTE_JWT_SECRET":  secret,
		"MEDICNOTE_TOKEN_TTL":   "2h",
	})))

	assert.Equal(t, "127.0.0.1:9090", c.Addr)
	assert.Equal(t, "/var/lib/medicnote/server.db", c.DBPath)
	assert.Equal(t, secret, c.JWTSecret)
	assert.Equal(t, 2*time.Hour, c.TokenTTL)

	err := c.LoadEnv(env(map[string]string{"MEDICNOTE_TOKEN_TTL": "soon"}))
	assert.ErrorContains(t, err, "MEDICNOTE_TOKEN_TTL")
}

func TestParseFlags(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.DBPath = "from-env.db"

	require.NoError(t, c.ParseFlags("test", []string{"-a", ":7000", "-t", "30m", "-s", secret}))

	assert.Equal(t, ":7000", c.Addr)
	assert.Equal(t, 30*time.Minute, c.TokenTTL)
	assert.Equal(t, "from-env.db", c.DBPath, "unset flags keep earlier sources")

	assert.Error(t, c.ParseFlags("test", []string{"-unknown"}))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		modify func(*Config)
		name   string
	}{
		{name: "short secret", modify: func(c *Config) { c.JWTSecret = "short" }},
		{name: "empty addr", modify: func(c *Config) { c.Addr = "" }},
		{name: "empty db", modify: func(c *Config) { c.DBPath = "" }},
		{name: "zero ttl", modify: func(c *Config) { c.TokenTTL = 0 }},
		{name: "zero rate", modify: func(c *Config) { c.AuthRateLimit = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			c.JWTSecret = secret
			tt.modify(&c)
			assert.Error(t, c.Validate())
		})
	}
}
