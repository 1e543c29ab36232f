package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfgJSON := `{"upstream":{"base_url":"http://u","timeout":"15s","api_key_name":"K"},"http":{"host":"h","port":9090,"route":"/p"},"secrets":{"driver":"aws-sm","region":"r","prefix":"p"},"log":{"level":"debug"},"audit":{"driver":"sqlite","dsn":"a.db"},"event":{"driver":"nats","url":"nats://x"},"cors":{"allow_origin":"*"},"max_body_bytes":10}`
	c, err := LoadConfig(writeTemp(t, "config.json", cfgJSON))
	require.NoError(t, err)

	assert.Equal(t, "http://u", c.Upstream.BaseURL)
	assert.Equal(t, 15*time.Second, c.Upstream.Timeout.Std())
	assert.Equal(t, "K", c.Upstream.APIKeyName)
	assert.Equal(t, HTTPConfig{Host: "h", Port: 9090, Route: "/p"}, c.HTTP)
	assert.Equal(t, SecretsConfig{Driver: "aws-sm", Region: "r", Prefix: "p"}, c.Secrets)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, AuditConfig{Driver: "sqlite", DSN: "a.db"}, c.Audit)
	assert.Equal(t, "nats://x", c.Event.URL)
	assert.Equal(t, "*", c.CORS.AllowOrigin)
	assert.Equal(t, int64(10), c.MaxBodyBytes)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_Partial(t *testing.T) {
	c, err := LoadConfig(writeTemp(t, "partial.json", `{"http":{"port":1234}}`))
	require.NoError(t, err)

	// Untouched sections keep their defaults.
	assert.Equal(t, 1234, c.HTTP.Port)
	assert.Equal(t, Default().Upstream, c.Upstream)
	assert.Equal(t, "/api/geminiProxy", c.HTTP.Route)
}

func TestLoadConfig_YAML(t *testing.T) {
	cfgYAML := `
upstream:
  base_url: http://yaml
  timeout: 5
http:
  port: 7000
tracing:
  exporter: stdout
`
	c, err := LoadConfig(writeTemp(t, "config.yaml", cfgYAML))
	require.NoError(t, err)
	assert.Equal(t, "http://yaml", c.Upstream.BaseURL)
	assert.Equal(t, 5*time.Second, c.Upstream.Timeout.Std())
	assert.Equal(t, 7000, c.HTTP.Port)
	require.NotNil(t, c.Tracing)
	assert.Equal(t, "stdout", c.Tracing.Exporter)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	_, err = LoadConfig(writeTemp(t, "bad.json", `{"upstream":`))
	assert.Error(t, err)

	_, err = LoadConfig(writeTemp(t, "badtimeout.json", `{"upstream":{"timeout":"soon"}}`))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GEMINI_UPSTREAM_URL", "http://env")
	t.Setenv("GEMINI_PROXY_TIMEOUT", "2.5")
	t.Setenv("PORT", "3000")
	t.Setenv("AUDIT_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u@h/db")
	t.Setenv("OTEL_EXPORTER", "otlp")
	t.Setenv("CORS_ALLOW_ORIGIN", "https://app.example")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://env", c.Upstream.BaseURL)
	assert.Equal(t, 2500*time.Millisecond, c.Upstream.Timeout.Std())
	assert.Equal(t, 3000, c.HTTP.Port)
	assert.Equal(t, ":3000", c.Addr())
	assert.Equal(t, "postgres", c.Audit.Driver)
	assert.Equal(t, "postgres://u@h/db", c.Audit.DSN)
	require.NotNil(t, c.Tracing)
	assert.Equal(t, "otlp", c.Tracing.Exporter)
	assert.Equal(t, "https://app.example", c.CORS.AllowOrigin)
	assert.NoError(t, c.Validate())
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("PORT", "eighty")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad base url", func(c *Config) { c.Upstream.BaseURL = "not a url" }},
		{"zero timeout", func(c *Config) { c.Upstream.Timeout = 0 }},
		{"empty key name", func(c *Config) { c.Upstream.APIKeyName = "" }},
		{"relative route", func(c *Config) { c.HTTP.Route = "proxy" }},
		{"unknown secrets driver", func(c *Config) { c.Secrets.Driver = "vault" }},
		{"unknown audit driver", func(c *Config) { c.Audit.Driver = "mongo" }},
		{"postgres without dsn", func(c *Config) { c.Audit.Driver = "postgres" }},
		{"mixed-case postgres without dsn", func(c *Config) { c.Audit.Driver = "Postgres" }},
		{"nats without url", func(c *Config) { c.Event.Driver = "nats" }},
		{"unknown exporter", func(c *Config) { c.Tracing = &TracingConfig{Exporter: "jaeger"} }},
	}
	assert.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
