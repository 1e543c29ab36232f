package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/awantoch/geminiproxy/constants"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Upstream     UpstreamConfig `json:"upstream" yaml:"upstream"`
	HTTP         HTTPConfig     `json:"http" yaml:"http"`
	Secrets      SecretsConfig  `json:"secrets" yaml:"secrets"`
	Log          LogConfig      `json:"log" yaml:"log"`
	Tracing      *TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`
	Audit        AuditConfig    `json:"audit" yaml:"audit"`
	Event        EventConfig    `json:"event" yaml:"event"`
	CORS         CORSConfig     `json:"cors" yaml:"cors"`
	MaxBodyBytes int64          `json:"max_body_bytes,omitempty" yaml:"max_body_bytes,omitempty"`
}

// UpstreamConfig describes the generative-language endpoint being proxied.
type UpstreamConfig struct {
	BaseURL string   `json:"base_url" yaml:"base_url"`
	Timeout Duration `json:"timeout" yaml:"timeout"`
	// APIKeyName is the secret name the credential is resolved under.
	APIKeyName string `json:"api_key_name" yaml:"api_key_name"`
}

type HTTPConfig struct {
	Host  string `json:"host" yaml:"host"`
	Port  int    `json:"port" yaml:"port"`
	Route string `json:"route" yaml:"route"`
}

type SecretsConfig struct {
	Driver string `json:"driver" yaml:"driver"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

type TracingConfig struct {
	Exporter    string `json:"exporter" yaml:"exporter"`
	Endpoint    string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	ServiceName string `json:"service_name,omitempty" yaml:"service_name,omitempty"`
}

// AuditConfig selects where one record per proxied exchange is written.
type AuditConfig struct {
	Driver string `json:"driver" yaml:"driver"`
	DSN    string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	Topic  string `json:"topic,omitempty" yaml:"topic,omitempty"`
}

type EventConfig struct {
	Driver    string `json:"driver" yaml:"driver"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
	ClusterID string `json:"cluster_id,omitempty" yaml:"cluster_id,omitempty"`
	ClientID  string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
}

type CORSConfig struct {
	AllowOrigin string `json:"allow_origin,omitempty" yaml:"allow_origin,omitempty"`
}

// Duration accepts either a Go duration string ("30s") or a number of seconds.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return d.set(secs)
	}
	return d.set(s)
}

func (d *Duration) set(v any) error {
	switch val := v.(type) {
	case float64:
		*d = Duration(time.Duration(val * float64(time.Second)))
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration type %T", v)
	}
	return nil
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:    constants.DefaultUpstreamBaseURL,
			Timeout:    Duration(constants.DefaultTimeout),
			APIKeyName: constants.EnvAPIKey,
		},
		HTTP: HTTPConfig{
			Port:  constants.DefaultPort,
			Route: constants.DefaultProxyRoute,
		},
		Secrets:      SecretsConfig{Driver: constants.SecretsDriverEnv},
		Log:          LogConfig{Level: "info"},
		Audit:        AuditConfig{Driver: constants.AuditDriverNone},
		Event:        EventConfig{Driver: constants.EventDriverMemory},
		MaxBodyBytes: constants.DefaultMaxBodyBytes,
	}
}

// LoadConfig reads a JSON or YAML config file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// FromEnv returns the defaults with the environment applied. The serverless
// entry points use this since they have no config file.
func FromEnv() (*Config, error) {
	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields with any environment variables that are set.
func (c *Config) ApplyEnv() error {
	setString(&c.Upstream.BaseURL, constants.EnvUpstreamURL)
	setString(&c.HTTP.Host, constants.EnvHost)
	setString(&c.HTTP.Route, constants.EnvRoute)
	setString(&c.Secrets.Driver, constants.EnvSecretsDriver)
	setString(&c.Secrets.Prefix, constants.EnvSecretsPrefix)
	setString(&c.Secrets.Region, constants.EnvAWSRegion)
	setString(&c.Log.Level, constants.EnvLogLevel)
	setString(&c.Audit.Driver, constants.EnvAuditDriver)
	setString(&c.Audit.DSN, constants.EnvDatabaseURL)
	setString(&c.Event.Driver, constants.EnvEventDriver)
	setString(&c.Event.URL, constants.EnvNATSURL)
	setString(&c.CORS.AllowOrigin, constants.EnvCORSAllowOrigin)

	if v := os.Getenv(constants.EnvTimeout); v != "" {
		var d Duration
		var raw any = v
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			raw = secs
		}
		if err := d.set(raw); err != nil {
			return fmt.Errorf("%s: %w", constants.EnvTimeout, err)
		}
		c.Upstream.Timeout = d
	}
	if v := os.Getenv(constants.EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", constants.EnvPort, v)
		}
		c.HTTP.Port = port
	}
	if v := os.Getenv(constants.EnvMaxBodyBytes); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid size %q", constants.EnvMaxBodyBytes, v)
		}
		c.MaxBodyBytes = n
	}
	if v := os.Getenv(constants.EnvTracingExporter); v != "" {
		c.tracing().Exporter = v
	}
	if v := os.Getenv(constants.EnvTracingEndpoint); v != "" {
		c.tracing().Endpoint = v
	}
	if v := os.Getenv(constants.EnvTracingService); v != "" {
		c.tracing().ServiceName = v
	}
	return nil
}

func (c *Config) tracing() *TracingConfig {
	if c.Tracing == nil {
		c.Tracing = &TracingConfig{}
	}
	return c.Tracing
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid upstream base_url %q", c.Upstream.BaseURL)
	}
	if c.Upstream.Timeout.Std() <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %s", c.Upstream.Timeout.Std())
	}
	if c.Upstream.APIKeyName == "" {
		return fmt.Errorf("upstream api_key_name is required")
	}
	if !strings.HasPrefix(c.HTTP.Route, "/") {
		return fmt.Errorf("http route must start with '/', got %q", c.HTTP.Route)
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must not be negative")
	}

	switch strings.ToLower(c.Secrets.Driver) {
	case "", constants.SecretsDriverEnv, constants.SecretsDriverAWS, constants.SecretsDriverAWSv2:
	default:
		return fmt.Errorf("unsupported secrets driver: %s", c.Secrets.Driver)
	}
	switch strings.ToLower(c.Audit.Driver) {
	case "", constants.AuditDriverNone, constants.AuditDriverMemory, constants.AuditDriverBus, constants.AuditDriverSQLite:
	case constants.AuditDriverPostgres:
		if c.Audit.DSN == "" {
			return fmt.Errorf("postgres audit driver requires dsn")
		}
	default:
		return fmt.Errorf("unsupported audit driver: %s", c.Audit.Driver)
	}
	switch strings.ToLower(c.Event.Driver) {
	case "", constants.EventDriverMemory:
	case constants.EventDriverNATS:
		if c.Event.URL == "" {
			return fmt.Errorf("NATS event driver requires url")
		}
	default:
		return fmt.Errorf("unsupported event bus driver: %s", c.Event.Driver)
	}
	if c.Tracing != nil {
		switch strings.ToLower(c.Tracing.Exporter) {
		case "", constants.TracingExporterNone, constants.TracingExporterStdout, constants.TracingExporterOTLP:
		default:
			return fmt.Errorf("unsupported tracing exporter: %s", c.Tracing.Exporter)
		}
	}
	return nil
}

// Addr returns the listen address for the standalone server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
