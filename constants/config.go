package constants

import "time"

// Environment Variables
const (
	EnvDebug           = "GEMINI_PROXY_DEBUG"
	EnvAPIKey          = "GEMINI_API_KEY"
	EnvUpstreamURL     = "GEMINI_UPSTREAM_URL"
	EnvTimeout         = "GEMINI_PROXY_TIMEOUT"
	EnvRoute           = "GEMINI_PROXY_ROUTE"
	EnvLogLevel        = "GEMINI_PROXY_LOG_LEVEL"
	EnvMaxBodyBytes    = "GEMINI_PROXY_MAX_BODY_BYTES"
	EnvPort            = "PORT"
	EnvHost            = "HOST"
	EnvSecretsDriver   = "SECRETS_DRIVER"
	EnvSecretsPrefix   = "SECRETS_PREFIX"
	EnvAWSRegion       = "AWS_REGION"
	EnvTracingExporter = "OTEL_EXPORTER"
	EnvTracingEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvTracingService  = "OTEL_SERVICE_NAME"
	EnvAuditDriver     = "AUDIT_DRIVER"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvEventDriver     = "EVENT_DRIVER"
	EnvNATSURL         = "NATS_URL"
	EnvCORSAllowOrigin = "CORS_ALLOW_ORIGIN"
)

// Secrets Drivers
const (
	SecretsDriverEnv   = "env"
	SecretsDriverAWS   = "aws-sm"
	SecretsDriverAWSv2 = "aws"
)

// Audit Drivers
const (
	AuditDriverNone     = "none"
	AuditDriverMemory   = "memory"
	AuditDriverSQLite   = "sqlite"
	AuditDriverPostgres = "postgres"
	AuditDriverBus      = "bus"
)

// Event Drivers
const (
	EventDriverMemory = "memory"
	EventDriverNATS   = "nats"
)

// Tracing Exporters
const (
	TracingExporterNone   = "none"
	TracingExporterStdout = "stdout"
	TracingExporterOTLP   = "otlp"
)

// Defaults
const (
	DefaultTimeout         = 60 * time.Second
	DefaultPort            = 8080
	DefaultMaxBodyBytes    = 4 << 20
	DefaultServiceName     = "geminiproxy"
	DefaultAuditTopic      = "geminiproxy.exchanges"
	DefaultNATSClusterID   = "geminiproxy"
	DefaultNATSClientID    = "geminiproxy-client"
	DefaultOTLPEndpoint    = "localhost:4318"
	DefaultShutdownTimeout = 10 * time.Second
)
