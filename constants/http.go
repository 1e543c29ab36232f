package constants

// Content Types
const (
	ContentTypeJSON = "application/json"
)

// HTTP Headers
const (
	HeaderContentType     = "Content-Type"
	HeaderRequestID       = "X-Request-Id"
	HeaderAllowOrigin     = "Access-Control-Allow-Origin"
	HeaderAllowMethods    = "Access-Control-Allow-Methods"
	HeaderAllowHeaders    = "Access-Control-Allow-Headers"
	CORSAllowedMethods    = "POST, OPTIONS"
	CORSAllowedHeaders    = "Content-Type, X-Request-Id"
	HeaderVary            = "Vary"
	HeaderVaryOriginValue = "Origin"
)

// Upstream API
const (
	DefaultUpstreamBaseURL = "https://generativelanguage.googleapis.com"
	UpstreamAPIVersion     = "v1beta"
	UpstreamMethod         = "generateContent"
	UpstreamKeyParam       = "key"
)

// Routes
const (
	DefaultProxyRoute = "/api/geminiProxy"
	HealthRoute       = "/healthz"
	MetricsRoute      = "/metrics"
)
