package constants

// Client-facing error messages. Bodies are always {"error": <message>}.
const (
	ResponseMethodNotAllowed   = "Method Not Allowed"
	ResponseServerConfigError  = "Server configuration error. Please contact support."
	ResponseMissingFields      = "Bad request: Missing 'model' or 'geminiPayload' in the request body."
	ResponseBodyTooLarge       = "Request body too large"
	ResponseProxyInternalError = "Proxy internal error: %s"
	ResponseUnknownError       = "An unknown error occurred."
	ResponseInternalError      = "Internal server error"
	ResponseHealthy            = `{"status":"healthy"}`
)

// Error Messages for Logging
const (
	LogMissingCredential   = "CRITICAL: %s is not set on the server"
	LogProxyInternalError  = "Proxy function internal error"
	LogFailedWriteResponse = "Failed to write response: %v"
	LogFailedRecordAudit   = "Failed to record exchange"
	LogRecoveredPanic      = "Recovered panic in proxy handler"
)
