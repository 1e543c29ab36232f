package constants

// CLI Commands
const (
	CmdRoot      = "geminiproxy"
	CmdServe     = "serve"
	CmdVersion   = "version"
	CmdExchanges = "exchanges"
)

// CLI Short Descriptions
const (
	DescRoot      = "Credential-injecting proxy for the Gemini generateContent API"
	DescServe     = "Start the proxy HTTP server"
	DescVersion   = "Print the version"
	DescExchanges = "List recorded exchanges, newest first"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"
