package config

// Default directories and file paths for geminiproxy.
const (
	// DefaultConfigDir is the base directory for local artifacts.
	DefaultConfigDir = ".geminiproxy"
	// DefaultConfigPath is the config file the CLI looks for when --config is not given.
	DefaultConfigPath = "geminiproxy.config.json"
	// DefaultAuditSQLiteDSN is where the sqlite audit driver writes when no dsn is set.
	DefaultAuditSQLiteDSN = DefaultConfigDir + "/audit.db"
)
