package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and session files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for one HTTP exchange.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Retries are off unless configured.
const (
	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// Concurrency limits.
const (
	// DefaultConcurrencyLimit limits concurrent calls of a batch.
	DefaultConcurrencyLimit = 5
)

// Client identity.
const (
	// DefaultUserAgent is sent when no User-Agent is configured.
	DefaultUserAgent = "glpi-go-client"

	// FullSessionReferer is the Referer sent with getFullSession.
	FullSessionReferer = "/getFullSession"

	// DefaultFallbackMessage is used when an error body carries no message.
	DefaultFallbackMessage = "An error occurred while communicating with the GLPI server"
)

// Environment variables.
const (
	// DevModeEnv enables development-only settings such as SkipTLSVerify.
	DevModeEnv = "GLPI_DEV_MODE"
)

// Pagination and display limits.
const (
	// DefaultRangeEnd is the last index of the default listing range.
	DefaultRangeEnd = 49

	// JSONIndentSize is the indent width of YAML and JSON output.
	JSONIndentSize = 2
)

// Session store backends.
const (
	// SessionStoreFile persists sessions in a YAML file.
	SessionStoreFile = "file"

	// SessionStoreRedis persists sessions in Redis.
	SessionStoreRedis = "redis"

	// SessionStoreNATS persists sessions in a NATS JetStream KV bucket.
	SessionStoreNATS = "nats"

	// SessionKeyPrefix prefixes session keys in shared stores.
	SessionKeyPrefix = "glpi:session:"

	// SessionBucket is the NATS KV bucket name.
	SessionBucket = "glpi_sessions"
)

// Boolean string constants.
const (
	// BooleanTrue string representation.
	BooleanTrue = "true"

	// BooleanFalse string representation.
	BooleanFalse = "false"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)
