package constants

import "errors"

// Configuration errors.
var (
	ErrNoAPIEndpointConfigured = errors.New("no API endpoint configured, use --url or 'glpi login'")
	ErrNoSessionStored         = errors.New("no session stored, please run 'glpi login' first")
	ErrUnknownSessionStore     = errors.New("unknown session store")
	ErrSessionNotFound         = errors.New("session not found")
)

// Validation errors.
var (
	ErrUsernameRequired  = errors.New("username is required")
	ErrInvalidPayload    = errors.New("payload must be a JSON object or array")
	ErrInvalidQueryParam = errors.New("query parameter must be KEY=VALUE")
	ErrInvalidFormat     = errors.New("unsupported output format")
	ErrDownloadTarget    = errors.New("a PATH argument or --document is required")
)

// Command errors.
var (
	ErrCallFailed = errors.New("GLPI call failed")
)
