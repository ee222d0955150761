package glpi

import (
	"context"
	"time"
)

// SessionClient opens, inspects and closes GLPI sessions.
type SessionClient interface {
	InitByToken(ctx context.Context, userToken string) Outcome[Session]
	InitByCredentials(ctx context.Context, user, password string) Outcome[Session]
	FullSession(ctx context.Context, sessionToken string) Outcome[FullSession]
	KillSession(ctx context.Context) Outcome[Confirmation]
	ChangeActiveProfile(ctx context.Context, profileID string) Outcome[Confirmation]
	ChangeActiveEntities(ctx context.Context, entityID string, recursive bool) Outcome[Confirmation]
	RecoverPassword(ctx context.Context, email string) Outcome[Confirmation]
	ResetPassword(ctx context.Context, email, token, newPassword string) Outcome[Confirmation]

	// Session returns a snapshot of the current session state.
	Session() SessionState
	// SetAppToken sets or clears (nil) the application token.
	SetAppToken(appToken *string)
	// RestoreSession adopts a session opened earlier, e.g. by another process.
	RestoreSession(state SessionState)
}

// ProfileClient reads the profiles, entities and configuration visible to
// the current session.
type ProfileClient interface {
	GetMyProfiles(ctx context.Context) Outcome[Record]
	GetActiveProfile(ctx context.Context) Outcome[Record]
	GetMyEntities(ctx context.Context) Outcome[Record]
	GetActiveEntities(ctx context.Context) Outcome[Record]
	GetGlpiConfig(ctx context.Context) Outcome[Record]
}

// ItemsClient is the generic CRUD surface over item types.
type ItemsClient interface {
	GetItem(ctx context.Context, itemType ItemType, id string, options QueryOptions) Outcome[Record]
	ListItems(ctx context.Context, itemType ItemType, options QueryOptions) Outcome[[]Record]
	ListSubItems(ctx context.Context, parentType ItemType, parentID string, subType ItemType, options QueryOptions) Outcome[[]Record]
	CreateItems(ctx context.Context, itemType ItemType, payload any) Outcome[[]Record]
	UpdateItems(ctx context.Context, itemType ItemType, id string, payload any) Outcome[[]Record]
	DeleteItem(ctx context.Context, itemType ItemType, id string) Outcome[[]Record]
	DeleteItems(ctx context.Context, itemType ItemType, idsPayload any) Outcome[[]Record]
	GetItems(ctx context.Context, itemType ItemType, ids []string, options QueryOptions, concurrency int) []Outcome[Record]
}

// SearchClient exposes the search engine endpoints.
type SearchClient interface {
	ListSearchOptions(ctx context.Context, itemType ItemType) Outcome[Record]
	Search(ctx context.Context, itemType ItemType, options QueryOptions) Outcome[Record]
}

// FilesClient downloads raw payloads.
type FilesClient interface {
	Download(ctx context.Context, path string) Outcome[[]byte]
	DownloadDocument(ctx context.Context, documentID string) Outcome[[]byte]
}

// Client is the full GLPI API surface.
type Client interface {
	SessionClient
	ProfileClient
	ItemsClient
	SearchClient
	FilesClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a glpi.Client.
//
// # Authentication
//
// glpiclient.New opens a session when credentials are present:
//  1. UserToken: initSession with the personal API token.
//  2. Username/Password: initSession with HTTP basic credentials.
//  3. Neither: no session is opened; call InitByToken or InitByCredentials.
//
// AppToken is sent as App-Token on every call while it is set. A credentials
// login drops it, matching the server behavior of binding app tokens to the
// session that presented them.
//
// # Timeouts, retries, and TLS
//
// Per-request timeouts should be controlled via the context passed to client
// methods; HTTPTimeout bounds a single HTTP exchange. The client itself never
// retries; RetryMax > 0 lets the HTTP transport retry connection failures and
// 5xx/429 responses. SkipTLSVerify is honored only when GLPI_DEV_MODE is
// "true" or "1".
type Config struct {
	// APIEndpoint: base URL of the REST API, e.g. "https://glpi.example.com/apirest.php".
	APIEndpoint string

	// UserToken: personal API token used for initSession.
	UserToken string
	// Username and Password: credentials used for initSession.
	Username string
	Password string
	// AppToken: optional application token.
	AppToken string

	// HTTPTimeout: timeout of one HTTP exchange. Zero uses the transport default.
	HTTPTimeout time.Duration
	// RetryMax: transport-level retries. Zero disables retries.
	RetryMax int
	// RetryWaitMin and RetryWaitMax bound the backoff between retries.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// Debug: enables HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// FallbackMessage: message of an API error whose body carried none.
	FallbackMessage string
	// SkipTLSVerify: development only, see above.
	SkipTLSVerify bool
	// Interceptors: optional request/response hooks.
	Interceptors *InterceptorChain
	// Transport: replaces the HTTP transport entirely when set.
	Transport Transport
}
