package glpi

import (
	"encoding/base64"
	"net/http"
)

// Header names used by the GLPI REST API.
const (
	HeaderSessionToken  = "Session-Token"
	HeaderAppToken      = "App-Token"
	HeaderAuthorization = "Authorization"
	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"
	HeaderReferer       = "Referer"
)

// Content types.
const (
	ContentTypeJSON        = "application/json"
	ContentTypeJSONUTF8    = "application/json; charset=UTF-8"
	ContentTypeOctetStream = "application/octet-stream"
)

// ComposeHeaders builds the header set for one request from a session
// snapshot and per-call overrides. Session-Token is always present, as an
// empty string when no session is open; the server decides whether the path
// needs one. App-Token is present only when the state holds one. Overrides
// win over defaults, and an overriding Session-Token replaces the stored one.
func ComposeHeaders(state SessionState, overrides map[string]string) map[string]string {
	headers := composeBase(state)
	headers[HeaderSessionToken] = state.SessionToken

	for key, value := range overrides {
		headers[http.CanonicalHeaderKey(key)] = value
	}

	return headers
}

// ComposeSessionlessHeaders is ComposeHeaders for calls made outside a
// session (login, password recovery). No Session-Token is emitted, even if
// an override carries one.
func ComposeSessionlessHeaders(state SessionState, overrides map[string]string) map[string]string {
	headers := composeBase(state)

	for key, value := range overrides {
		canonical := http.CanonicalHeaderKey(key)
		if canonical == HeaderSessionToken {
			continue
		}

		headers[canonical] = value
	}

	return headers
}

func composeBase(state SessionState) map[string]string {
	headers := map[string]string{
		HeaderAccept:      ContentTypeJSON,
		HeaderContentType: ContentTypeJSONUTF8,
	}

	if state.AppToken != nil {
		headers[HeaderAppToken] = *state.AppToken
	}

	return headers
}

// BasicAuthorization returns the Authorization value for a credentials login.
func BasicAuthorization(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

// UserTokenAuthorization returns the Authorization value for a login with a
// personal API token ("Remote access key" in GLPI preferences).
func UserTokenAuthorization(userToken string) string {
	return "user_token " + userToken
}
