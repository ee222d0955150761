package glpi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// GLPI error codes returned as the first element of an error body.
const (
	ErrorCodeSessionTokenInvalid  = "ERROR_SESSION_TOKEN_INVALID"
	ErrorCodeSessionTokenMissing  = "ERROR_SESSION_TOKEN_MISSING"
	ErrorCodeAppTokenParamsMiss   = "ERROR_APP_TOKEN_PARAMETERS_MISSING"
	ErrorCodeWrongAppToken        = "ERROR_WRONG_APP_TOKEN_PARAMETER"
	ErrorCodeLoginParamsMissing   = "ERROR_LOGIN_PARAMETERS_MISSING"
	ErrorCodeGlpiLogin            = "ERROR_GLPI_LOGIN"
	ErrorCodeGlpiLoginUserToken   = "ERROR_GLPI_LOGIN_USER_TOKEN"
	ErrorCodeItemNotFound         = "ERROR_ITEM_NOT_FOUND"
	ErrorCodeBadArray             = "ERROR_BAD_ARRAY"
	ErrorCodeMethodNotAllowed     = "ERROR_METHOD_NOT_ALLOWED"
	ErrorCodeRightMissing         = "ERROR_RIGHT_MISSING"
	ErrorCodeResourceNotFound     = "ERROR_RESOURCE_NOT_FOUND_NOR_COMMONDBTM"
	ErrorCodeNotAllowedIP         = "ERROR_NOT_ALLOWED_IP"
	ErrorCodeJSONPayloadInvalid   = "ERROR_JSON_PAYLOAD_INVALID"
	ErrorCodeJSONPayloadForbidden = "ERROR_JSON_PAYLOAD_FORBIDDEN"
)

// APIError is a response from a reachable server that is not a success:
// either a non-2xx status, or a 2xx whose body could not be decoded.
type APIError struct {
	StatusCode int
	// Code is the GLPI error code when the body carried one.
	Code    string
	Message string
	RawBody string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (status: %d)", e.Code, e.Message, e.StatusCode)
	}

	return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
}

// TransportError means no response was obtained at all.
type TransportError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return e.Message
}

// Unwrap returns the underlying transport fault.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Static errors for err113 compliance.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrAPIEndpointRequired = errors.New("API endpoint is required")
	ErrSkipTLSOnlyInDev    = errors.New("skipTLS is only allowed in development environments")
	ErrNoResponse          = errors.New("transport returned neither a response nor an error")
	ErrLoginFailed         = errors.New("login failed")
	ErrEmptyBody           = errors.New("empty response body")
)

// ParseErrorBody extracts the code and message from a GLPI error body,
// which has the form ["ERROR_CODE", "human readable message"]. It returns
// ok=false when the body does not have that shape.
func ParseErrorBody(body []byte) (code, message string, ok bool) {
	var parts []json.RawMessage

	err := json.Unmarshal(body, &parts)
	if err != nil || len(parts) == 0 {
		return "", "", false
	}

	err = json.Unmarshal(parts[0], &code)
	if err != nil || !strings.HasPrefix(code, "ERROR") {
		return "", "", false
	}

	if len(parts) > 1 {
		_ = json.Unmarshal(parts[1], &message)
	}

	return code, message, true
}

// IsSessionInvalid reports whether err says the session token is unusable.
func IsSessionInvalid(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrorCodeSessionTokenInvalid || apiErr.Code == ErrorCodeSessionTokenMissing
	}

	return false
}

// IsNotFound reports whether err is a missing item or unknown item type.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound ||
			apiErr.Code == ErrorCodeItemNotFound ||
			apiErr.Code == ErrorCodeResourceNotFound
	}

	return false
}

// IsUnauthorized reports whether err is an authentication failure.
func IsUnauthorized(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || IsSessionInvalid(err)
	}

	return false
}

// IsTransport reports whether err is a transport fault.
func IsTransport(err error) bool {
	transportErr := &TransportError{}

	return errors.As(err, &transportErr)
}
