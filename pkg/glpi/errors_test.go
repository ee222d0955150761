package glpi_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

func TestParseErrorBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		wantCode    string
		wantMessage string
		wantOK      bool
	}{
		{"code and message", `["ERROR_GLPI_LOGIN","Incorrect username or password"]`, "ERROR_GLPI_LOGIN", "Incorrect username or password", true},
		{"code only", `["ERROR_BAD_ARRAY"]`, "ERROR_BAD_ARRAY", "", true},
		{"message not a string", `["ERROR_X",{"detail":1}]`, "ERROR_X", "", true},
		{"not an error code", `["hello","world"]`, "", "", false},
		{"object", `{"message":"x"}`, "", "", false},
		{"empty array", `[]`, "", "", false},
		{"not json", `oops`, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			code, message, ok := glpi.ParseErrorBody([]byte(tt.body))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMessage, message)
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	t.Parallel()

	withCode := &glpi.APIError{StatusCode: http.StatusUnauthorized, Code: glpi.ErrorCodeSessionTokenInvalid, Message: "session_token seems invalid"}
	assert.Equal(t, "ERROR_SESSION_TOKEN_INVALID: session_token seems invalid (status: 401)", withCode.Error())

	withoutCode := &glpi.APIError{StatusCode: http.StatusBadGateway, Message: "Bad Gateway"}
	assert.Equal(t, "Bad Gateway (status: 502)", withoutCode.Error())
}

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	invalid := &glpi.APIError{StatusCode: http.StatusUnauthorized, Code: glpi.ErrorCodeSessionTokenInvalid}
	missing := &glpi.APIError{StatusCode: http.StatusBadRequest, Code: glpi.ErrorCodeSessionTokenMissing}
	notFound := &glpi.APIError{StatusCode: http.StatusNotFound, Code: glpi.ErrorCodeItemNotFound}
	unknownType := &glpi.APIError{StatusCode: http.StatusBadRequest, Code: glpi.ErrorCodeResourceNotFound}
	transport := &glpi.TransportError{Message: "refused"}
	wrapped := fmt.Errorf("listing computers: %w", notFound)

	assert.True(t, glpi.IsSessionInvalid(invalid))
	assert.True(t, glpi.IsSessionInvalid(missing))
	assert.False(t, glpi.IsSessionInvalid(notFound))

	assert.True(t, glpi.IsNotFound(notFound))
	assert.True(t, glpi.IsNotFound(wrapped))
	assert.True(t, glpi.IsNotFound(unknownType))
	assert.False(t, glpi.IsNotFound(transport))

	assert.True(t, glpi.IsUnauthorized(invalid))
	assert.True(t, glpi.IsUnauthorized(missing))
	assert.False(t, glpi.IsUnauthorized(notFound))

	assert.True(t, glpi.IsTransport(transport))
	assert.False(t, glpi.IsTransport(invalid))
}
