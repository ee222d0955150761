package glpi_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

// Test static errors.
var (
	ErrTestTimeout = errors.New("context deadline exceeded (Client.Timeout exceeded while awaiting headers)")
)

const fallback = "generic failure"

func TestNormalize_SuccessStatuses(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusPartialContent, http.StatusMultiStatus, 299} {
		resp := &glpi.Response{StatusCode: status, Body: []byte(`{"id":3,"name":"pc"}`)}

		outcome := glpi.Normalize(resp, nil, glpi.DecodeJSON[glpi.Record], fallback)
		require.Equal(t, glpi.OutcomeSuccess, outcome.Kind, "status %d", status)
		assert.Equal(t, status, outcome.StatusCode)
		assert.Equal(t, "pc", outcome.Value.String("name"))
		assert.Empty(t, outcome.Message)
		require.NoError(t, outcome.Err())
	}
}

func TestNormalize_FailureStatuses(t *testing.T) {
	t.Parallel()

	for _, status := range []int{100, http.StatusMovedPermanently, http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusInternalServerError} {
		resp := &glpi.Response{StatusCode: status, Body: []byte(`["ERROR_X","boom"]`)}

		outcome := glpi.Normalize(resp, nil, glpi.DecodeJSON[glpi.Record], fallback)
		assert.Equal(t, glpi.OutcomeAPIError, outcome.Kind, "status %d", status)
		assert.Equal(t, status, outcome.StatusCode)
		assert.Nil(t, outcome.Value)
	}
}

func TestNormalize_ErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        []byte
		wantCode    string
		wantMessage string
	}{
		{"glpi error array", []byte(`["ERROR_ITEM_NOT_FOUND","Item not found"]`), "ERROR_ITEM_NOT_FOUND", "Item not found"},
		{"code only", []byte(`["ERROR_SESSION_TOKEN_INVALID"]`), "ERROR_SESSION_TOKEN_INVALID", fallback},
		{"plain text", []byte("  Service Unavailable \n"), "", "Service Unavailable"},
		{"empty body", nil, "", fallback},
		{"whitespace body", []byte("   "), "", fallback},
		{"json that is not an error array", []byte(`["a","b"]`), "", `["a","b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			outcome := glpi.Normalize(&glpi.Response{StatusCode: http.StatusBadRequest, Body: tt.body}, nil, glpi.DecodeConfirmation, fallback)
			assert.Equal(t, glpi.OutcomeAPIError, outcome.Kind)
			assert.Equal(t, tt.wantCode, outcome.Code)
			assert.Equal(t, tt.wantMessage, outcome.Message)
			assert.Equal(t, string(tt.body), outcome.RawBody)
		})
	}
}

func TestNormalize_TransportFault(t *testing.T) {
	t.Parallel()

	outcome := glpi.Normalize[glpi.Record](nil, ErrTestTimeout, glpi.DecodeJSON[glpi.Record], fallback)
	assert.Equal(t, glpi.OutcomeTransportError, outcome.Kind)
	assert.Equal(t, ErrTestTimeout.Error(), outcome.Message)
	assert.Zero(t, outcome.StatusCode)

	// A response delivered together with an error is still a fault.
	outcome = glpi.Normalize(&glpi.Response{StatusCode: http.StatusOK}, ErrTestTimeout, glpi.DecodeJSON[glpi.Record], fallback)
	assert.Equal(t, glpi.OutcomeTransportError, outcome.Kind)

	outcome = glpi.Normalize[glpi.Record](nil, nil, glpi.DecodeJSON[glpi.Record], fallback)
	assert.Equal(t, glpi.OutcomeTransportError, outcome.Kind)
	assert.Equal(t, glpi.ErrNoResponse.Error(), outcome.Message)
	require.ErrorIs(t, outcome.Err(), glpi.ErrNoResponse)
}

func TestOutcome_ErrKeepsTransportCause(t *testing.T) {
	t.Parallel()

	outcome := glpi.Normalize[glpi.Record](nil, fmt.Errorf("sending request: %w", context.Canceled), glpi.DecodeJSON[glpi.Record], fallback)
	require.ErrorIs(t, outcome.Err(), context.Canceled)

	var transportErr *glpi.TransportError
	require.ErrorAs(t, outcome.Err(), &transportErr)
	assert.Equal(t, "sending request: context canceled", transportErr.Message)

	mapped := glpi.MapOutcome(outcome, func(r glpi.Record) int { return len(r) })
	require.ErrorIs(t, mapped.Err(), context.Canceled)

	_, err := outcome.Unwrap()
	require.ErrorIs(t, err, context.Canceled)
}

func TestNormalize_UndecodableSuccess(t *testing.T) {
	t.Parallel()

	outcome := glpi.Normalize(&glpi.Response{StatusCode: http.StatusOK, Body: []byte(`<html>`)}, nil, glpi.DecodeRecords, fallback)
	assert.Equal(t, glpi.OutcomeAPIError, outcome.Kind)
	assert.Equal(t, http.StatusOK, outcome.StatusCode)
	assert.Contains(t, outcome.Message, "decoding response")
	assert.Equal(t, "<html>", outcome.RawBody)

	sessionOutcome := glpi.Normalize(&glpi.Response{StatusCode: http.StatusOK}, nil, glpi.DecodeJSON[glpi.Session], fallback)
	assert.Equal(t, glpi.OutcomeAPIError, sessionOutcome.Kind)
	assert.Contains(t, sessionOutcome.Message, glpi.ErrEmptyBody.Error())
}

func TestDecoders(t *testing.T) {
	t.Parallel()

	t.Run("records from object", func(t *testing.T) {
		t.Parallel()

		records, err := glpi.DecodeRecords(http.StatusCreated, []byte(` {"id":7,"message":""}`))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "7", records[0].ID())
	})

	t.Run("records from array", func(t *testing.T) {
		t.Parallel()

		records, err := glpi.DecodeRecords(http.StatusOK, []byte(`[{"id":1},{"id":2}]`))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "2", records[1].ID())
	})

	t.Run("confirmation ignores body", func(t *testing.T) {
		t.Parallel()

		confirmation, err := glpi.DecodeConfirmation(http.StatusOK, []byte("anything"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, confirmation.StatusCode)
	})

	t.Run("bytes are raw", func(t *testing.T) {
		t.Parallel()

		body, err := glpi.DecodeBytes(http.StatusOK, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte{}, body)
	})
}

func TestOutcome_Err(t *testing.T) {
	t.Parallel()

	apiOutcome := glpi.APIFailure[glpi.Record](http.StatusNotFound, glpi.ErrorCodeItemNotFound, "Item not found", "raw")

	apiErr := &glpi.APIError{}
	require.ErrorAs(t, apiOutcome.Err(), &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "ERROR_ITEM_NOT_FOUND: Item not found (status: 404)", apiErr.Error())

	value, err := apiOutcome.Unwrap()
	assert.Nil(t, value)
	require.Error(t, err)

	transportOutcome := glpi.TransportFailure[glpi.Record]("connection refused")
	assert.True(t, glpi.IsTransport(transportOutcome.Err()))
	assert.Equal(t, "connection refused", transportOutcome.Err().Error())

	success := glpi.Success(http.StatusOK, glpi.Record{"id": 1.0})
	require.NoError(t, success.Err())
}

func TestMapOutcome(t *testing.T) {
	t.Parallel()

	success := glpi.MapOutcome(glpi.Success(http.StatusOK, []glpi.Record{{}, {}}), func(records []glpi.Record) int {
		return len(records)
	})
	assert.Equal(t, glpi.OutcomeSuccess, success.Kind)
	assert.Equal(t, 2, success.Value)

	failure := glpi.MapOutcome(glpi.APIFailure[[]glpi.Record](http.StatusBadRequest, "", "bad", ""), func(records []glpi.Record) int {
		return len(records)
	})
	assert.Equal(t, glpi.OutcomeAPIError, failure.Kind)
	assert.Equal(t, "bad", failure.Message)
	assert.Zero(t, failure.Value)
}

func TestOutcomeKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "success", glpi.OutcomeSuccess.String())
	assert.Equal(t, "api_error", glpi.OutcomeAPIError.String())
	assert.Equal(t, "transport_error", glpi.OutcomeTransportError.String())
	assert.Equal(t, "unknown", glpi.OutcomeKind(0).String())
}

func TestAsync(t *testing.T) {
	t.Parallel()

	t.Run("delivers exactly one outcome", func(t *testing.T) {
		t.Parallel()

		done := glpi.Async(context.Background(), func(context.Context) glpi.Outcome[int] {
			return glpi.Success(http.StatusOK, 42)
		})

		outcome, ok := <-done
		require.True(t, ok)
		assert.Equal(t, 42, outcome.Value)

		_, ok = <-done
		assert.False(t, ok)
	})

	t.Run("does not block when nobody listens", func(t *testing.T) {
		t.Parallel()

		finished := make(chan struct{})

		_ = glpi.Async(context.Background(), func(context.Context) glpi.Outcome[int] {
			defer close(finished)

			return glpi.Success(http.StatusOK, 1)
		})

		<-finished
	})

	t.Run("then dispatches to handlers", func(t *testing.T) {
		t.Parallel()

		var got int

		glpi.Then(glpi.Async(context.Background(), func(context.Context) glpi.Outcome[int] {
			return glpi.Success(http.StatusOK, 7)
		}), glpi.Handler[int]{
			OnSuccess: func(value int) { got = value },
			OnFailure: func(glpi.Outcome[int]) { t.Error("unexpected failure") },
		})
		assert.Equal(t, 7, got)

		var failed glpi.Outcome[int]

		glpi.Then(glpi.Async(context.Background(), func(context.Context) glpi.Outcome[int] {
			return glpi.TransportFailure[int]("refused")
		}), glpi.Handler[int]{
			OnFailure: func(outcome glpi.Outcome[int]) { failed = outcome },
		})
		assert.Equal(t, glpi.OutcomeTransportError, failed.Kind)
	})
}
