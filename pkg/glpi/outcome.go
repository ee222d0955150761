package glpi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OutcomeKind tags which variant of an Outcome is populated.
type OutcomeKind int

const (
	// OutcomeSuccess carries a decoded value.
	OutcomeSuccess OutcomeKind = iota + 1
	// OutcomeAPIError means the server answered with a failure.
	OutcomeAPIError
	// OutcomeTransportError means no response was obtained.
	OutcomeTransportError
)

// String implements fmt.Stringer.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeAPIError:
		return "api_error"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Outcome is the normalized result of one API call.
type Outcome[T any] struct {
	Kind  OutcomeKind
	Value T
	// StatusCode is zero for transport errors.
	StatusCode int
	// Code is the GLPI error code of an API error, when present.
	Code    string
	Message string
	RawBody string

	// cause is the fault behind a transport error, exposed by Err.
	cause error
}

// Success builds a successful outcome.
func Success[T any](statusCode int, value T) Outcome[T] {
	return Outcome[T]{Kind: OutcomeSuccess, Value: value, StatusCode: statusCode}
}

// APIFailure builds an API error outcome.
func APIFailure[T any](statusCode int, code, message, rawBody string) Outcome[T] {
	return Outcome[T]{
		Kind:       OutcomeAPIError,
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		RawBody:    rawBody,
	}
}

// TransportFailure builds a transport error outcome.
func TransportFailure[T any](message string) Outcome[T] {
	return Outcome[T]{Kind: OutcomeTransportError, Message: message}
}

// TransportFailureFrom builds a transport error outcome from err. The
// outcome's Err unwraps to err.
func TransportFailureFrom[T any](err error) Outcome[T] {
	return Outcome[T]{Kind: OutcomeTransportError, Message: err.Error(), cause: err}
}

// IsSuccess reports whether the call succeeded.
func (o Outcome[T]) IsSuccess() bool {
	return o.Kind == OutcomeSuccess
}

// Err returns nil on success, *APIError or *TransportError otherwise.
func (o Outcome[T]) Err() error {
	switch o.Kind {
	case OutcomeSuccess:
		return nil
	case OutcomeAPIError:
		return &APIError{StatusCode: o.StatusCode, Code: o.Code, Message: o.Message, RawBody: o.RawBody}
	default:
		return &TransportError{Message: o.Message, Err: o.cause}
	}
}

// Unwrap returns the value and Err().
func (o Outcome[T]) Unwrap() (T, error) {
	return o.Value, o.Err()
}

// MapOutcome converts the value of a successful outcome, keeping failures.
func MapOutcome[T, U any](o Outcome[T], convert func(T) U) Outcome[U] {
	out := Outcome[U]{
		Kind:       o.Kind,
		StatusCode: o.StatusCode,
		Code:       o.Code,
		Message:    o.Message,
		RawBody:    o.RawBody,
		cause:      o.cause,
	}

	if o.Kind == OutcomeSuccess {
		out.Value = convert(o.Value)
	}

	return out
}

// Decoder turns a success body into a payload of type T.
type Decoder[T any] func(statusCode int, body []byte) (T, error)

// Normalize classifies one transport result into exactly one Outcome. A
// transport fault yields TransportError; a 2xx status yields Success unless
// the body cannot be decoded, which is an APIError; any other status yields
// an APIError whose message is taken from the body, or fallback when the
// body has nothing usable.
func Normalize[T any](resp *Response, err error, decode Decoder[T], fallback string) Outcome[T] {
	if err != nil {
		return TransportFailureFrom[T](err)
	}

	if resp == nil {
		return TransportFailureFrom[T](ErrNoResponse)
	}

	if resp.IsSuccess() {
		value, decodeErr := decode(resp.StatusCode, resp.Body)
		if decodeErr != nil {
			return APIFailure[T](resp.StatusCode, "", fmt.Sprintf("decoding response: %v", decodeErr), string(resp.Body))
		}

		return Success(resp.StatusCode, value)
	}

	rawBody := string(resp.Body)

	code, message, ok := ParseErrorBody(resp.Body)
	if !ok {
		message = strings.TrimSpace(rawBody)
	}

	if message == "" {
		message = fallback
	}

	return APIFailure[T](resp.StatusCode, code, message, rawBody)
}

// DecodeJSON decodes a JSON body into T.
func DecodeJSON[T any](_ int, body []byte) (T, error) {
	var value T

	if len(bytes.TrimSpace(body)) == 0 {
		return value, ErrEmptyBody
	}

	err := json.Unmarshal(body, &value)
	if err != nil {
		return value, fmt.Errorf("parsing JSON: %w", err)
	}

	return value, nil
}

// DecodeRecords decodes either a JSON array of objects or a single object,
// so that the result mirrors the cardinality the server chose.
func DecodeRecords(statusCode int, body []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		record, err := DecodeJSON[Record](statusCode, trimmed)
		if err != nil {
			return nil, err
		}

		return []Record{record}, nil
	}

	return DecodeJSON[[]Record](statusCode, trimmed)
}

// DecodeConfirmation ignores the body of a void call.
func DecodeConfirmation(statusCode int, _ []byte) (Confirmation, error) {
	return Confirmation{StatusCode: statusCode}, nil
}

// DecodeBytes returns the raw body.
func DecodeBytes(_ int, body []byte) ([]byte, error) {
	if body == nil {
		return []byte{}, nil
	}

	return body, nil
}
