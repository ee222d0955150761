package glpi

import (
	"net/http"
	"net/url"
	"strconv"
)

// SessionState is the session context attached to outgoing requests.
// An empty SessionToken means no session is open. AppToken is only
// meaningful while SessionToken is set.
type SessionState struct {
	SessionToken string  `json:"session_token"       yaml:"session_token"`
	AppToken     *string `json:"app_token,omitempty" yaml:"app_token,omitempty"`
}

// HasSession reports whether a session token is held.
func (s SessionState) HasSession() bool {
	return s.SessionToken != ""
}

// Clone returns a copy that shares no memory with s.
func (s SessionState) Clone() SessionState {
	out := SessionState{SessionToken: s.SessionToken}
	if s.AppToken != nil {
		token := *s.AppToken
		out.AppToken = &token
	}

	return out
}

// Request describes a single call to the GLPI REST API.
type Request struct {
	Method string
	// Endpoint is the path template, e.g. "/:itemtype/:id".
	Endpoint string
	// Path is Endpoint with its parameters expanded and escaped.
	Path    string
	Headers map[string]string
	Query   url.Values
	// Body is JSON encoded by the transport unless it is a []byte.
	Body any
	// Sessionless requests never carry a Session-Token header.
	Sessionless bool
	// Metadata is scratch space for interceptors.
	Metadata map[string]interface{}
}

// Response is what a Transport returns when the server answered.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Record is a single GLPI item as returned by the API.
type Record map[string]any

// Session is the payload of a successful initSession call.
type Session struct {
	SessionToken string `json:"session_token" yaml:"session_token"`
}

// Confirmation is the payload of calls that return no body on success.
type Confirmation struct {
	StatusCode int `json:"status_code" yaml:"status_code"`
}

// QueryOptions are passed through verbatim as URL query parameters.
type QueryOptions map[string]string

// NewQueryOptions creates an empty set of query options.
func NewQueryOptions() QueryOptions {
	return QueryOptions{}
}

// With sets an arbitrary option and returns the receiver.
func (q QueryOptions) With(key, value string) QueryOptions {
	q[key] = value

	return q
}

// WithRange sets the "range" option, e.g. 0-49.
func (q QueryOptions) WithRange(start, end int) QueryOptions {
	return q.With("range", formatRange(start, end))
}

// WithExpandDropdowns asks the server to replace dropdown ids with names.
func (q QueryOptions) WithExpandDropdowns(expand bool) QueryOptions {
	return q.With("expand_dropdowns", formatBool(expand))
}

// WithHateoas toggles the links section of each record.
func (q QueryOptions) WithHateoas(enabled bool) QueryOptions {
	return q.With("get_hateoas", formatBool(enabled))
}

// WithOnlyID asks the server to return only ids.
func (q QueryOptions) WithOnlyID(onlyID bool) QueryOptions {
	return q.With("only_id", formatBool(onlyID))
}

// WithSort sets the sort field id and order ("ASC" or "DESC").
func (q QueryOptions) WithSort(field, order string) QueryOptions {
	q.With("sort", field)
	if order != "" {
		q.With("order", order)
	}

	return q
}

// WithSearchText filters a listing on a field value.
func (q QueryOptions) WithSearchText(field, text string) QueryOptions {
	return q.With("searchText["+field+"]", text)
}

// WithDeleted selects items in the trash bin.
func (q QueryOptions) WithDeleted(deleted bool) QueryOptions {
	return q.With("is_deleted", formatBool(deleted))
}

// ToValues converts the options to url.Values.
func (q QueryOptions) ToValues() url.Values {
	if len(q) == 0 {
		return nil
	}

	values := make(url.Values, len(q))
	for key, value := range q {
		values.Set(key, value)
	}

	return values
}

func formatRange(start, end int) string {
	return strconv.Itoa(start) + "-" + strconv.Itoa(end)
}

func formatBool(value bool) string {
	return strconv.FormatBool(value)
}
