package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

// call describes one exchange before headers are composed.
type call[T any] struct {
	method      string
	endpoint    string
	path        string
	query       url.Values
	body        any
	headers     map[string]string
	sessionless bool
	decode      glpi.Decoder[T]
}

// send composes headers from state, runs the interceptors, sends the
// request and normalizes the result. It never touches the stored state.
func send[T any](ctx context.Context, c *Client, state glpi.SessionState, op call[T]) glpi.Outcome[T] {
	overrides := make(map[string]string, len(op.headers)+1)
	if c.userAgent != "" {
		overrides[glpi.HeaderUserAgent] = c.userAgent
	}

	for key, value := range op.headers {
		overrides[key] = value
	}

	var headers map[string]string
	if op.sessionless {
		headers = glpi.ComposeSessionlessHeaders(state, overrides)
	} else {
		headers = glpi.ComposeHeaders(state, overrides)
	}

	req := &glpi.Request{
		Method:      op.method,
		Endpoint:    op.endpoint,
		Path:        op.path,
		Headers:     headers,
		Query:       op.query,
		Body:        op.body,
		Sessionless: op.sessionless,
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return glpi.TransportFailureFrom[T](err)
	}

	resp, sendErr := c.transport.Send(ctx, req)

	err = c.interceptors.ExecuteResponseInterceptors(ctx, req, resp, sendErr)
	if err != nil {
		c.logWarn("response interceptor error", map[string]interface{}{
			"endpoint": req.Endpoint,
			"error":    err.Error(),
		})
	}

	outcome := glpi.Normalize(resp, sendErr, op.decode, c.fallback)

	c.logDebug("GLPI call completed", map[string]interface{}{
		"method":   req.Method,
		"endpoint": req.Endpoint,
		"outcome":  outcome.Kind.String(),
	})

	return outcome
}

// get is send for a GET with no body.
func get[T any](ctx context.Context, c *Client, endpoint, path string, query url.Values, decode glpi.Decoder[T]) glpi.Outcome[T] {
	return send(ctx, c, c.snapshot(), call[T]{
		method:   http.MethodGet,
		endpoint: endpoint,
		path:     path,
		query:    query,
		decode:   decode,
	})
}

// inputBody wraps a payload in the {"input": …} envelope GLPI expects on
// writes. A payload that already is such an envelope is sent unchanged.
func inputBody(payload any) any {
	switch typed := payload.(type) {
	case map[string]any:
		if _, ok := typed["input"]; ok && len(typed) == 1 {
			return typed
		}
	case glpi.Record:
		if _, ok := typed["input"]; ok && len(typed) == 1 {
			return typed
		}
	}

	return map[string]any{"input": payload}
}
