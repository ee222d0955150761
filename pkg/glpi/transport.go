package glpi

import "context"

// Transport sends one request and returns the response, or an error when no
// response could be obtained (connection refused, timeout, TLS failure).
// A non-2xx status is a response, not an error.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Send implements Transport.
func (f TransportFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
