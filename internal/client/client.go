package client

import (
	"errors"
	"net/url"
	"sync"

	"github.com/fivetwenty-io/glpi/internal/constants"
	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

// Static errors for err113 compliance.
var (
	ErrTransportRequired   = errors.New("transport is required")
	ErrMissingSessionToken = errors.New("response carries no session_token")
)

// Client implements glpi.Client on top of a glpi.Transport.
//
// The session state is owned by the client. Lifecycle calls (login, logout,
// profile and entity switches) are serialized by lifecycleMu, which is held
// for the whole round trip so that a login racing a logout cannot leave a
// stale token behind. Every other call reads a snapshot of the state.
type Client struct {
	transport    glpi.Transport
	logger       glpi.Logger
	interceptors *glpi.InterceptorChain
	fallback     string
	userAgent    string
	endpointHost string

	lifecycleMu sync.Mutex

	stateMu sync.RWMutex
	state   glpi.SessionState
}

var _ glpi.Client = (*Client)(nil)

// New creates a client that sends every call through transport. No session
// is opened.
func New(config *glpi.Config, transport glpi.Transport) (*Client, error) {
	if config == nil {
		return nil, glpi.ErrConfigRequired
	}

	if transport == nil {
		transport = config.Transport
	}

	if transport == nil {
		return nil, ErrTransportRequired
	}

	fallback := config.FallbackMessage
	if fallback == "" {
		fallback = constants.DefaultFallbackMessage
	}

	client := &Client{
		transport:    transport,
		logger:       config.Logger,
		interceptors: config.Interceptors,
		fallback:     fallback,
		userAgent:    config.UserAgent,
	}

	if endpoint, err := url.Parse(config.APIEndpoint); err == nil {
		client.endpointHost = endpoint.Host
	}

	if config.AppToken != "" {
		appToken := config.AppToken
		client.state.AppToken = &appToken
	}

	return client, nil
}

// Session implements glpi.SessionClient.Session.
func (c *Client) Session() glpi.SessionState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	return c.state.Clone()
}

// SetAppToken implements glpi.SessionClient.SetAppToken.
func (c *Client) SetAppToken(appToken *string) {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if appToken == nil {
		c.state.AppToken = nil

		return
	}

	token := *appToken
	c.state.AppToken = &token
}

// RestoreSession implements glpi.SessionClient.RestoreSession.
func (c *Client) RestoreSession(state glpi.SessionState) {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	c.setState(state)
}

func (c *Client) snapshot() glpi.SessionState {
	return c.Session()
}

func (c *Client) setState(state glpi.SessionState) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	c.state = state.Clone()
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

func (c *Client) logWarn(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, fields)
	}
}
