// Package glpiclient provides the main entry point for creating GLPI API clients
package glpiclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strings"

	"github.com/fivetwenty-io/glpi/internal/client"
	"github.com/fivetwenty-io/glpi/internal/constants"
	internalhttp "github.com/fivetwenty-io/glpi/internal/http"
	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

// New creates a GLPI API client and, when the config carries credentials,
// opens a session with them.
func New(ctx context.Context, config *glpi.Config) (glpi.Client, error) {
	if config == nil {
		return nil, glpi.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, glpi.ErrAPIEndpointRequired
	}

	cfg := *config
	cfg.APIEndpoint = normalizeEndpoint(cfg.APIEndpoint)

	transport := cfg.Transport
	if transport == nil {
		httpClient, err := newHTTPClient(&cfg)
		if err != nil {
			return nil, err
		}

		transport = httpClient
	}

	glpiClient, err := client.New(&cfg, transport)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	err = login(ctx, glpiClient, &cfg)
	if err != nil {
		return nil, err
	}

	return glpiClient, nil
}

// normalizeEndpoint trims the trailing slash and defaults the scheme to https.
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSuffix(endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv(constants.DevModeEnv)

	return devMode == constants.BooleanTrue || devMode == "1"
}

// newHTTPClient builds the retrying HTTP transport described by cfg.
func newHTTPClient(cfg *glpi.Config) (*internalhttp.Client, error) {
	opts := []internalhttp.Option{
		internalhttp.WithDebug(cfg.Debug),
	}

	if cfg.Logger != nil {
		opts = append(opts, internalhttp.WithLogger(cfg.Logger))
	}

	if cfg.UserAgent != "" {
		opts = append(opts, internalhttp.WithUserAgent(cfg.UserAgent))
	}

	if cfg.HTTPTimeout > 0 {
		opts = append(opts, internalhttp.WithTimeout(cfg.HTTPTimeout))
	}

	if cfg.RetryMax > 0 {
		waitMin := cfg.RetryWaitMin
		if waitMin <= 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		waitMax := cfg.RetryWaitMax
		if waitMax <= 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		opts = append(opts, internalhttp.WithRetryConfig(cfg.RetryMax, waitMin, waitMax))
	}

	if cfg.SkipTLSVerify {
		// Only allow insecure TLS in explicit development environments
		if !isDevelopmentEnvironment() {
			return nil, fmt.Errorf("%w (set %s=true)", glpi.ErrSkipTLSOnlyInDev, constants.DevModeEnv)
		}

		opts = append(opts, internalhttp.WithTLSConfig(&tls.Config{InsecureSkipVerify: true})) // #nosec G402 -- Protected by development environment check above
	}

	return internalhttp.NewClient(cfg.APIEndpoint, opts...), nil
}

// login opens a session with the user token, or else with the credentials.
func login(ctx context.Context, glpiClient glpi.SessionClient, cfg *glpi.Config) error {
	var outcome glpi.Outcome[glpi.Session]

	switch {
	case cfg.UserToken != "":
		outcome = glpiClient.InitByToken(ctx, cfg.UserToken)
	case cfg.Username != "":
		outcome = glpiClient.InitByCredentials(ctx, cfg.Username, cfg.Password)
	default:
		return nil
	}

	err := outcome.Err()
	if err != nil {
		return fmt.Errorf("%w: %w", glpi.ErrLoginFailed, err)
	}

	return nil
}

// NewWithEndpoint creates a new client with just an API endpoint (no session).
func NewWithEndpoint(ctx context.Context, endpoint string) (glpi.Client, error) {
	return New(ctx, &glpi.Config{
		APIEndpoint: endpoint,
	})
}

// NewWithUserToken creates a new client and opens a session with a personal API token.
func NewWithUserToken(ctx context.Context, endpoint, userToken string) (glpi.Client, error) {
	return New(ctx, &glpi.Config{
		APIEndpoint: endpoint,
		UserToken:   userToken,
	})
}

// NewWithPassword creates a new client and opens a session with username/password.
func NewWithPassword(ctx context.Context, endpoint, username, password string) (glpi.Client, error) {
	return New(ctx, &glpi.Config{
		APIEndpoint: endpoint,
		Username:    username,
		Password:    password,
	})
}
