package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/glpi/internal/constants"
	"github.com/fivetwenty-io/glpi/internal/logging"
	"github.com/fivetwenty-io/glpi/internal/sessionstore"
	"github.com/fivetwenty-io/glpi/pkg/glpi"
	"github.com/fivetwenty-io/glpi/pkg/glpiclient"
)

// connection is a client bound to the stored session of the active profile.
type connection struct {
	client   glpi.Client
	manager  *sessionstore.Manager
	store    sessionstore.Store
	endpoint string
}

// Close releases the session store.
func (c *connection) Close() error {
	return c.store.Close()
}

func profileName() string {
	profile := viper.GetString(keyProfile)
	if profile == "" {
		return defaultProfile
	}

	return profile
}

func newLogger(cmd *cobra.Command) glpi.Logger {
	level := viper.GetString(keyLogLevel)
	if viper.GetBool(keyDebug) {
		level = "debug"
	}

	return logging.New(logging.Config{
		Level:     level,
		Format:    viper.GetString(keyLogFormat),
		Output:    cmd.ErrOrStderr(),
		Component: "glpi-cli",
	})
}

func openStore(ctx context.Context) (sessionstore.Store, error) {
	var ttl time.Duration

	if raw := viper.GetString(keySessionTTL); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", keySessionTTL, err)
		}

		ttl = parsed
	}

	store, err := sessionstore.New(ctx, sessionstore.Config{
		Kind:          viper.GetString(keySessionStore),
		Path:          viper.GetString(keySessionFile),
		RedisAddr:     viper.GetString(keyRedisAddr),
		RedisPassword: viper.GetString(keyRedisPassword),
		RedisDB:       viper.GetInt(keyRedisDB),
		NATSURL:       viper.GetString(keyNATSURL),
		Bucket:        viper.GetString(keyNATSBucket),
		TTL:           ttl,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	return store, nil
}

// buildConfig assembles the library configuration from flags, environment and file.
func buildConfig(cmd *cobra.Command, endpoint string, interceptors *glpi.InterceptorChain) *glpi.Config {
	logger := newLogger(cmd)

	return &glpi.Config{
		APIEndpoint:   endpoint,
		AppToken:      viper.GetString(keyAppToken),
		HTTPTimeout:   viper.GetDuration(keyTimeout),
		RetryMax:      viper.GetInt(keyRetries),
		Debug:         viper.GetBool(keyDebug),
		Logger:        logger,
		UserAgent:     viper.GetString(keyUserAgent),
		SkipTLSVerify: viper.GetBool(keySkipSSL),
		Interceptors:  interceptors,
	}
}

// newInterceptors wires logging and, when enabled, metrics.
func newInterceptors(cmd *cobra.Command) *glpi.InterceptorChain {
	chain := glpi.NewInterceptorChain()

	if viper.GetBool(keyDebug) {
		logger := newLogger(cmd)
		chain.AddRequestInterceptor(glpi.LoggingInterceptor(logger))
		chain.AddResponseInterceptor(glpi.LoggingResponseInterceptor(logger))
	}

	if metrics := metricsFromContext(cmd.Context()); metrics != nil {
		metrics.Attach(chain)
	}

	return chain
}

// connect builds a client and restores the stored session of the active profile.
func connect(cmd *cobra.Command) (*connection, error) {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	profile := profileName()

	stored, err := store.Load(ctx, profile)
	if errors.Is(err, constants.ErrSessionNotFound) {
		_ = store.Close()

		return nil, fmt.Errorf("profile '%s': %w", profile, constants.ErrNoSessionStored)
	}

	if err != nil {
		_ = store.Close()

		return nil, err
	}

	endpoint := viper.GetString(keyURL)
	if endpoint == "" {
		endpoint = stored.Endpoint
	}

	manager := sessionstore.NewManager(store, profile, newLogger(cmd))
	interceptors := newInterceptors(cmd)
	interceptors.AddResponseInterceptor(manager.InvalidationInterceptor())

	config := buildConfig(cmd, endpoint, interceptors)
	config.AppToken = ""

	client, err := glpiclient.New(ctx, config)
	if err != nil {
		_ = store.Close()

		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	_, err = manager.Restore(ctx, client)
	if err != nil {
		_ = store.Close()

		return nil, err
	}

	if appToken := viper.GetString(keyAppToken); appToken != "" {
		client.SetAppToken(&appToken)
	}

	return &connection{
		client:   client,
		manager:  manager,
		store:    store,
		endpoint: endpoint,
	}, nil
}

// resolveEndpoint returns --url, or the endpoint of the stored session.
func resolveEndpoint(cmd *cobra.Command) (string, error) {
	endpoint := viper.GetString(keyURL)
	if endpoint != "" {
		return endpoint, nil
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return "", err
	}

	defer func() { _ = store.Close() }()

	stored, err := store.Load(cmd.Context(), profileName())
	if err != nil || stored.Endpoint == "" {
		return "", constants.ErrNoAPIEndpointConfigured
	}

	return stored.Endpoint, nil
}

// callError converts a failed outcome into a command error.
func callError[T any](outcome glpi.Outcome[T]) error {
	err := outcome.Err()
	if err != nil {
		return fmt.Errorf("%w: %w", constants.ErrCallFailed, err)
	}

	return nil
}

// renderOutcome prints the value of a successful outcome.
func renderOutcome[T any](cmd *cobra.Command, outcome glpi.Outcome[T]) error {
	err := callError(outcome)
	if err != nil {
		return err
	}

	return render(cmd, outcome.Value)
}

// withConnection runs fn with a connected client and closes it afterwards.
func withConnection(cmd *cobra.Command, fn func(conn *connection) error) error {
	conn, err := connect(cmd)
	if err != nil {
		return err
	}

	defer func() { _ = conn.Close() }()

	return fn(conn)
}
