package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/glpi/internal/constants"
	"github.com/fivetwenty-io/glpi/internal/sessionstore"
	"github.com/fivetwenty-io/glpi/pkg/glpi"
	"github.com/fivetwenty-io/glpi/pkg/glpiclient"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		userToken string
		username  string
		password  string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a GLPI session",
		Long: `Open a session with a personal API token or with username and password,
and store it under the active profile for later commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint := viper.GetString(keyURL)
			if endpoint == "" {
				line, err := prompt(cmd, "API endpoint: ")
				if err != nil {
					return err
				}

				endpoint = line
			}

			if endpoint == "" {
				return constants.ErrNoAPIEndpointConfigured
			}

			config := buildConfig(cmd, endpoint, newInterceptors(cmd))

			if userToken == "" {
				if username == "" {
					line, err := prompt(cmd, "Username: ")
					if err != nil {
						return err
					}

					username = line
				}

				if username == "" {
					return constants.ErrUsernameRequired
				}

				if password == "" {
					secret, err := readPassword(cmd, "Password: ")
					if err != nil {
						return err
					}

					password = secret
				}

				config.Username = username
				config.Password = password
			} else {
				config.UserToken = userToken
			}

			client, err := glpiclient.New(cmd.Context(), config)
			if err != nil {
				return fmt.Errorf("failed to log in: %w", err)
			}

			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}

			defer func() { _ = store.Close() }()

			manager := sessionstore.NewManager(store, profileName(), newLogger(cmd))

			err = manager.Persist(cmd.Context(), client, config.APIEndpoint, username)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s (profile %s)\n", endpoint, manager.Profile())

			return nil
		},
	}

	cmd.Flags().StringVar(&userToken, "user-token", "", "personal API token")
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Close the GLPI session",
		Long:  "Kill the session of the active profile and remove it from the session store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, func(conn *connection) error {
				outcome := conn.client.KillSession(cmd.Context())

				err := callError(outcome)
				if err != nil && !glpi.IsSessionInvalid(outcome.Err()) {
					return err
				}

				err = conn.manager.Forget(cmd.Context())
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged out of %s (profile %s)\n", conn.endpoint, conn.manager.Profile())

				return nil
			})
		},
	}
}

// prompt reads one line from the command's input.
func prompt(cmd *cobra.Command, label string) (string, error) {
	_, _ = fmt.Fprint(cmd.OutOrStdout(), label)

	line, err := readLine(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// readLine reads up to a newline one byte at a time, so that later prompts
// on the same reader still see their input.
func readLine(in io.Reader) (string, error) {
	var (
		line strings.Builder
		char [1]byte
	)

	for {
		n, err := in.Read(char[:])
		if n > 0 {
			if char[0] == '\n' {
				return line.String(), nil
			}

			line.WriteByte(char[0])
		}

		if errors.Is(err, io.EOF) {
			return line.String(), nil
		}

		if err != nil {
			return "", err
		}
	}
}

// readPassword reads a secret without echo when stdin is a terminal.
func readPassword(cmd *cobra.Command, label string) (string, error) {
	fd := int(os.Stdin.Fd()) // #nosec G115 -- file descriptors fit in int
	if cmd.InOrStdin() != os.Stdin || !term.IsTerminal(fd) {
		return prompt(cmd, label)
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), label)

	secret, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	return string(secret), nil
}
