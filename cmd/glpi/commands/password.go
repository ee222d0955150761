package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/glpi/pkg/glpi"
	"github.com/fivetwenty-io/glpi/pkg/glpiclient"
)

// NewPasswordCommand creates the password command group.
func NewPasswordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Recover or reset a password",
		Long:  "Request a password reset email, or reset a password with the token it contains. No session is needed.",
	}

	cmd.AddCommand(newPasswordRecoverCommand())
	cmd.AddCommand(newPasswordResetCommand())

	return cmd
}

// sessionlessClient builds a client that never opens a session.
func sessionlessClient(cmd *cobra.Command) (glpi.Client, error) {
	endpoint, err := resolveEndpoint(cmd)
	if err != nil {
		return nil, err
	}

	client, err := glpiclient.New(cmd.Context(), buildConfig(cmd, endpoint, newInterceptors(cmd)))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

func newPasswordRecoverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recover EMAIL",
		Short: "Request a password reset",
		Long:  "Ask GLPI to email a password reset token to EMAIL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := sessionlessClient(cmd)
			if err != nil {
				return err
			}

			err = callError(client.RecoverPassword(cmd.Context(), args[0]))
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Password reset requested for %s\n", args[0])

			return nil
		},
	}
}

func newPasswordResetCommand() *cobra.Command {
	var newPassword string

	cmd := &cobra.Command{
		Use:   "reset EMAIL TOKEN",
		Short: "Reset a password",
		Long:  "Set a new password for EMAIL with the token received by email",
		Args:  cobra.ExactArgs(2), //nolint:mnd // email and token
		RunE: func(cmd *cobra.Command, args []string) error {
			if newPassword == "" {
				secret, err := readPassword(cmd, "New password: ")
				if err != nil {
					return err
				}

				newPassword = secret
			}

			client, err := sessionlessClient(cmd)
			if err != nil {
				return err
			}

			err = callError(client.ResetPassword(cmd.Context(), args[0], args[1], newPassword))
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Password reset for %s\n", args[0])

			return nil
		},
	}

	cmd.Flags().StringVar(&newPassword, "password", "", "new password (prompted when omitted)")

	return cmd
}
