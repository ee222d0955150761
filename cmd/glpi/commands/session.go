package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSessionCommand creates the session command group.
func NewSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sess"},
		Short:   "Inspect and change the current session",
		Long:    "Show the session details, profiles, entities and configuration, and switch the active profile or entity",
	}

	cmd.AddCommand(newSessionFullCommand())
	cmd.AddCommand(newSessionProfilesCommand())
	cmd.AddCommand(newSessionActiveProfileCommand())
	cmd.AddCommand(newSessionChangeProfileCommand())
	cmd.AddCommand(newSessionEntitiesCommand())
	cmd.AddCommand(newSessionActiveEntitiesCommand())
	cmd.AddCommand(newSessionChangeEntitiesCommand())
	cmd.AddCommand(newSessionConfigCommand())

	return cmd
}

func newSessionFullCommand() *cobra.Command {
	var sessionToken string

	cmd := &cobra.Command{
		Use:   "full",
		Short: "Show the full session",
		Long:  "Display the full session of the stored token, or of --session-token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, func(conn *connection) error {
				token := sessionToken
				if token == "" {
					token = conn.client.Session().SessionToken
				}

				return renderOutcome(cmd, conn.client.FullSession(cmd.Context(), token))
			})
		},
	}

	cmd.Flags().StringVar(&sessionToken, "session-token", "", "inspect this session instead of the stored one")

	return cmd
}

func newSessionProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List my profiles",
		Long:  "List the profiles the session user can switch to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, func(conn *connection) error {
				return renderOutcome(cmd, conn.client.GetMyProfiles(cmd.Context()))
			})
		},
	}
}

func newSessionActiveProfileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "active-profile",
		Short: "Show the active profile",
		Long:  "Display the profile the session currently uses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, func(conn *connection) error {
				return renderOutcome(cmd, conn.client.GetActiveProfile(cmd.Context()))
			})
		},
	}
}

func newSessionChangeProfileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "change-profile PROFILE_ID",
		Short: "Change the active profile",
		Long:  "Switch the session to another of the user's profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, func(conn *connection) error {
				err := callError(conn.client.ChangeActiveProfile(cmd.Context(), args[0]))
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Active profile changed to %s\n", args[0])

				return nil
			})
		},
	}
}

func newSessionEntitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List my entities",
		Long:  "List the entities the active profile gives access to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, func(conn *connection) error {
				return renderOutcome(cmd, conn.client.GetMyEntities(cmd.Context()))
			})
		},
	}
}

func newSessionActiveEntitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "active-entities",
		Short: "Show the active entities",
		Long:  "Display the entity the session currently works in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, func(conn *connection) error {
				return renderOutcome(cmd, conn.client.GetActiveEntities(cmd.Context()))
			})
		},
	}
}

func newSessionChangeEntitiesCommand() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "change-entities ENTITY_ID",
		Short: "Change the active entity",
		Long:  "Switch the session to another entity, optionally including its sub-entities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, func(conn *connection) error {
				err := callError(conn.client.ChangeActiveEntities(cmd.Context(), args[0], recursive))
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Active entity changed to %s (recursive: %t)\n", args[0], recursive)

				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "include sub-entities")

	return cmd
}

func newSessionConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the GLPI configuration",
		Long:  "Display the GLPI and server configuration visible to the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, func(conn *connection) error {
				return renderOutcome(cmd, conn.client.GetGlpiConfig(cmd.Context()))
			})
		},
	}
}
