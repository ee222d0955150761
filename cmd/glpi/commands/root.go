package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/glpi/internal/constants"
)

// NewRootCommand creates the glpi command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	metrics := newMetricsServer()

	rootCmd := &cobra.Command{
		Use:   "glpi",
		Short: "GLPI REST API CLI",
		Long: `A command-line interface for the GLPI REST API.

This CLI opens and persists GLPI sessions, switches profiles and entities,
and reads, creates, updates and deletes items of any type.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initConfig(cmd)

			err := metrics.Start(viper.GetString(keyMetricsAddr))
			if err != nil {
				return err
			}

			cmd.SetContext(withMetrics(cmd.Context(), metrics.Metrics()))

			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return metrics.Shutdown(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.glpi/config.yml)")
	flags.StringP("url", "u", "", "API endpoint URL, e.g. https://glpi.example.com/apirest.php")
	flags.String("app-token", "", "application token")
	flags.StringP("profile", "p", defaultProfile, "session profile name")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.String("session-store", constants.SessionStoreFile, "session store (file, redis, nats)")
	flags.String("session-file", "", "session file (default is $HOME/.glpi/sessions.yml)")
	flags.Duration("timeout", constants.DefaultHTTPTimeout, "timeout of one HTTP exchange")
	flags.Int("retries", 0, "retry failed HTTP exchanges this many times")
	flags.String("user-agent", "", "User-Agent header")
	flags.BoolP("verbose", "v", false, "log HTTP requests and responses")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address while the command runs")
	flags.Bool("skip-ssl-validation", false, "skip SSL certificate validation (requires GLPI_DEV_MODE=true)")

	// Bind flags to viper
	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag(keyURL, flags.Lookup("url"))
	_ = viper.BindPFlag(keyAppToken, flags.Lookup("app-token"))
	_ = viper.BindPFlag(keyProfile, flags.Lookup("profile"))
	_ = viper.BindPFlag(keyOutput, flags.Lookup("output"))
	_ = viper.BindPFlag(keySessionStore, flags.Lookup("session-store"))
	_ = viper.BindPFlag(keySessionFile, flags.Lookup("session-file"))
	_ = viper.BindPFlag(keyTimeout, flags.Lookup("timeout"))
	_ = viper.BindPFlag(keyRetries, flags.Lookup("retries"))
	_ = viper.BindPFlag(keyUserAgent, flags.Lookup("user-agent"))
	_ = viper.BindPFlag(keyDebug, flags.Lookup("verbose"))
	_ = viper.BindPFlag(keyLogLevel, flags.Lookup("log-level"))
	_ = viper.BindPFlag(keyLogFormat, flags.Lookup("log-format"))
	_ = viper.BindPFlag(keyMetricsAddr, flags.Lookup("metrics-addr"))
	_ = viper.BindPFlag(keySkipSSL, flags.Lookup("skip-ssl-validation"))

	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewLoginCommand())
	rootCmd.AddCommand(NewLogoutCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewSessionCommand())
	rootCmd.AddCommand(NewPasswordCommand())
	rootCmd.AddCommand(NewItemsCommand())
	rootCmd.AddCommand(NewDownloadCommand())

	return rootCmd
}

func initConfig(cmd *cobra.Command) {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), err)

			return
		}

		// Search config in ~/.glpi/config.yml
		viper.AddConfigPath(filepath.Join(home, ".glpi"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("GLPI")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	err := viper.ReadInConfig()
	if err == nil && viper.GetBool(keyDebug) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", viper.ConfigFileUsed())
	}
}
