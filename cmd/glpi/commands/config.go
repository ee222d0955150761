package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/glpi/internal/constants"
)

// Configuration keys, shared by the config file, flags and GLPI_* variables.
const (
	keyURL           = "url"
	keyAppToken      = "app_token"
	keyUsername      = "username"
	keyProfile       = "profile"
	keyOutput        = "output"
	keySessionStore  = "session_store"
	keySessionFile   = "session_file"
	keySessionTTL    = "session_ttl"
	keyRedisAddr     = "redis_addr"
	keyRedisPassword = "redis_password"
	keyRedisDB       = "redis_db"
	keyNATSURL       = "nats_url"
	keyNATSBucket    = "nats_bucket"
	keyTimeout       = "timeout"
	keyRetries       = "retries"
	keyUserAgent     = "user_agent"
	keyDebug         = "debug"
	keyLogLevel      = "log_level"
	keyLogFormat     = "log_format"
	keyMetricsAddr   = "metrics_addr"
	keySkipSSL       = "skip_ssl_validation"

	defaultProfile = "default"
)

// Static errors for err113 compliance.
var (
	ErrUnknownConfigKey = errors.New("unknown configuration key")
)

// Config represents the persisted CLI configuration.
type Config struct {
	URL               string `json:"url,omitempty"                 yaml:"url,omitempty"`
	AppToken          string `json:"app_token,omitempty"           yaml:"app_token,omitempty"`
	Username          string `json:"username,omitempty"            yaml:"username,omitempty"`
	Profile           string `json:"profile,omitempty"             yaml:"profile,omitempty"`
	Output            string `json:"output,omitempty"              yaml:"output,omitempty"`
	SessionStore      string `json:"session_store,omitempty"       yaml:"session_store,omitempty"`
	SessionFile       string `json:"session_file,omitempty"        yaml:"session_file,omitempty"`
	SessionTTL        string `json:"session_ttl,omitempty"         yaml:"session_ttl,omitempty"`
	RedisAddr         string `json:"redis_addr,omitempty"          yaml:"redis_addr,omitempty"`
	RedisPassword     string `json:"redis_password,omitempty"      yaml:"redis_password,omitempty"`
	RedisDB           int    `json:"redis_db,omitempty"            yaml:"redis_db,omitempty"`
	NATSURL           string `json:"nats_url,omitempty"            yaml:"nats_url,omitempty"`
	NATSBucket        string `json:"nats_bucket,omitempty"         yaml:"nats_bucket,omitempty"`
	SkipSSLValidation bool   `json:"skip_ssl_validation,omitempty" yaml:"skip_ssl_validation,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the GLPI CLI configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.RedisPassword != "" {
				config.RedisPassword = Masked
			}

			return render(cmd, config)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value, one of: " + fmt.Sprint(configKeys()),
		Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := readConfigFile()
			if err != nil {
				return err
			}

			err = setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func configKeys() []string {
	keys := []string{
		keyURL, keyAppToken, keyUsername, keyProfile, keyOutput, keySessionStore, keySessionFile,
		keySessionTTL, keyRedisAddr, keyRedisPassword, keyRedisDB, keyNATSURL, keyNATSBucket, keySkipSSL,
	}
	sort.Strings(keys)

	return keys
}

// loadConfig reads the effective configuration from viper.
func loadConfig() *Config {
	return &Config{
		URL:               viper.GetString(keyURL),
		AppToken:          viper.GetString(keyAppToken),
		Username:          viper.GetString(keyUsername),
		Profile:           viper.GetString(keyProfile),
		Output:            viper.GetString(keyOutput),
		SessionStore:      viper.GetString(keySessionStore),
		SessionFile:       viper.GetString(keySessionFile),
		SessionTTL:        viper.GetString(keySessionTTL),
		RedisAddr:         viper.GetString(keyRedisAddr),
		RedisPassword:     viper.GetString(keyRedisPassword),
		RedisDB:           viper.GetInt(keyRedisDB),
		NATSURL:           viper.GetString(keyNATSURL),
		NATSBucket:        viper.GetString(keyNATSBucket),
		SkipSSLValidation: viper.GetBool(keySkipSSL),
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case keyURL:
		config.URL = value
	case keyAppToken:
		config.AppToken = value
	case keyUsername:
		config.Username = value
	case keyProfile:
		config.Profile = value
	case keyOutput:
		config.Output = value
	case keySessionStore:
		config.SessionStore = value
	case keySessionFile:
		config.SessionFile = value
	case keySessionTTL:
		_, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}

		config.SessionTTL = value
	case keyRedisAddr:
		config.RedisAddr = value
	case keyRedisPassword:
		config.RedisPassword = value
	case keyRedisDB:
		db, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}

		config.RedisDB = db
	case keyNATSURL:
		config.NATSURL = value
	case keyNATSBucket:
		config.NATSBucket = value
	case keySkipSSL:
		config.SkipSSLValidation = value == constants.BooleanTrue || value == "1"
	default:
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}

	viper.Set(key, value)

	return nil
}

// configFilePath returns the file in use, or $HOME/.glpi/config.yml.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".glpi", "config.yml"), nil
}

// readConfigFile returns the stored configuration, without flag or
// environment overrides. A missing file yields an empty configuration.
func readConfigFile() (*Config, error) {
	configFile, err := configFilePath()
	if err != nil {
		return nil, err
	}

	config := &Config{}

	data, err := os.ReadFile(configFile) // #nosec G304 -- path comes from the user's --config flag
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// saveConfig writes config to the configuration file.
func saveConfig(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
