//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	URL       string
	UserToken string
	AppToken  string
	Username  string
	Password  string
	GlpiPath  string
	Verbose   bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		URL:       os.Getenv("GLPI_TEST_URL"),
		UserToken: os.Getenv("GLPI_TEST_USER_TOKEN"),
		AppToken:  os.Getenv("GLPI_TEST_APP_TOKEN"),
		Username:  os.Getenv("GLPI_TEST_USERNAME"),
		Password:  os.Getenv("GLPI_TEST_PASSWORD"),
		GlpiPath:  getGlpiPath(),
		Verbose:   os.Getenv("GLPI_TEST_VERBOSE") == "true",
	}
}

// getGlpiPath determines the path to the glpi binary
func getGlpiPath() string {
	if path := os.Getenv("GLPI_BINARY_PATH"); path != "" {
		return path
	}

	// Try common locations
	candidates := []string{
		"../../glpi",
		"./glpi",
		"../glpi",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "glpi" // Fallback to PATH
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.URL == "" {
		t.Skip("GLPI_TEST_URL not set, skipping integration test")
	}

	if config.UserToken == "" && (config.Username == "" || config.Password == "") {
		t.Skip("GLPI_TEST_USER_TOKEN or GLPI_TEST_USERNAME/GLPI_TEST_PASSWORD not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips test if the glpi binary is not available
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.GlpiPath); err != nil {
		t.Skipf("glpi binary not found at %s, skipping integration test", config.GlpiPath)
	}
}

// CommandRunner provides utilities for running glpi commands against an
// isolated configuration and session file.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
	dir    string
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config: config,
		t:      t,
		dir:    t.TempDir(),
	}
}

// Run executes a glpi command and returns output
func (runner *CommandRunner) Run(args ...string) (string, string, error) {
	args = append(args,
		"--config", filepath.Join(runner.dir, "config.yml"),
		"--session-file", filepath.Join(runner.dir, "sessions.yml"),
		"--url", runner.config.URL,
	)

	if runner.config.AppToken != "" {
		args = append(args, "--app-token", runner.config.AppToken)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, runner.config.GlpiPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.GlpiPath, strings.Join(args, " "))
	}

	err := cmd.Run()
	stdout := stdoutBuf.String()
	stderr := stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// Login opens a session with the configured credentials
func (runner *CommandRunner) Login() error {
	args := []string{"login"}
	if runner.config.UserToken != "" {
		args = append(args, "--user-token", runner.config.UserToken)
	} else {
		args = append(args, "--username", runner.config.Username, "--password", runner.config.Password)
	}

	_, stderr, err := runner.Run(args...)
	if err != nil {
		return fmt.Errorf("failed to log in: %s: %w", stderr, err)
	}

	return nil
}

// GenerateTestName creates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// DecodeJSONOutput decodes command output into out
func DecodeJSONOutput(t *testing.T, output string, out any) {
	t.Helper()

	if err := json.Unmarshal([]byte(output), out); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, output)
	}
}
