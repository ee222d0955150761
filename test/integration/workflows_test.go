//go:build integration

package integration

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/glpi/pkg/glpi"
	"github.com/fivetwenty-io/glpi/pkg/glpiclient"
)

func newLibraryClient(t *testing.T, config *TestConfig) glpi.Client {
	t.Helper()

	client, err := glpiclient.New(context.Background(), &glpi.Config{
		APIEndpoint: config.URL,
		UserToken:   config.UserToken,
		Username:    config.Username,
		Password:    config.Password,
		AppToken:    config.AppToken,
	})
	require.NoError(t, err)

	t.Cleanup(func() { client.KillSession(context.Background()) })

	return client
}

// TestLibrary_ComputerLifecycle creates, reads, updates and deletes a computer
func TestLibrary_ComputerLifecycle(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	ctx := context.Background()
	client := newLibraryClient(t, config)
	name := GenerateTestName("it-computer")

	created, err := client.CreateItems(ctx, glpi.ItemTypeComputer, map[string]any{"name": name}).Unwrap()
	require.NoError(t, err)
	require.Len(t, created, 1)

	id := created[0].ID()
	require.NotEmpty(t, id)

	defer client.DeleteItem(ctx, glpi.ItemTypeComputer, id)

	record, err := client.GetItem(ctx, glpi.ItemTypeComputer, id, nil).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, name, record.String("name"))

	outcome := client.UpdateItems(ctx, glpi.ItemTypeComputer, id, map[string]any{"comment": "updated by integration test"})
	require.True(t, outcome.IsSuccess(), "update failed: %v", outcome.Err())

	outcomes := client.GetItems(ctx, glpi.ItemTypeComputer, []string{id, "0"}, nil, 2)
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].IsSuccess())
	assert.False(t, outcomes[1].IsSuccess())
}

// TestLibrary_SessionInspection reads the session, profiles and entities
func TestLibrary_SessionInspection(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	ctx := context.Background()
	client := newLibraryClient(t, config)

	session, err := client.FullSession(ctx, client.Session().SessionToken).Unwrap()
	require.NoError(t, err)
	assert.NotZero(t, session.Session.UserID)

	profiles := client.GetMyProfiles(ctx)
	require.True(t, profiles.IsSuccess(), "profiles failed: %v", profiles.Err())

	entities := client.GetMyEntities(ctx)
	require.True(t, entities.IsSuccess(), "entities failed: %v", entities.Err())

	glpiConfig := client.GetGlpiConfig(ctx)
	require.True(t, glpiConfig.IsSuccess(), "config failed: %v", glpiConfig.Err())
}

// TestCLI_Workflow drives the glpi binary through login, items and logout
func TestCLI_Workflow(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)
	require.NoError(t, runner.Login())

	name := GenerateTestName("it-cli-computer")

	stdout, stderr, err := runner.Run("items", "create", "Computer", "--data", `{"name": "`+name+`"}`, "-o", "json")
	require.NoError(t, err, "Failed to create computer: %s", stderr)

	var created []map[string]any
	DecodeJSONOutput(t, stdout, &created)
	require.Len(t, created, 1)

	id, ok := created[0]["id"].(float64)
	require.True(t, ok)

	idText := strconv.Itoa(int(id))

	stdout, stderr, err = runner.Run("items", "get", "Computer", idText, "-o", "json")
	require.NoError(t, err, "Failed to get computer: %s", stderr)
	assert.Contains(t, stdout, name)

	_, stderr, err = runner.Run("items", "delete", "Computer", idText)
	require.NoError(t, err, "Failed to delete computer: %s", stderr)

	_, stderr, err = runner.Run("session", "full")
	require.NoError(t, err, "Failed to show session: %s", stderr)

	_, stderr, err = runner.Run("logout")
	require.NoError(t, err, "Failed to log out: %s", stderr)

	_, _, err = runner.Run("session", "full")
	assert.Error(t, err)
}
