package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/glpi/internal/logging"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}

		var entry map[string]interface{}

		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}

	return entries
}

func TestLogger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(logging.Config{Level: "debug", Format: logging.FormatJSON, Output: &buf, Component: "client"})
	logger.Debug("HTTP Request", map[string]interface{}{"method": "GET", "status_code": 200})
	logger.Error("API Transport Error", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "debug", entries[0]["level"])
	assert.Equal(t, "HTTP Request", entries[0]["message"])
	assert.Equal(t, "GET", entries[0]["method"])
	assert.InDelta(t, 200, entries[0]["status_code"], 0)
	assert.Equal(t, "client", entries[0]["component"])
	assert.Equal(t, "error", entries[1]["level"])
}

func TestLogger_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(logging.Config{Level: "warn", Format: logging.FormatJSON, Output: &buf})
	logger.Debug("hidden", nil)
	logger.Info("hidden", nil)
	logger.Warn("shown", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["message"])
}

func TestLogger_DefaultsToInfoConsole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(logging.Config{Level: "nonsense", Output: &buf, NoColor: true})
	logger.Debug("hidden", nil)
	logger.Info("session opened", map[string]interface{}{"user": "glpi"})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "session opened")
	assert.Contains(t, out, "user=glpi")
}

func TestNop(t *testing.T) {
	t.Parallel()

	logger := logging.Nop()
	logger.Error("discarded", map[string]interface{}{"k": "v"})
}
