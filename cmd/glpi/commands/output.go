package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/glpi/internal/constants"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"
	Masked       = "***"

	fieldID   = "id"
	fieldName = "name"
)

// render writes value to the command's output in the configured format.
func render(cmd *cobra.Command, value any) error {
	out := cmd.OutOrStdout()

	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(constants.JSONIndentSize)

		err := encoder.Encode(value)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return encoder.Close()
	case constants.FormatTable, "":
		return renderTable(out, value)
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidFormat, viper.GetString("output"))
	}
}

// renderTable prints objects as property tables and arrays of objects as
// one row per element. Anything else is printed as indented JSON.
func renderTable(out io.Writer, value any) error {
	generic, err := toGeneric(value)
	if err != nil {
		return err
	}

	switch data := generic.(type) {
	case map[string]any:
		return renderPropertyTable(out, data)
	case []any:
		rows := make([]map[string]any, 0, len(data))

		for _, element := range data {
			row, ok := element.(map[string]any)
			if !ok {
				return renderJSON(out, data)
			}

			rows = append(rows, row)
		}

		return renderRowsTable(out, rows)
	default:
		return renderJSON(out, data)
	}
}

// toGeneric converts typed values into maps and slices through JSON.
func toGeneric(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}

	var generic any

	err = json.Unmarshal(data, &generic)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal output: %w", err)
	}

	return generic, nil
}

func renderJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	return encoder.Encode(value)
}

func renderPropertyTable(out io.Writer, data map[string]any) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	for _, key := range orderedKeys(data) {
		_ = table.Append([]string{key, formatCell(data[key])})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func renderRowsTable(out io.Writer, rows []map[string]any) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "No items found")

		return err
	}

	columnSet := make(map[string]any)

	for _, row := range rows {
		for key := range row {
			columnSet[key] = nil
		}
	}

	columns := orderedKeys(columnSet)
	header := make([]any, len(columns))

	for i, column := range columns {
		header[i] = column
	}

	table := tablewriter.NewWriter(out)
	table.Header(header...)

	for _, row := range rows {
		cells := make([]string, len(columns))

		for i, column := range columns {
			value, ok := row[column]
			if !ok {
				cells[i] = NotAvailable

				continue
			}

			cells[i] = formatCell(value)
		}

		_ = table.Append(cells)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// orderedKeys sorts keys alphabetically with id and name first.
func orderedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}

	rank := func(key string) int {
		switch key {
		case fieldID:
			return 0
		case fieldName:
			return 1
		default:
			return 2
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if rank(keys[i]) != rank(keys[j]) {
			return rank(keys[i]) < rank(keys[j])
		}

		return keys[i] < keys[j]
	})

	return keys
}

func formatCell(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		if typed {
			return constants.BooleanTrue
		}

		return constants.BooleanFalse
	default:
		data, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}

		return string(data)
	}
}
