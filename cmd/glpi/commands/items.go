package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/glpi/internal/constants"
	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

// NewItemsCommand creates the items command group.
func NewItemsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item", "i"},
		Short:   "Manage GLPI items",
		Long:    "Get, list, search, create, update and delete items of any type, e.g. Computer or Ticket",
	}

	cmd.AddCommand(newItemsGetCommand())
	cmd.AddCommand(newItemsGetManyCommand())
	cmd.AddCommand(newItemsListCommand())
	cmd.AddCommand(newItemsSubCommand())
	cmd.AddCommand(newItemsCreateCommand())
	cmd.AddCommand(newItemsUpdateCommand())
	cmd.AddCommand(newItemsDeleteCommand())
	cmd.AddCommand(newItemsDeleteManyCommand())
	cmd.AddCommand(newItemsSearchOptionsCommand())
	cmd.AddCommand(newItemsSearchCommand())

	return cmd
}

// queryFlags are the listing options shared by the read commands.
type queryFlags struct {
	rangeSpec       string
	expandDropdowns bool
	sort            string
	order           string
	onlyID          bool
	deleted         bool
	params          []string
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.rangeSpec, "range", "", "range of items, e.g. 0-49")
	cmd.Flags().BoolVar(&q.expandDropdowns, "expand-dropdowns", false, "show dropdown names instead of ids")
	cmd.Flags().StringVar(&q.sort, "sort", "", "field to sort by")
	cmd.Flags().StringVar(&q.order, "order", "", "sort order (ASC, DESC)")
	cmd.Flags().BoolVar(&q.onlyID, "only-id", false, "return only ids")
	cmd.Flags().BoolVar(&q.deleted, "deleted", false, "list items in the trash bin")
	cmd.Flags().StringArrayVarP(&q.params, "query", "q", nil, "extra query parameter KEY=VALUE (repeatable)")
}

func (q *queryFlags) options(cmd *cobra.Command) (glpi.QueryOptions, error) {
	options := glpi.NewQueryOptions()

	if q.rangeSpec != "" {
		options.With("range", q.rangeSpec)
	}

	if cmd.Flags().Changed("expand-dropdowns") {
		options.WithExpandDropdowns(q.expandDropdowns)
	}

	if q.sort != "" {
		options.WithSort(q.sort, strings.ToUpper(q.order))
	}

	if cmd.Flags().Changed("only-id") {
		options.WithOnlyID(q.onlyID)
	}

	if cmd.Flags().Changed("deleted") {
		options.WithDeleted(q.deleted)
	}

	for _, param := range q.params {
		key, value, ok := strings.Cut(param, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidQueryParam, param)
		}

		options.With(key, value)
	}

	return options, nil
}

func newItemsGetCommand() *cobra.Command {
	var query queryFlags

	cmd := &cobra.Command{
		Use:   "get ITEMTYPE ID",
		Short: "Get an item",
		Long:  "Display a single item of the given type",
		Args:  cobra.ExactArgs(2), //nolint:mnd // item type and id
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := query.options(cmd)
			if err != nil {
				return err
			}

			return withConnection(cmd, func(conn *connection) error {
				return renderOutcome(cmd, conn.client.GetItem(cmd.Context(), glpi.ItemType(args[0]), args[1], options))
			})
		},
	}

	query.register(cmd)

	return cmd
}

func newItemsGetManyCommand() *cobra.Command {
	var (
		query       queryFlags
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "get-many ITEMTYPE ID...",
		Short: "Get several items",
		Long:  "Fetch several items of the given type concurrently. Failures are reported per id.",
		Args:  cobra.MinimumNArgs(2), //nolint:mnd // item type and at least one id
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := query.options(cmd)
			if err != nil {
				return err
			}

			return withConnection(cmd, func(conn *connection) error {
				outcomes := conn.client.GetItems(cmd.Context(), glpi.ItemType(args[0]), args[1:], options, concurrency)

				records := make([]glpi.Record, 0, len(outcomes))
				failed := 0

				for i, outcome := range outcomes {
					if outcome.IsSuccess() {
						records = append(records, outcome.Value)

						continue
					}

					failed++

					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Failed to get %s %s: %v\n", args[0], args[i+1], outcome.Err())
				}

				err := render(cmd, records)
				if err != nil {
					return err
				}

				if failed > 0 {
					return fmt.Errorf("%w: %d of %d items", constants.ErrCallFailed, failed, len(outcomes))
				}

				return nil
			})
		},
	}

	query.register(cmd)
	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultConcurrencyLimit, "number of parallel requests")

	return cmd
}

func newItemsListCommand() *cobra.Command {
	var query queryFlags

	cmd := &cobra.Command{
		Use:   "list ITEMTYPE",
		Short: "List items",
		Long:  "List the items of the given type visible to the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := query.options(cmd)
			if err != nil {
				return err
			}

			return withConnection(cmd, func(conn *connection) error {
				return renderOutcome(cmd, conn.client.ListItems(cmd.Context(), glpi.ItemType(args[0]), options))
			})
		},
	}

	query.register(cmd)

	return cmd
}

func newItemsSubCommand() *cobra.Command {
	var query queryFlags

	cmd := &cobra.Command{
		Use:   "sub ITEMTYPE ID SUB_ITEMTYPE",
		Short: "List sub-items",
		Long:  "List the items of SUB_ITEMTYPE attached to an item, e.g. the Log entries of a Computer",
		Args:  cobra.ExactArgs(3), //nolint:mnd // parent type, parent id and sub type
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := query.options(cmd)
			if err != nil {
				return err
			}

			return withConnection(cmd, func(conn *connection) error {
				outcome := conn.client.ListSubItems(cmd.Context(), glpi.ItemType(args[0]), args[1], glpi.ItemType(args[2]), options)

				return renderOutcome(cmd, outcome)
			})
		},
	}

	query.register(cmd)

	return cmd
}

func newItemsCreateCommand() *cobra.Command {
	var payload payloadFlags

	cmd := &cobra.Command{
		Use:   "create ITEMTYPE",
		Short: "Create items",
		Long:  "Create one item from a JSON object, or several from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := payload.load()
			if err != nil {
				return err
			}

			return withConnection(cmd, func(conn *connection) error {
				return renderOutcome(cmd, conn.client.CreateItems(cmd.Context(), glpi.ItemType(args[0]), body))
			})
		},
	}

	payload.register(cmd)

	return cmd
}

func newItemsUpdateCommand() *cobra.Command {
	var payload payloadFlags

	cmd := &cobra.Command{
		Use:   "update ITEMTYPE [ID]",
		Short: "Update items",
		Long:  "Update one item by id, or several when the payload is an array of objects carrying their id",
		Args:  cobra.RangeArgs(1, 2), //nolint:mnd // item type and optional id
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := payload.load()
			if err != nil {
				return err
			}

			id := ""
			if len(args) > 1 {
				id = args[1]
			}

			return withConnection(cmd, func(conn *connection) error {
				return renderOutcome(cmd, conn.client.UpdateItems(cmd.Context(), glpi.ItemType(args[0]), id, body))
			})
		},
	}

	payload.register(cmd)

	return cmd
}

func newItemsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ITEMTYPE ID",
		Short: "Delete an item",
		Long:  "Delete a single item of the given type",
		Args:  cobra.ExactArgs(2), //nolint:mnd // item type and id
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, func(conn *connection) error {
				return renderOutcome(cmd, conn.client.DeleteItem(cmd.Context(), glpi.ItemType(args[0]), args[1]))
			})
		},
	}
}

func newItemsDeleteManyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-many ITEMTYPE ID...",
		Short: "Delete several items",
		Long:  "Delete several items of the given type in one request. The result lists one message per id.",
		Args:  cobra.MinimumNArgs(2), //nolint:mnd // item type and at least one id
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, func(conn *connection) error {
				outcome := conn.client.DeleteItems(cmd.Context(), glpi.ItemType(args[0]), idsPayload(args[1:]))

				return renderOutcome(cmd, outcome)
			})
		},
	}
}

func newItemsSearchOptionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search-options ITEMTYPE",
		Short: "List search options",
		Long:  "List the searchable fields of the given type and their ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, func(conn *connection) error {
				return renderOutcome(cmd, conn.client.ListSearchOptions(cmd.Context(), glpi.ItemType(args[0])))
			})
		},
	}
}

func newItemsSearchCommand() *cobra.Command {
	var query queryFlags

	cmd := &cobra.Command{
		Use:   "search ITEMTYPE",
		Short: "Search items",
		Long: `Run the search engine on the given type. Criteria are passed as query
parameters, e.g. -q 'criteria[0][field]=1' -q 'criteria[0][searchtype]=contains'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := query.options(cmd)
			if err != nil {
				return err
			}

			return withConnection(cmd, func(conn *connection) error {
				return renderOutcome(cmd, conn.client.Search(cmd.Context(), glpi.ItemType(args[0]), options))
			})
		},
	}

	query.register(cmd)

	return cmd
}

// payloadFlags read a request body from --data or --file.
type payloadFlags struct {
	data string
	file string
}

func (p *payloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.data, "data", "d", "", "payload as JSON or YAML")
	cmd.Flags().StringVarP(&p.file, "file", "f", "", "file holding the payload as JSON or YAML")
	cmd.MarkFlagsMutuallyExclusive("data", "file")
	cmd.MarkFlagsOneRequired("data", "file")
}

func (p *payloadFlags) load() (any, error) {
	raw := []byte(p.data)

	if p.file != "" {
		content, err := os.ReadFile(p.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload file: %w", err)
		}

		raw = content
	}

	return parsePayload(raw)
}

// parsePayload decodes a JSON or YAML document that must be an object or an array.
func parsePayload(raw []byte) (any, error) {
	var payload any

	err := yaml.Unmarshal(raw, &payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidPayload, err)
	}

	switch payload.(type) {
	case map[string]any, []any:
		return payload, nil
	default:
		return nil, constants.ErrInvalidPayload
	}
}

// idsPayload builds the [{"id": ...}] body of a bulk delete.
func idsPayload(ids []string) []map[string]any {
	payload := make([]map[string]any, 0, len(ids))

	for _, id := range ids {
		if number, err := strconv.Atoi(id); err == nil {
			payload = append(payload, map[string]any{fieldID: number})

			continue
		}

		payload = append(payload, map[string]any{fieldID: id})
	}

	return payload
}
