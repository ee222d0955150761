package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/glpi/internal/constants"
	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

// NewDownloadCommand creates the download command
func NewDownloadCommand() *cobra.Command {
	var (
		documentID string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "download [PATH]",
		Short: "Download a file",
		Long: `Download a document by id with --document, or any raw API path such as
"Document/12". The payload is written to --file, or to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if documentID == "" && len(args) == 0 {
				return constants.ErrDownloadTarget
			}

			return withConnection(cmd, func(conn *connection) error {
				var outcome glpi.Outcome[[]byte]
				if documentID != "" {
					outcome = conn.client.DownloadDocument(cmd.Context(), documentID)
				} else {
					outcome = conn.client.Download(cmd.Context(), args[0])
				}

				err := callError(outcome)
				if err != nil {
					return err
				}

				if outputFile == "" {
					_, err = cmd.OutOrStdout().Write(outcome.Value)
					if err != nil {
						return fmt.Errorf("failed to write payload: %w", err)
					}

					return nil
				}

				err = os.WriteFile(outputFile, outcome.Value, constants.ConfigFilePerm)
				if err != nil {
					return fmt.Errorf("failed to write %s: %w", outputFile, err)
				}

				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", len(outcome.Value), outputFile)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&documentID, "document", "", "id of the Document to download")
	cmd.Flags().StringVarP(&outputFile, "file", "f", "", "write the payload to this file")

	return cmd
}
