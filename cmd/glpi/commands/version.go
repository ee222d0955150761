package commands

import (
	"github.com/spf13/cobra"
)

// VersionInfo describes the build of the CLI.
type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit"  yaml:"commit"`
	Built   string `json:"built"   yaml:"built"`
}

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the GLPI CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd, VersionInfo{
				Version: version,
				Commit:  commit,
				Built:   date,
			})
		},
	}
}
