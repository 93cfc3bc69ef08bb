package commands

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/watson-go/internal/constants"
)

// VersionInfo describes the CLI build.
type VersionInfo struct {
	Version    string `json:"version"     yaml:"version"`
	Commit     string `json:"commit"      yaml:"commit"`
	Built      string `json:"built"       yaml:"built"`
	SDKVersion string `json:"sdk_version" yaml:"sdk_version"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the Watson CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{
				Version:    version,
				Commit:     commit,
				Built:      date,
				SDKVersion: constants.SDKVersion,
			}

			return writeResult(cmd.OutOrStdout(), info, func(table *tablewriter.Table) error {
				setHeader(table, "property", "value")

				for _, row := range [][2]string{{"Version", version}, {"Commit", commit}, {"Built", date}, {"SDK Version", constants.SDKVersion}} {
					err := table.Append(row[0], row[1])
					if err != nil {
						return err
					}
				}

				return nil
			})
		},
	}
}
