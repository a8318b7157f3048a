package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"flatten/pkg/version"
)

// newVersionCmd returns the version subcommand. The --short flag prints a
// concise version string.
func newVersionCmd() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Display the version of flatten",
		Long:  `Display the current version information of the flatten CLI tool.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			short, err := cmd.Flags().GetBool("short")
			if err != nil {
				return fmt.Errorf("error reading flags: %w", err)
			}

			v := version.Get()
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), v.Version)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), v.String())
			}
			return nil
		},
	}

	versionCmd.Flags().Bool("short", false, "Print the version number only")
	return versionCmd
}
