package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexraskin/schoolsite/server"
)

func newVersionCommand(app App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), server.FormatBuildVersion(app.Version))
		},
	}
}
