package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func makeVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "instrumentation-bridge %s\n", version)
		},
	}
}
