package commands

import (
	"github.com/spf13/cobra"

	"github.com/jw3/citus-operator/cmd/citusctl/handlers"
)

// Status returns the status command.
func Status(target *handlers.Target) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status [name]",
		Short: "Show the status of Citus clusters",
		Long: `Status shows the phase, worker count and last error of a cluster as
reported by the operator. Without a name every cluster in the namespace
is listed.

Examples:
  citusctl status
  citusctl status demo -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return handlers.Status(cmd.Context(), *target, name, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", handlers.OutputTable, "Output format: table, json or yaml")

	return cmd
}
