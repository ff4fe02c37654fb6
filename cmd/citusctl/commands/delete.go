package commands

import (
	"github.com/spf13/cobra"

	"github.com/jw3/citus-operator/cmd/citusctl/handlers"
)

// Delete returns the delete command.
func Delete(target *handlers.Target) *cobra.Command {
	var opts handlers.DeleteOptions

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a Citus cluster",
		Long: `Delete removes a CitusCluster resource. The operator tears down the master,
the workers and the registration job before the resource disappears.

Worker volume claims are kept so the data survives. Pass --purge to delete
them once the cluster is gone.

Examples:
  citusctl delete demo
  citusctl delete demo --wait
  citusctl delete demo -n db --purge

WARNING: --purge is irreversible. All worker data will be lost.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Delete(cmd.Context(), *target, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Wait, "wait", false, "Wait until the operator has torn the cluster down")
	cmd.Flags().BoolVar(&opts.Purge, "purge", false, "Also delete worker volume claims (implies --wait)")

	return cmd
}
