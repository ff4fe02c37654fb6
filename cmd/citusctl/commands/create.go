package commands

import (
	"github.com/spf13/cobra"

	"github.com/jw3/citus-operator/cmd/citusctl/handlers"
)

// Create returns the create command.
func Create(target *handlers.Target) *cobra.Command {
	var opts handlers.ClusterOptions

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a Citus cluster",
		Long: `Create submits a CitusCluster resource. The operator then provisions:
  - a master Deployment and Service
  - a worker StatefulSet with one volume claim per worker
  - a headless worker Service
  - a Job that registers every worker with the master

Examples:
  citusctl create demo --workers 3
  citusctl create demo -n db --workers 2 --worker-storage 25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Create(cmd.Context(), *target, args[0], opts)
		},
	}

	cmd.Flags().Int32VarP(&opts.Workers, "workers", "w", 0, "Number of worker nodes (required)")
	cmd.Flags().Int32Var(&opts.WorkerStorageGB, "worker-storage", 0, "Storage per worker in GiB (default: 1)")
	_ = cmd.MarkFlagRequired("workers")

	return cmd
}
