package commands

import (
	"github.com/spf13/cobra"

	"github.com/jw3/citus-operator/cmd/citusctl/handlers"
)

// Render returns the render command.
func Render(target *handlers.Target) *cobra.Command {
	var (
		opts       handlers.ClusterOptions
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "render <name>",
		Short: "Print the resources the operator creates for a cluster",
		Long: `Render prints the Deployment, StatefulSet, Services and Job the operator
would create for a cluster as YAML. Nothing is sent to the API server.

Examples:
  citusctl render demo --workers 3
  citusctl render demo --workers 3 --config operator.yaml | kubectl diff -f -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Render(cmd.OutOrStdout(), args[0], target.Namespace, configPath, opts)
		},
	}

	cmd.Flags().Int32VarP(&opts.Workers, "workers", "w", 0, "Number of worker nodes (required)")
	cmd.Flags().Int32Var(&opts.WorkerStorageGB, "worker-storage", 0, "Storage per worker in GiB (default: 1)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the operator configuration file")
	_ = cmd.MarkFlagRequired("workers")

	return cmd
}
