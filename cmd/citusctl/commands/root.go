// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing
// and flag binding. Command execution is delegated to handler functions in
// the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/jw3/citus-operator/cmd/citusctl/handlers"
)

// Root returns the root command for the citusctl CLI.
//
// The kubeconfig and namespace flags are shared by every subcommand that
// talks to the API server.
func Root() *cobra.Command {
	target := &handlers.Target{}

	cmd := &cobra.Command{
		Use:           "citusctl",
		Short:         "Manage Citus clusters run by the citus-operator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&target.Kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (default: standard loading rules)")
	cmd.PersistentFlags().StringVarP(&target.Namespace, "namespace", "n", "", "Namespace of the cluster (default: kubeconfig context namespace)")

	cmd.AddCommand(Create(target))
	cmd.AddCommand(Delete(target))
	cmd.AddCommand(Status(target))
	cmd.AddCommand(Render(target))
	cmd.AddCommand(Version())

	return cmd
}
