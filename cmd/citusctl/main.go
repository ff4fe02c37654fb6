// Package main is the entry point for the citusctl CLI.
//
// citusctl creates, inspects and deletes CitusCluster resources managed by
// the citus-operator, and renders the resources the operator would create
// for a cluster without contacting the API server.
//
// Commands: create, delete, status, render, version.
//
// For detailed usage information, run:
//
//	citusctl --help
package main

import (
	"fmt"
	"os"

	"github.com/jw3/citus-operator/cmd/citusctl/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
