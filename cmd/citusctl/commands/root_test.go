package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "citusctl", cmd.Use)
	assert.Equal(t, "Manage Citus clusters run by the citus-operator", cmd.Short)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	expectedSubcommands := []string{"create", "delete", "status", "render", "version"}

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}

	for _, expected := range expectedSubcommands {
		assert.True(t, subcommands[expected], "Expected subcommand %s not found", expected)
	}
	assert.Len(t, cmd.Commands(), len(expectedSubcommands))
}

func TestRoot_PersistentFlags(t *testing.T) {
	cmd := Root()

	kubeconfig := cmd.PersistentFlags().Lookup("kubeconfig")
	require.NotNil(t, kubeconfig)
	assert.Equal(t, "", kubeconfig.DefValue)

	namespace := cmd.PersistentFlags().Lookup("namespace")
	require.NotNil(t, namespace)
	assert.Equal(t, "n", namespace.Shorthand)
	assert.Equal(t, "", namespace.DefValue)
}

func TestRoot_NamespaceFlagReachesSubcommands(t *testing.T) {
	cmd := Root()

	// Parse flags without running anything that needs an API server
	cmd.SetArgs([]string{"-n", "db", "version"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "db", cmd.PersistentFlags().Lookup("namespace").Value.String())
}
