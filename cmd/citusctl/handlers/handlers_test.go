package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"

	citusv1alpha1 "github.com/jw3/citus-operator/api/v1alpha1"
)

func setupTestScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, clientgoscheme.AddToScheme(scheme))
	require.NoError(t, citusv1alpha1.AddToScheme(scheme))
	return scheme
}

// useKubeClient makes handlers use c in namespace for the rest of the test.
func useKubeClient(t *testing.T, c client.Client, namespace string) {
	t.Helper()
	orig := newKubeClient
	t.Cleanup(func() { newKubeClient = orig })

	newKubeClient = func(_ Target) (client.Client, string, error) {
		return c, namespace, nil
	}
}
