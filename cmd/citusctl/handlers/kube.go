package handlers

import (
	"fmt"

	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/client"

	citusv1alpha1 "github.com/jw3/citus-operator/api/v1alpha1"
)

// Target selects the API server and namespace a command operates on.
type Target struct {
	// Kubeconfig overrides the standard loading rules when set
	Kubeconfig string
	// Namespace overrides the kubeconfig context's namespace when set
	Namespace string
}

// Factory function variables - can be replaced in tests.
var (
	// newKubeClient returns a client and the resolved namespace for target.
	newKubeClient = func(target Target) (client.Client, string, error) {
		rules := clientcmd.NewDefaultClientConfigLoadingRules()
		rules.ExplicitPath = target.Kubeconfig

		overrides := &clientcmd.ConfigOverrides{}
		overrides.Context.Namespace = target.Namespace

		clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides)
		restConfig, err := clientConfig.ClientConfig()
		if err != nil {
			return nil, "", fmt.Errorf("failed to load kubeconfig: %w", err)
		}

		namespace, _, err := clientConfig.Namespace()
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve namespace: %w", err)
		}

		k8sClient, err := client.New(restConfig, client.Options{Scheme: citusv1alpha1.Scheme})
		if err != nil {
			return nil, "", fmt.Errorf("failed to create kubernetes client: %w", err)
		}

		return k8sClient, namespace, nil
	}
)
