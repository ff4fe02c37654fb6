package handlers

import (
	"context"
	"fmt"
	"log"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	citusv1alpha1 "github.com/jw3/citus-operator/api/v1alpha1"
)

// ClusterOptions describe the desired shape of a cluster.
type ClusterOptions struct {
	Workers int32
	// WorkerStorageGB is left to the API default when zero
	WorkerStorageGB int32
}

// Validate checks the options before anything is sent to the API server.
func (o ClusterOptions) Validate() error {
	if o.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", o.Workers)
	}
	if o.WorkerStorageGB < 0 {
		return fmt.Errorf("worker storage must be positive, got %d", o.WorkerStorageGB)
	}
	return nil
}

// newCluster builds the CitusCluster object for name in namespace.
func newCluster(name, namespace string, opts ClusterOptions) *citusv1alpha1.CitusCluster {
	cluster := &citusv1alpha1.CitusCluster{
		TypeMeta: metav1.TypeMeta{
			APIVersion: citusv1alpha1.GroupVersion.String(),
			Kind:       "CitusCluster",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Spec: citusv1alpha1.CitusClusterSpec{
			Workers: opts.Workers,
		},
	}
	if opts.WorkerStorageGB > 0 {
		cluster.Spec.WorkerStorageGB = ptr.To(opts.WorkerStorageGB)
	}
	return cluster
}

// Create handles the create command.
//
// It submits a CitusCluster object; the operator provisions the master,
// workers and registration job from it.
func Create(ctx context.Context, target Target, name string, opts ClusterOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	k8sClient, namespace, err := newKubeClient(target)
	if err != nil {
		return err
	}

	cluster := newCluster(name, namespace, opts)
	if err := k8sClient.Create(ctx, cluster); err != nil {
		if apierrors.IsAlreadyExists(err) {
			return fmt.Errorf("cluster %s/%s already exists", namespace, name)
		}
		return fmt.Errorf("failed to create cluster: %w", err)
	}

	log.Printf("Created CitusCluster %s/%s with %d workers", namespace, name, opts.Workers)
	return nil
}
