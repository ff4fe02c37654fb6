package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	citusv1alpha1 "github.com/jw3/citus-operator/api/v1alpha1"
	"github.com/jw3/citus-operator/internal/util/async"
	"github.com/jw3/citus-operator/internal/util/labels"
	"github.com/jw3/citus-operator/internal/util/retry"
)

// purgeConcurrency bounds parallel volume claim deletions.
const purgeConcurrency = 4

var (
	// waitOptions control how long delete waits for the operator's teardown.
	waitOptions = []retry.Option{
		retry.WithSteps(30),
		retry.WithInitialDelay(time.Second),
		retry.WithMaxDelay(10 * time.Second),
		retry.WithMultiplier(1.5),
	}

	// purgeOptions control retries of a single claim deletion.
	purgeOptions = []retry.Option{
		retry.WithSteps(5),
		retry.WithInitialDelay(500 * time.Millisecond),
	}
)

// DeleteOptions control the delete command.
type DeleteOptions struct {
	// Wait blocks until the operator has torn the cluster down
	Wait bool
	// Purge deletes the worker volume claims once the cluster is gone.
	// It implies Wait.
	Purge bool
}

// Delete handles the delete command.
//
// Deleting the CitusCluster object hands teardown to the operator. Worker
// data survives unless purge is requested.
func Delete(ctx context.Context, target Target, name string, opts DeleteOptions) error {
	k8sClient, namespace, err := newKubeClient(target)
	if err != nil {
		return err
	}
	return deleteCluster(ctx, k8sClient, namespace, name, opts)
}

func deleteCluster(ctx context.Context, k8sClient client.Client, namespace, name string, opts DeleteOptions) error {
	cluster := &citusv1alpha1.CitusCluster{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
	}

	if err := k8sClient.Delete(ctx, cluster); err != nil {
		if !apierrors.IsNotFound(err) {
			return fmt.Errorf("failed to delete cluster: %w", err)
		}
		log.Printf("CitusCluster %s/%s not found", namespace, name)
	} else {
		log.Printf("Requested deletion of CitusCluster %s/%s", namespace, name)
	}

	if !opts.Wait && !opts.Purge {
		return nil
	}

	log.Printf("Waiting for the operator to tear down %s...", name)
	if err := waitForClusterGone(ctx, k8sClient, client.ObjectKeyFromObject(cluster)); err != nil {
		return err
	}
	log.Printf("CitusCluster %s/%s deleted", namespace, name)

	if opts.Purge {
		return purgeVolumeClaims(ctx, k8sClient, namespace, name)
	}
	return nil
}

// waitForClusterGone polls until the cluster object is erased.
func waitForClusterGone(ctx context.Context, k8sClient client.Client, key client.ObjectKey) error {
	err := retry.Until(ctx, func(ctx context.Context) (bool, error) {
		err := k8sClient.Get(ctx, key, &citusv1alpha1.CitusCluster{})
		if apierrors.IsNotFound(err) {
			return true, nil
		}
		return false, err
	}, waitOptions...)
	if err != nil {
		return fmt.Errorf("timed out waiting for cluster %s to be deleted: %w", key, err)
	}
	return nil
}

// purgeVolumeClaims deletes every claim labelled with the cluster name.
func purgeVolumeClaims(ctx context.Context, k8sClient client.Client, namespace, name string) error {
	claims := &corev1.PersistentVolumeClaimList{}
	if err := k8sClient.List(ctx, claims,
		client.InNamespace(namespace),
		client.MatchingLabels{labels.KeyApp: name},
	); err != nil {
		return fmt.Errorf("failed to list volume claims: %w", err)
	}

	if len(claims.Items) == 0 {
		log.Printf("No volume claims to purge for %s", name)
		return nil
	}

	tasks := make([]async.Task, 0, len(claims.Items))
	for i := range claims.Items {
		claim := &claims.Items[i]
		tasks = append(tasks, async.Task{
			Name: claim.Name,
			Func: func(ctx context.Context) error {
				return retry.Do(ctx, func(ctx context.Context) error {
					return client.IgnoreNotFound(k8sClient.Delete(ctx, claim))
				}, purgeOptions...)
			},
		})
	}

	if err := async.RunParallel(ctx, purgeConcurrency, tasks); err != nil {
		return fmt.Errorf("failed to purge volume claims: %w", err)
	}

	log.Printf("Purged %d volume claims for %s", len(claims.Items), name)
	return nil
}
