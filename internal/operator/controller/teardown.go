package controller

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	citusv1alpha1 "github.com/jw3/citus-operator/api/v1alpha1"
	"github.com/jw3/citus-operator/internal/util/naming"
)

// teardownTargets lists the cluster's resources in deletion order:
// master, then workers, then the registration job.
func teardownTargets(cluster *citusv1alpha1.CitusCluster) []client.Object {
	meta := func(name string) metav1.ObjectMeta {
		return metav1.ObjectMeta{Name: name, Namespace: cluster.Namespace}
	}

	return []client.Object{
		&appsv1.Deployment{ObjectMeta: meta(naming.MasterDeployment(cluster.Name))},
		&corev1.Service{ObjectMeta: meta(naming.MasterService(cluster.Name))},
		&appsv1.StatefulSet{ObjectMeta: meta(naming.WorkerStatefulSet(cluster.Name))},
		&corev1.Service{ObjectMeta: meta(naming.WorkerService(cluster.Name))},
		&batchv1.Job{ObjectMeta: meta(naming.RegistrationJob(cluster.Name))},
	}
}

// teardown deletes the cluster's resources. Resources that are already gone
// count as deleted. Persistent volume claims are not touched.
func (r *ClusterReconciler) teardown(ctx context.Context, cluster *citusv1alpha1.CitusCluster) error {
	logger := log.FromContext(ctx)

	for _, obj := range teardownTargets(cluster) {
		kind := kindOf(obj)

		err := r.Delete(ctx, obj, client.PropagationPolicy(metav1.DeletePropagationBackground))
		switch {
		case err == nil:
			r.recordResourceOperation("delete", kind, outcomeDeleted)
			logger.Info("deleted resource", "kind", kind, "name", obj.GetName())
		case apierrors.IsNotFound(err):
			r.recordResourceOperation("delete", kind, outcomeNotFound)
			logger.V(1).Info("resource already deleted", "kind", kind, "name", obj.GetName())
		default:
			r.recordResourceOperation("delete", kind, outcomeFailed)
			return fmt.Errorf("failed to delete %s %s: %w", kind, obj.GetName(), err)
		}
	}

	return nil
}
