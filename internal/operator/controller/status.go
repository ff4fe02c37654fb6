package controller

import (
	"context"

	"k8s.io/apimachinery/pkg/api/equality"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	citusv1alpha1 "github.com/jw3/citus-operator/api/v1alpha1"
)

// statusMutation applies an observed outcome to a cluster's status.
type statusMutation func(cluster *citusv1alpha1.CitusCluster)

func markActive(cluster *citusv1alpha1.CitusCluster) {
	cluster.Status.Phase = citusv1alpha1.ClusterPhaseActive
	cluster.Status.Workers = cluster.Spec.Workers
	cluster.Status.FailureCount = 0
	cluster.Status.LastError = ""
	cluster.Status.ObservedGeneration = cluster.Generation
	meta.SetStatusCondition(&cluster.Status.Conditions, metav1.Condition{
		Type:               citusv1alpha1.ConditionProvisioned,
		Status:             metav1.ConditionTrue,
		Reason:             "TopologySubmitted",
		Message:            "Master, workers and registration job submitted",
		ObservedGeneration: cluster.Generation,
	})
	meta.SetStatusCondition(&cluster.Status.Conditions, metav1.Condition{
		Type:               citusv1alpha1.ConditionReady,
		Status:             metav1.ConditionTrue,
		Reason:             "Reconciled",
		Message:            "Cluster is converged",
		ObservedGeneration: cluster.Generation,
	})
}

func markTerminating(cluster *citusv1alpha1.CitusCluster) {
	cluster.Status.Phase = citusv1alpha1.ClusterPhaseTerminating
	meta.SetStatusCondition(&cluster.Status.Conditions, metav1.Condition{
		Type:               citusv1alpha1.ConditionReady,
		Status:             metav1.ConditionFalse,
		Reason:             "Deleting",
		Message:            "Cluster topology is being torn down",
		ObservedGeneration: cluster.Generation,
	})
}

func markFailed(err error) statusMutation {
	return func(cluster *citusv1alpha1.CitusCluster) {
		cluster.Status.Phase = citusv1alpha1.ClusterPhaseFailed
		cluster.Status.FailureCount++
		cluster.Status.LastError = err.Error()
		meta.SetStatusCondition(&cluster.Status.Conditions, metav1.Condition{
			Type:               citusv1alpha1.ConditionReady,
			Status:             metav1.ConditionFalse,
			Reason:             "ReconcileFailed",
			Message:            err.Error(),
			ObservedGeneration: cluster.Generation,
		})
	}
}

// updateStatus applies mutate and patches the status subresource when it
// changed. Failures are logged and never fail the reconcile.
func (r *ClusterReconciler) updateStatus(ctx context.Context, cluster *citusv1alpha1.CitusCluster, mutate statusMutation) {
	logger := log.FromContext(ctx)

	base := cluster.DeepCopy()
	mutate(cluster)

	if statusEqual(base.Status, cluster.Status) {
		return
	}

	now := metav1.Now()
	cluster.Status.LastReconcileTime = &now

	if err := r.Status().Patch(ctx, cluster, client.MergeFrom(base)); err != nil {
		if client.IgnoreNotFound(err) != nil {
			logger.Error(err, "failed to update cluster status")
		}
		return
	}
	logger.V(1).Info("updated cluster status", "phase", cluster.Status.Phase)
}

// statusEqual compares two statuses ignoring the reconcile timestamp.
func statusEqual(a, b citusv1alpha1.CitusClusterStatus) bool {
	a.LastReconcileTime = nil
	b.LastReconcileTime = nil
	return equality.Semantic.DeepEqual(a, b)
}
