package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

// Reconcile results
const (
	resultSuccess  = "success"
	resultError    = "error"
	resultTerminal = "terminal"
)

// Resource operation outcomes
const (
	outcomeCreated       = "created"
	outcomeAlreadyExists = "already_exists"
	outcomeDeleted       = "deleted"
	outcomeNotFound      = "not_found"
	outcomeFailed        = "failed"
)

var (
	// Reconciliation metrics
	reconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "citus",
			Subsystem: "controller",
			Name:      "reconcile_total",
			Help:      "Total number of reconciliations by action and result",
		},
		[]string{"namespace", "cluster", "action", "result"},
	)

	reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "citus",
			Subsystem: "controller",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliation in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
		[]string{"action"},
	)

	// Cluster metrics
	workersDesired = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "citus",
			Subsystem: "cluster",
			Name:      "workers_desired",
			Help:      "Number of worker nodes provisioned for a cluster",
		},
		[]string{"namespace", "cluster"},
	)

	// API server metrics
	resourceOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "citus",
			Subsystem: "kubernetes",
			Name:      "resource_operations_total",
			Help:      "Total number of child resource operations by kind and outcome",
		},
		[]string{"operation", "kind", "outcome"},
	)
)

func init() {
	// Register metrics with controller-runtime's registry
	metrics.Registry.MustRegister(
		reconcileTotal,
		reconcileDuration,
		workersDesired,
		resourceOperationsTotal,
	)
}

// recordReconcileMetric records a reconciliation result.
func recordReconcileMetric(namespace, cluster, action, result string, duration float64) {
	reconcileTotal.WithLabelValues(namespace, cluster, action, result).Inc()
	reconcileDuration.WithLabelValues(action).Observe(duration)
}

// recordWorkersMetric records the worker count of a provisioned cluster.
func recordWorkersMetric(namespace, cluster string, workers int32) {
	workersDesired.WithLabelValues(namespace, cluster).Set(float64(workers))
}

func forgetWorkersMetric(namespace, cluster string) {
	workersDesired.DeleteLabelValues(namespace, cluster)
}

// recordResourceOperationMetric records a create or delete of a child resource.
func recordResourceOperationMetric(operation, kind, outcome string) {
	resourceOperationsTotal.WithLabelValues(operation, kind, outcome).Inc()
}

// Metrics helper methods that check enableMetrics before recording.

func (r *ClusterReconciler) recordReconcile(namespace, cluster, action, result string, duration float64) {
	if r.enableMetrics {
		recordReconcileMetric(namespace, cluster, action, result, duration)
	}
}

func (r *ClusterReconciler) recordWorkers(namespace, cluster string, workers int32) {
	if r.enableMetrics {
		recordWorkersMetric(namespace, cluster, workers)
	}
}

func (r *ClusterReconciler) forgetWorkers(namespace, cluster string) {
	if r.enableMetrics {
		forgetWorkersMetric(namespace, cluster)
	}
}

func (r *ClusterReconciler) recordResourceOperation(operation, kind, outcome string) {
	if r.enableMetrics {
		recordResourceOperationMetric(operation, kind, outcome)
	}
}
