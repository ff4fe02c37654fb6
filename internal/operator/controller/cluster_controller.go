package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	citusv1alpha1 "github.com/jw3/citus-operator/api/v1alpha1"
	"github.com/jw3/citus-operator/internal/config"
	"github.com/jw3/citus-operator/internal/topology"
)

// ClusterAction is the step a reconcile takes for a CitusCluster.
type ClusterAction int

const (
	// ActionNoOp re-checks a converged cluster later.
	ActionNoOp ClusterAction = iota
	// ActionCreate adds the finalizer and provisions the topology.
	ActionCreate
	// ActionDelete tears the topology down and removes the finalizer.
	ActionDelete
)

func (a ClusterAction) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionDelete:
		return "delete"
	default:
		return "noop"
	}
}

// determineAction depends only on the deletion marker and the finalizer set.
func determineAction(cluster *citusv1alpha1.CitusCluster) ClusterAction {
	if cluster.DeletionTimestamp != nil {
		return ActionDelete
	}
	if len(cluster.Finalizers) == 0 {
		return ActionCreate
	}
	return ActionNoOp
}

// ClusterReconciler reconciles a CitusCluster object.
type ClusterReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder

	config        *config.Config
	enableMetrics bool
}

// Option configures a ClusterReconciler.
type Option func(*ClusterReconciler)

// WithConfig sets the operator configuration.
func WithConfig(cfg *config.Config) Option {
	return func(r *ClusterReconciler) {
		r.config = cfg
	}
}

// WithMetrics enables or disables prometheus metrics recording.
func WithMetrics(enabled bool) Option {
	return func(r *ClusterReconciler) {
		r.enableMetrics = enabled
	}
}

// NewClusterReconciler creates a new ClusterReconciler.
func NewClusterReconciler(c client.Client, scheme *runtime.Scheme, recorder record.EventRecorder, opts ...Option) *ClusterReconciler {
	r := &ClusterReconciler{
		Client:        c,
		Scheme:        scheme,
		Recorder:      recorder,
		config:        config.Default(),
		enableMetrics: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// +kubebuilder:rbac:groups=jw3.xyz,resources=citusclusters,verbs=get;list;watch;update;patch
// +kubebuilder:rbac:groups=jw3.xyz,resources=citusclusters/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=jw3.xyz,resources=citusclusters/finalizers,verbs=update
// +kubebuilder:rbac:groups=apps,resources=deployments;statefulsets,verbs=get;list;watch;create;delete
// +kubebuilder:rbac:groups="",resources=services,verbs=get;list;watch;create;delete
// +kubebuilder:rbac:groups=batch,resources=jobs,verbs=get;list;watch;create;delete
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch

// Reconcile handles the reconciliation loop for CitusCluster resources.
func (r *ClusterReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)
	start := time.Now()

	cluster := &citusv1alpha1.CitusCluster{}
	if err := r.Get(ctx, req.NamespacedName, cluster); err != nil {
		if apierrors.IsNotFound(err) {
			// Object erased, nothing to do
			return ctrl.Result{}, nil
		}
		logger.Error(err, "unable to fetch CitusCluster")
		return ctrl.Result{}, err
	}

	action := determineAction(cluster)
	logger = logger.WithValues("action", action.String())
	ctx = log.IntoContext(ctx, logger)

	result, err := r.reconcile(ctx, cluster, action)
	if err != nil {
		return r.handleError(ctx, cluster, action, err, start), nonRetryable(err)
	}

	r.recordReconcile(cluster.Namespace, cluster.Name, action.String(), resultSuccess, time.Since(start).Seconds())
	logger.V(1).Info("reconciliation successful", "requeueAfter", result.RequeueAfter)
	return result, nil
}

// reconcile dispatches to the action handler.
func (r *ClusterReconciler) reconcile(ctx context.Context, cluster *citusv1alpha1.CitusCluster, action ClusterAction) (ctrl.Result, error) {
	if cluster.Namespace == "" {
		return ctrl.Result{}, reconcile.TerminalError(errors.New("expected namespaced resource"))
	}

	switch action {
	case ActionCreate:
		return r.reconcileCreate(ctx, cluster)
	case ActionDelete:
		return r.reconcileDelete(ctx, cluster)
	default:
		return r.reconcileNoOp(ctx, cluster)
	}
}

// reconcileCreate guards the cluster with the finalizer, then provisions it.
func (r *ClusterReconciler) reconcileCreate(ctx context.Context, cluster *citusv1alpha1.CitusCluster) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	topo, err := topology.Build(topology.ParamsFor(cluster, r.config))
	if err != nil {
		return ctrl.Result{}, reconcile.TerminalError(err)
	}

	if err := r.addFinalizer(ctx, cluster); err != nil {
		return ctrl.Result{}, fmt.Errorf("failed to add finalizer: %w", err)
	}

	if err := r.provision(ctx, cluster, topo); err != nil {
		// Without the finalizer the next reconcile re-enters Create and
		// finishes the topology. A delete landing before that skips the
		// ordered teardown: the partial objects are then removed only by
		// garbage collection through their controller owner references.
		if rbErr := r.removeFinalizer(ctx, cluster); rbErr != nil {
			logger.Error(rbErr, "failed to roll back finalizer after provisioning error")
		}
		return ctrl.Result{}, fmt.Errorf("failed to provision topology: %w", err)
	}

	r.recordWorkers(cluster.Namespace, cluster.Name, cluster.Spec.Workers)
	r.Recorder.Eventf(cluster, corev1.EventTypeNormal, "Provisioned",
		"Provisioned master and %d workers", cluster.Spec.Workers)
	logger.Info("cluster provisioned", "workers", cluster.Spec.Workers)

	r.updateStatus(ctx, cluster, markActive)
	return ctrl.Result{RequeueAfter: r.config.ResyncInterval}, nil
}

// reconcileDelete tears the topology down, then releases the finalizer.
func (r *ClusterReconciler) reconcileDelete(ctx context.Context, cluster *citusv1alpha1.CitusCluster) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	r.updateStatus(ctx, cluster, markTerminating)

	if err := r.teardown(ctx, cluster); err != nil {
		return ctrl.Result{}, fmt.Errorf("failed to tear down topology: %w", err)
	}

	if err := r.removeFinalizer(ctx, cluster); err != nil {
		return ctrl.Result{}, fmt.Errorf("failed to remove finalizer: %w", err)
	}

	r.forgetWorkers(cluster.Namespace, cluster.Name)
	r.Recorder.Event(cluster, corev1.EventTypeNormal, "Deleted", "Tore down cluster topology")
	logger.Info("cluster torn down")

	// The object is erased once the finalizer is gone
	return ctrl.Result{}, nil
}

// reconcileNoOp is the converged steady state.
func (r *ClusterReconciler) reconcileNoOp(ctx context.Context, cluster *citusv1alpha1.CitusCluster) (ctrl.Result, error) {
	r.updateStatus(ctx, cluster, markActive)
	return ctrl.Result{RequeueAfter: r.config.ResyncInterval}, nil
}

// handleError logs a failed reconcile, records it on the object and decides
// when to retry. Terminal errors are not retried.
func (r *ClusterReconciler) handleError(ctx context.Context, cluster *citusv1alpha1.CitusCluster, action ClusterAction, err error, start time.Time) ctrl.Result {
	logger := log.FromContext(ctx)
	logger.Error(err, "reconciliation failed")

	r.Recorder.Eventf(cluster, corev1.EventTypeWarning, "ReconcileFailed", "%s failed: %v", action, err)
	r.updateStatus(ctx, cluster, markFailed(err))

	if isTerminal(err) {
		r.recordReconcile(cluster.Namespace, cluster.Name, action.String(), resultTerminal, time.Since(start).Seconds())
		return ctrl.Result{}
	}

	r.recordReconcile(cluster.Namespace, cluster.Name, action.String(), resultError, time.Since(start).Seconds())
	return ctrl.Result{RequeueAfter: r.config.ErrorRequeueAfter}
}

func isTerminal(err error) bool {
	return errors.Is(err, reconcile.TerminalError(nil))
}

// nonRetryable passes terminal errors on to controller-runtime, which logs
// them without requeueing. Other errors are retried on the fixed delay.
func nonRetryable(err error) error {
	if isTerminal(err) {
		return err
	}
	return nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *ClusterReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		// Status writes do not bump the generation and must not retrigger
		For(&citusv1alpha1.CitusCluster{}, builder.WithPredicates(predicate.GenerationChangedPredicate{})).
		WithOptions(controller.Options{
			MaxConcurrentReconciles: r.config.MaxConcurrentReconciles,
		}).
		Complete(r)
}
