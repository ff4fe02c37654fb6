package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	citusv1alpha1 "github.com/jw3/citus-operator/api/v1alpha1"
	"github.com/jw3/citus-operator/internal/config"
)

func setupTestScheme(t *testing.T) *runtime.Scheme {
	scheme := runtime.NewScheme()
	require.NoError(t, clientgoscheme.AddToScheme(scheme))
	require.NoError(t, citusv1alpha1.AddToScheme(scheme))
	return scheme
}

func newTestCluster(name, namespace string, workers int32) *citusv1alpha1.CitusCluster {
	return &citusv1alpha1.CitusCluster{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Spec: citusv1alpha1.CitusClusterSpec{
			Workers: workers,
		},
	}
}

func requestFor(cluster *citusv1alpha1.CitusCluster) ctrl.Request {
	return ctrl.Request{NamespacedName: types.NamespacedName{
		Namespace: cluster.Namespace,
		Name:      cluster.Name,
	}}
}

func newTestReconciler(t *testing.T, c client.Client, scheme *runtime.Scheme) (*ClusterReconciler, *record.FakeRecorder) {
	t.Helper()
	recorder := record.NewFakeRecorder(32)
	return NewClusterReconciler(c, scheme, recorder, WithMetrics(false)), recorder
}

func getCluster(t *testing.T, c client.Client, cluster *citusv1alpha1.CitusCluster) *citusv1alpha1.CitusCluster {
	t.Helper()
	got := &citusv1alpha1.CitusCluster{}
	require.NoError(t, c.Get(context.Background(), client.ObjectKeyFromObject(cluster), got))
	return got
}

func TestNewClusterReconciler(t *testing.T) {
	scheme := setupTestScheme(t)
	c := fake.NewClientBuilder().WithScheme(scheme).Build()
	recorder := record.NewFakeRecorder(10)

	t.Run("with default options", func(t *testing.T) {
		r := NewClusterReconciler(c, scheme, recorder)

		assert.NotNil(t, r)
		assert.Equal(t, c, r.Client)
		assert.Equal(t, scheme, r.Scheme)
		assert.Equal(t, recorder, r.Recorder)
		assert.True(t, r.enableMetrics)
		assert.Equal(t, config.DefaultResyncInterval, r.config.ResyncInterval)
	})

	t.Run("with custom options", func(t *testing.T) {
		cfg := config.Default()
		cfg.Image = "citusdata/citus:11.3"

		r := NewClusterReconciler(c, scheme, recorder,
			WithConfig(cfg),
			WithMetrics(false),
		)

		assert.Same(t, cfg, r.config)
		assert.False(t, r.enableMetrics)
	})
}

func TestDetermineAction(t *testing.T) {
	now := metav1.Now()

	tests := []struct {
		name       string
		deleted    bool
		finalizers []string
		want       ClusterAction
	}{
		{"not deleted without finalizers", false, nil, ActionCreate},
		{"not deleted with finalizer", false, []string{citusv1alpha1.Finalizer}, ActionNoOp},
		{"not deleted with foreign finalizer", false, []string{"example.com/other"}, ActionNoOp},
		{"deleted with finalizer", true, []string{citusv1alpha1.Finalizer}, ActionDelete},
		{"deleted without finalizers", true, nil, ActionDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cluster := newTestCluster("demo", "default", 3)
			cluster.Finalizers = tt.finalizers
			if tt.deleted {
				cluster.DeletionTimestamp = &now
			}
			assert.Equal(t, tt.want, determineAction(cluster))
		})
	}
}

func TestClusterAction_String(t *testing.T) {
	assert.Equal(t, "create", ActionCreate.String())
	assert.Equal(t, "delete", ActionDelete.String())
	assert.Equal(t, "noop", ActionNoOp.String())
}

func TestClusterReconciler_Reconcile(t *testing.T) {
	scheme := setupTestScheme(t)
	ctx := context.Background()

	t.Run("cluster not found returns no error", func(t *testing.T) {
		c := fake.NewClientBuilder().WithScheme(scheme).Build()
		r, _ := newTestReconciler(t, c, scheme)

		result, err := r.Reconcile(ctx, ctrl.Request{
			NamespacedName: types.NamespacedName{Namespace: "default", Name: "nonexistent"},
		})

		assert.NoError(t, err)
		assert.Equal(t, ctrl.Result{}, result)
	})

	t.Run("create provisions the full topology", func(t *testing.T) {
		cluster := newTestCluster("demo", "db", 3)
		c := fake.NewClientBuilder().
			WithScheme(scheme).
			WithObjects(cluster).
			WithStatusSubresource(cluster).
			Build()
		r, recorder := newTestReconciler(t, c, scheme)

		result, err := r.Reconcile(ctx, requestFor(cluster))
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, result.RequeueAfter)

		got := getCluster(t, c, cluster)
		assert.Equal(t, []string{citusv1alpha1.Finalizer}, got.Finalizers)
		assert.Equal(t, citusv1alpha1.ClusterPhaseActive, got.Status.Phase)
		assert.Equal(t, int32(3), got.Status.Workers)
		assert.NotNil(t, got.Status.LastReconcileTime)

		master := &appsv1.Deployment{}
		require.NoError(t, c.Get(ctx, types.NamespacedName{Namespace: "db", Name: "demo-master"}, master))
		assert.Equal(t, int32(1), *master.Spec.Replicas)
		require.Len(t, master.OwnerReferences, 1)
		assert.Equal(t, "demo", master.OwnerReferences[0].Name)

		workers := &appsv1.StatefulSet{}
		require.NoError(t, c.Get(ctx, types.NamespacedName{Namespace: "db", Name: "demo-workers"}, workers))
		assert.Equal(t, int32(3), *workers.Spec.Replicas)
		assert.Equal(t, "demo-worker", workers.Spec.ServiceName)

		require.NoError(t, c.Get(ctx, types.NamespacedName{Namespace: "db", Name: "demo"}, &corev1.Service{}))
		require.NoError(t, c.Get(ctx, types.NamespacedName{Namespace: "db", Name: "demo-worker"}, &corev1.Service{}))

		job := &batchv1.Job{}
		require.NoError(t, c.Get(ctx, types.NamespacedName{Namespace: "db", Name: "demo-register-workers"}, job))

		assert.Contains(t, <-recorder.Events, "Provisioned")
	})

	t.Run("noop leaves an existing cluster untouched", func(t *testing.T) {
		cluster := newTestCluster("demo", "db", 3)
		cluster.Finalizers = []string{citusv1alpha1.Finalizer}
		c := fake.NewClientBuilder().
			WithScheme(scheme).
			WithObjects(cluster).
			WithStatusSubresource(cluster).
			Build()
		r, _ := newTestReconciler(t, c, scheme)

		result, err := r.Reconcile(ctx, requestFor(cluster))
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, result.RequeueAfter)

		deployments := &appsv1.DeploymentList{}
		require.NoError(t, c.List(ctx, deployments, client.InNamespace("db")))
		assert.Empty(t, deployments.Items)
	})

	t.Run("delete tears down and releases the cluster", func(t *testing.T) {
		cluster := newTestCluster("demo", "db", 3)
		claim := &corev1.PersistentVolumeClaim{
			ObjectMeta: metav1.ObjectMeta{
				Name:      "data-demo-workers-0",
				Namespace: "db",
				Labels:    map[string]string{"app": "demo"},
			},
		}
		c := fake.NewClientBuilder().
			WithScheme(scheme).
			WithObjects(cluster, claim).
			WithStatusSubresource(cluster).
			Build()
		r, _ := newTestReconciler(t, c, scheme)

		_, err := r.Reconcile(ctx, requestFor(cluster))
		require.NoError(t, err)

		require.NoError(t, c.Delete(ctx, getCluster(t, c, cluster)))

		result, err := r.Reconcile(ctx, requestFor(cluster))
		require.NoError(t, err)
		assert.Equal(t, ctrl.Result{}, result)

		err = c.Get(ctx, client.ObjectKeyFromObject(cluster), &citusv1alpha1.CitusCluster{})
		assert.True(t, apierrors.IsNotFound(err), "cluster should be erased, got %v", err)

		for _, obj := range teardownTargets(cluster) {
			err := c.Get(ctx, client.ObjectKeyFromObject(obj), obj)
			assert.True(t, apierrors.IsNotFound(err), "%s %s should be deleted", kindOf(obj), obj.GetName())
		}

		// Claims survive a plain delete
		require.NoError(t, c.Get(ctx, client.ObjectKeyFromObject(claim), &corev1.PersistentVolumeClaim{}))
	})

	t.Run("invalid spec is a terminal error", func(t *testing.T) {
		cluster := newTestCluster("demo", "db", 0)
		c := fake.NewClientBuilder().
			WithScheme(scheme).
			WithObjects(cluster).
			WithStatusSubresource(cluster).
			Build()
		r, recorder := newTestReconciler(t, c, scheme)

		result, err := r.Reconcile(ctx, requestFor(cluster))
		require.Error(t, err)
		assert.True(t, isTerminal(err))
		assert.Equal(t, ctrl.Result{}, result)

		got := getCluster(t, c, cluster)
		assert.Empty(t, got.Finalizers, "nothing may be guarded before the input is valid")
		assert.Equal(t, citusv1alpha1.ClusterPhaseFailed, got.Status.Phase)
		assert.Equal(t, int32(1), got.Status.FailureCount)
		assert.Contains(t, <-recorder.Events, "ReconcileFailed")
	})
}

func TestReconcileCreate_Idempotent(t *testing.T) {
	scheme := setupTestScheme(t)
	ctx := context.Background()

	cluster := newTestCluster("demo", "db", 2)
	c := fake.NewClientBuilder().
		WithScheme(scheme).
		WithObjects(cluster).
		WithStatusSubresource(cluster).
		Build()
	r, _ := newTestReconciler(t, c, scheme)

	for i := 0; i < 2; i++ {
		current := getCluster(t, c, cluster)
		_, err := r.reconcileCreate(ctx, current)
		require.NoError(t, err, "create attempt %d", i+1)
	}

	deployments := &appsv1.DeploymentList{}
	require.NoError(t, c.List(ctx, deployments, client.InNamespace("db")))
	assert.Len(t, deployments.Items, 1)

	statefulSets := &appsv1.StatefulSetList{}
	require.NoError(t, c.List(ctx, statefulSets, client.InNamespace("db")))
	assert.Len(t, statefulSets.Items, 1)

	jobs := &batchv1.JobList{}
	require.NoError(t, c.List(ctx, jobs, client.InNamespace("db")))
	assert.Len(t, jobs.Items, 1, "registration must be submitted once")

	assert.Equal(t, []string{citusv1alpha1.Finalizer}, getCluster(t, c, cluster).Finalizers)
}

func TestReconcile_CreateFailureRollsBackFinalizer(t *testing.T) {
	scheme := setupTestScheme(t)
	ctx := context.Background()

	cluster := newTestCluster("demo", "db", 3)
	failWorkers := true
	c := fake.NewClientBuilder().
		WithScheme(scheme).
		WithObjects(cluster).
		WithStatusSubresource(cluster).
		WithInterceptorFuncs(interceptor.Funcs{
			Create: func(ctx context.Context, c client.WithWatch, obj client.Object, opts ...client.CreateOption) error {
				if _, ok := obj.(*appsv1.StatefulSet); ok && failWorkers {
					return errors.New("quota exceeded")
				}
				return c.Create(ctx, obj, opts...)
			},
		}).
		Build()
	r, recorder := newTestReconciler(t, c, scheme)

	result, err := r.Reconcile(ctx, requestFor(cluster))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, result.RequeueAfter)

	got := getCluster(t, c, cluster)
	assert.Empty(t, got.Finalizers)
	assert.Equal(t, citusv1alpha1.ClusterPhaseFailed, got.Status.Phase)
	assert.Equal(t, int32(1), got.Status.FailureCount)
	assert.Contains(t, got.Status.LastError, "quota exceeded")
	assert.Contains(t, <-recorder.Events, "ReconcileFailed")

	failWorkers = false

	result, err = r.Reconcile(ctx, requestFor(cluster))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, result.RequeueAfter)

	got = getCluster(t, c, cluster)
	assert.Equal(t, []string{citusv1alpha1.Finalizer}, got.Finalizers)
	assert.Equal(t, citusv1alpha1.ClusterPhaseActive, got.Status.Phase)
	assert.Zero(t, got.Status.FailureCount)
	require.NoError(t, c.Get(ctx, types.NamespacedName{Namespace: "db", Name: "demo-workers"}, &appsv1.StatefulSet{}))
}

func TestReconcile_DeleteAfterCreateFailureLeavesObjectsToGC(t *testing.T) {
	scheme := setupTestScheme(t)
	ctx := context.Background()

	cluster := newTestCluster("demo", "db", 2)
	c := fake.NewClientBuilder().
		WithScheme(scheme).
		WithObjects(cluster).
		WithStatusSubresource(cluster).
		WithInterceptorFuncs(interceptor.Funcs{
			Create: func(ctx context.Context, c client.WithWatch, obj client.Object, opts ...client.CreateOption) error {
				if _, ok := obj.(*appsv1.StatefulSet); ok {
					return errors.New("quota exceeded")
				}
				return c.Create(ctx, obj, opts...)
			},
		}).
		Build()
	r, _ := newTestReconciler(t, c, scheme)

	_, err := r.Reconcile(ctx, requestFor(cluster))
	require.NoError(t, err)
	require.Empty(t, getCluster(t, c, cluster).Finalizers)

	master := &appsv1.Deployment{}
	require.NoError(t, c.Get(ctx, types.NamespacedName{Namespace: "db", Name: "demo-master"}, master))

	// No finalizer, so the delete is immediate and teardown never runs.
	require.NoError(t, c.Delete(ctx, getCluster(t, c, cluster)))
	result, err := r.Reconcile(ctx, requestFor(cluster))
	require.NoError(t, err)
	assert.Equal(t, ctrl.Result{}, result)

	owner := metav1.GetControllerOf(master)
	require.NotNil(t, owner, "partial objects must be owned by the cluster for garbage collection")
	assert.Equal(t, citusv1alpha1.GroupVersion.String(), owner.APIVersion)
	assert.Equal(t, "CitusCluster", owner.Kind)
	assert.Equal(t, "demo", owner.Name)
	assert.True(t, *owner.BlockOwnerDeletion)
}

func TestReconcileDelete_Order(t *testing.T) {
	scheme := setupTestScheme(t)
	ctx := context.Background()

	var calls []string
	track := func(verb string, obj client.Object) {
		calls = append(calls, verb+" "+kindOf(obj)+"/"+obj.GetName())
	}

	cluster := newTestCluster("demo", "db", 3)
	c := fake.NewClientBuilder().
		WithScheme(scheme).
		WithObjects(cluster).
		WithStatusSubresource(cluster).
		WithInterceptorFuncs(interceptor.Funcs{
			Delete: func(ctx context.Context, c client.WithWatch, obj client.Object, opts ...client.DeleteOption) error {
				track("delete", obj)
				return c.Delete(ctx, obj, opts...)
			},
			Patch: func(ctx context.Context, c client.WithWatch, obj client.Object, patch client.Patch, opts ...client.PatchOption) error {
				track("patch", obj)
				return c.Patch(ctx, obj, patch, opts...)
			},
		}).
		Build()
	r, _ := newTestReconciler(t, c, scheme)

	_, err := r.Reconcile(ctx, requestFor(cluster))
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx, getCluster(t, c, cluster)))

	calls = nil
	_, err = r.Reconcile(ctx, requestFor(cluster))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"delete Deployment/demo-master",
		"delete Service/demo",
		"delete StatefulSet/demo-workers",
		"delete Service/demo-worker",
		"delete Job/demo-register-workers",
		"patch CitusCluster/demo",
	}, calls, "finalizer must be removed only after every resource is deleted")
}

func TestReconcileDelete_ResumesAfterFinalizerFailure(t *testing.T) {
	scheme := setupTestScheme(t)
	ctx := context.Background()

	failPatch := false
	cluster := newTestCluster("demo", "db", 3)
	c := fake.NewClientBuilder().
		WithScheme(scheme).
		WithObjects(cluster).
		WithStatusSubresource(cluster).
		WithInterceptorFuncs(interceptor.Funcs{
			Patch: func(ctx context.Context, c client.WithWatch, obj client.Object, patch client.Patch, opts ...client.PatchOption) error {
				if failPatch {
					return errors.New("connection reset")
				}
				return c.Patch(ctx, obj, patch, opts...)
			},
		}).
		Build()
	r, _ := newTestReconciler(t, c, scheme)

	_, err := r.Reconcile(ctx, requestFor(cluster))
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx, getCluster(t, c, cluster)))

	failPatch = true
	result, err := r.Reconcile(ctx, requestFor(cluster))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, result.RequeueAfter)

	got := getCluster(t, c, cluster)
	assert.Equal(t, []string{citusv1alpha1.Finalizer}, got.Finalizers)
	assert.Equal(t, int32(1), got.Status.FailureCount)
	for _, obj := range teardownTargets(cluster) {
		assert.True(t, apierrors.IsNotFound(c.Get(ctx, client.ObjectKeyFromObject(obj), obj)))
	}

	// The next delivery re-runs Delete over already-absent resources
	failPatch = false
	result, err = r.Reconcile(ctx, requestFor(cluster))
	require.NoError(t, err)
	assert.Equal(t, ctrl.Result{}, result)

	err = c.Get(ctx, client.ObjectKeyFromObject(cluster), &citusv1alpha1.CitusCluster{})
	assert.True(t, apierrors.IsNotFound(err))
}

func TestReconcileDelete_WithoutFinalizer(t *testing.T) {
	scheme := setupTestScheme(t)
	ctx := context.Background()

	// Marked for deletion with no finalizers: the object is already gone
	// from the API server, only the cached copy remains.
	now := metav1.Now()
	cluster := newTestCluster("demo", "db", 3)
	cluster.DeletionTimestamp = &now

	require.Equal(t, ActionDelete, determineAction(cluster))

	c := fake.NewClientBuilder().WithScheme(scheme).Build()
	r, _ := newTestReconciler(t, c, scheme)

	result, err := r.reconcileDelete(ctx, cluster)
	require.NoError(t, err)
	assert.Equal(t, ctrl.Result{}, result)
}

func TestReconcile_MissingNamespaceIsTerminal(t *testing.T) {
	scheme := setupTestScheme(t)
	c := fake.NewClientBuilder().WithScheme(scheme).Build()
	r, _ := newTestReconciler(t, c, scheme)

	_, err := r.reconcile(context.Background(), newTestCluster("demo", "", 3), ActionCreate)
	require.Error(t, err)
	assert.True(t, isTerminal(err))
	assert.Contains(t, err.Error(), "expected namespaced resource")
}

func TestNonRetryable(t *testing.T) {
	assert.NoError(t, nonRetryable(errors.New("transient")))
	assert.Error(t, nonRetryable(reconcile.TerminalError(errors.New("bad input"))))
}
