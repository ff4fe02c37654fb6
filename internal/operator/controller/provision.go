package controller

import (
	"context"
	"fmt"
	"reflect"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	citusv1alpha1 "github.com/jw3/citus-operator/api/v1alpha1"
	"github.com/jw3/citus-operator/internal/topology"
)

// provision submits every topology object. Objects that already exist are
// left untouched, so provisioning twice converges to the same state.
func (r *ClusterReconciler) provision(ctx context.Context, cluster *citusv1alpha1.CitusCluster, topo *topology.Topology) error {
	logger := log.FromContext(ctx)

	for _, obj := range topo.Objects() {
		kind := kindOf(obj)

		if err := controllerutil.SetControllerReference(cluster, obj, r.Scheme); err != nil {
			return fmt.Errorf("failed to set owner reference on %s %s: %w", kind, obj.GetName(), err)
		}

		if err := r.Create(ctx, obj); err != nil {
			if apierrors.IsAlreadyExists(err) {
				r.recordResourceOperation("create", kind, outcomeAlreadyExists)
				logger.V(1).Info("resource already exists", "kind", kind, "name", obj.GetName())
				continue
			}
			r.recordResourceOperation("create", kind, outcomeFailed)
			return fmt.Errorf("failed to create %s %s: %w", kind, obj.GetName(), err)
		}

		r.recordResourceOperation("create", kind, outcomeCreated)
		logger.Info("created resource", "kind", kind, "name", obj.GetName())
	}

	return nil
}

func kindOf(obj client.Object) string {
	return reflect.TypeOf(obj).Elem().Name()
}
