package controller

import (
	"context"
	"encoding/json"

	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	citusv1alpha1 "github.com/jw3/citus-operator/api/v1alpha1"
)

// finalizerPatch is a JSON merge patch that only touches metadata.finalizers.
// A nil list serializes to null, which clears the field.
type finalizerPatch struct {
	Metadata finalizerMetadata `json:"metadata"`
}

type finalizerMetadata struct {
	Finalizers []string `json:"finalizers"`
}

var _ client.Patch = finalizerPatch{}

func (p finalizerPatch) Type() types.PatchType {
	return types.MergePatchType
}

func (p finalizerPatch) Data(client.Object) ([]byte, error) {
	return json.Marshal(p)
}

// addFinalizer sets the finalizer list to exactly the operator's finalizer.
func (r *ClusterReconciler) addFinalizer(ctx context.Context, cluster *citusv1alpha1.CitusCluster) error {
	patch := finalizerPatch{Metadata: finalizerMetadata{
		Finalizers: []string{citusv1alpha1.Finalizer},
	}}
	return r.Patch(ctx, cluster, patch)
}

// removeFinalizer clears the finalizer list. If the object is marked for
// deletion the API server erases it once the patch lands.
func (r *ClusterReconciler) removeFinalizer(ctx context.Context, cluster *citusv1alpha1.CitusCluster) error {
	return client.IgnoreNotFound(r.Patch(ctx, cluster, finalizerPatch{}))
}
