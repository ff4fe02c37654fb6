package handlers

import (
	"fmt"
	"io"

	"sigs.k8s.io/controller-runtime/pkg/client/apiutil"
	"sigs.k8s.io/yaml"

	citusv1alpha1 "github.com/jw3/citus-operator/api/v1alpha1"
	"github.com/jw3/citus-operator/internal/config"
	"github.com/jw3/citus-operator/internal/topology"
)

// Render handles the render command.
//
// It prints the resources the operator would create for a cluster as a
// multi-document YAML stream. No API server is contacted.
func Render(w io.Writer, name, namespace, configPath string, opts ClusterOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if namespace == "" {
		namespace = "default"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load operator config: %w", err)
	}

	cluster := newCluster(name, namespace, opts)
	topo, err := topology.Build(topology.ParamsFor(cluster, cfg))
	if err != nil {
		return err
	}

	for i, obj := range topo.Objects() {
		gvk, err := apiutil.GVKForObject(obj, citusv1alpha1.Scheme)
		if err != nil {
			return fmt.Errorf("failed to resolve kind of %s: %w", obj.GetName(), err)
		}
		obj.GetObjectKind().SetGroupVersionKind(gvk)

		data, err := yaml.Marshal(obj)
		if err != nil {
			return fmt.Errorf("failed to marshal %s %s: %w", gvk.Kind, obj.GetName(), err)
		}

		if i > 0 {
			if _, err := fmt.Fprintln(w, "---"); err != nil {
				return err
			}
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}

	return nil
}
