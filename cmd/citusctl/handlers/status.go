package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"k8s.io/apimachinery/pkg/api/meta"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/yaml"

	citusv1alpha1 "github.com/jw3/citus-operator/api/v1alpha1"
)

// Output formats for the status command.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// ClusterStatus is the status summary printed for one cluster.
type ClusterStatus struct {
	Name            string `json:"name"`
	Namespace       string `json:"namespace"`
	Phase           string `json:"phase"`
	Ready           bool   `json:"ready"`
	Workers         int32  `json:"workers"`
	WorkerStorageGB int32  `json:"workerStorageGB"`
	FailureCount    int32  `json:"failureCount,omitempty"`
	LastError       string `json:"lastError,omitempty"`
	LastReconcile   string `json:"lastReconcile,omitempty"`
}

// Status handles the status command. An empty name lists every cluster in
// the namespace.
func Status(ctx context.Context, target Target, name, output string) error {
	k8sClient, namespace, err := newKubeClient(target)
	if err != nil {
		return err
	}

	statuses, err := getClusterStatuses(ctx, k8sClient, namespace, name)
	if err != nil {
		return err
	}

	return printStatus(os.Stdout, statuses, output, isInteractiveTTY())
}

func getClusterStatuses(ctx context.Context, k8sClient client.Client, namespace, name string) ([]ClusterStatus, error) {
	if name != "" {
		cluster := &citusv1alpha1.CitusCluster{}
		if err := k8sClient.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, cluster); err != nil {
			return nil, fmt.Errorf("failed to get cluster %s/%s: %w", namespace, name, err)
		}
		return []ClusterStatus{summarize(cluster)}, nil
	}

	list := &citusv1alpha1.CitusClusterList{}
	if err := k8sClient.List(ctx, list, client.InNamespace(namespace)); err != nil {
		return nil, fmt.Errorf("failed to list clusters in %s: %w", namespace, err)
	}

	statuses := make([]ClusterStatus, 0, len(list.Items))
	for i := range list.Items {
		statuses = append(statuses, summarize(&list.Items[i]))
	}
	return statuses, nil
}

// summarize falls back to the phase derived from metadata when the
// operator has not reported one yet.
func summarize(cluster *citusv1alpha1.CitusCluster) ClusterStatus {
	phase := cluster.Status.Phase
	if phase == "" || cluster.DeletionTimestamp != nil {
		phase = cluster.Phase()
	}

	status := ClusterStatus{
		Name:            cluster.Name,
		Namespace:       cluster.Namespace,
		Phase:           string(phase),
		Ready:           meta.IsStatusConditionTrue(cluster.Status.Conditions, citusv1alpha1.ConditionReady),
		Workers:         cluster.Spec.Workers,
		WorkerStorageGB: cluster.Spec.StorageGB(),
		FailureCount:    cluster.Status.FailureCount,
		LastError:       cluster.Status.LastError,
	}
	if cluster.Status.LastReconcileTime != nil {
		status.LastReconcile = time.Since(cluster.Status.LastReconcileTime.Time).Round(time.Second).String() + " ago"
	}
	return status
}

func printStatus(w io.Writer, statuses []ClusterStatus, output string, styled bool) error {
	switch output {
	case OutputJSON:
		data, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case OutputYAML:
		data, err := yaml.Marshal(statuses)
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		_, err = w.Write(data)
		return err
	case OutputTable, "":
		if len(statuses) == 0 {
			_, err := fmt.Fprintln(w, "No CitusClusters found.")
			return err
		}
		if styled {
			_, err := io.WriteString(w, renderStatusStyled(statuses))
			return err
		}
		_, err := io.WriteString(w, renderStatusPlain(statuses))
		return err
	default:
		return fmt.Errorf("unknown output format %q (want %s, %s or %s)", output, OutputTable, OutputJSON, OutputYAML)
	}
}

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
