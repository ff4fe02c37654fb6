package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Finalizer guards a CitusCluster against removal until its topology is torn down.
const Finalizer = "citusclusters.jw3.xyz/finalizer"

// DefaultWorkerStorageGB is used when spec.workerStorageGB is unset.
const DefaultWorkerStorageGB int32 = 1

// CitusClusterSpec defines the desired state of a Citus cluster.
type CitusClusterSpec struct {
	// Workers is the number of Citus worker nodes
	// +kubebuilder:validation:Minimum=1
	Workers int32 `json:"workers"`

	// WorkerStorageGB is the size of each worker's data volume in GiB
	// +kubebuilder:validation:Minimum=1
	// +kubebuilder:default=1
	// +optional
	WorkerStorageGB *int32 `json:"workerStorageGB,omitempty"`
}

// StorageGB returns the per-worker storage size, falling back to the default.
func (s CitusClusterSpec) StorageGB() int32 {
	if s.WorkerStorageGB == nil {
		return DefaultWorkerStorageGB
	}
	return *s.WorkerStorageGB
}

// CitusClusterStatus defines the observed state of CitusCluster.
type CitusClusterStatus struct {
	// Phase is the lifecycle phase of the cluster
	// +kubebuilder:validation:Enum=Pending;Active;Terminating;Failed
	Phase ClusterPhase `json:"phase,omitempty"`

	// Workers is the worker count the topology was provisioned with
	// +optional
	Workers int32 `json:"workers,omitempty"`

	// FailureCount is the number of consecutive failed reconciliations
	// +optional
	FailureCount int32 `json:"failureCount,omitempty"`

	// LastError is the message of the most recent failed reconciliation
	// +optional
	LastError string `json:"lastError,omitempty"`

	// Conditions represent the latest available observations
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`

	// LastReconcileTime is when the operator last reconciled this cluster
	// +optional
	LastReconcileTime *metav1.Time `json:"lastReconcileTime,omitempty"`

	// ObservedGeneration is the last observed generation
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
}

// ClusterPhase represents the lifecycle state of a cluster.
type ClusterPhase string

const (
	// ClusterPhasePending means the finalizer has not been added yet
	ClusterPhasePending ClusterPhase = "Pending"
	// ClusterPhaseActive means the topology is provisioned and guarded by the finalizer
	ClusterPhaseActive ClusterPhase = "Active"
	// ClusterPhaseTerminating means deletion was requested and teardown is in progress
	ClusterPhaseTerminating ClusterPhase = "Terminating"
	// ClusterPhaseFailed means the last reconciliation returned an error
	ClusterPhaseFailed ClusterPhase = "Failed"
)

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=cc
// +kubebuilder:printcolumn:name="Workers",type=integer,JSONPath=`.spec.workers`
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// CitusCluster is the Schema for the citusclusters API.
type CitusCluster struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   CitusClusterSpec   `json:"spec,omitempty"`
	Status CitusClusterStatus `json:"status,omitempty"`
}

// Phase derives the lifecycle phase from the deletion marker and finalizers.
func (c *CitusCluster) Phase() ClusterPhase {
	switch {
	case c.DeletionTimestamp != nil:
		return ClusterPhaseTerminating
	case len(c.Finalizers) == 0:
		return ClusterPhasePending
	default:
		return ClusterPhaseActive
	}
}

// +kubebuilder:object:root=true

// CitusClusterList contains a list of CitusCluster.
type CitusClusterList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []CitusCluster `json:"items"`
}

// Condition types for CitusCluster
const (
	// ConditionReady indicates the last reconciliation converged
	ConditionReady = "Ready"
	// ConditionProvisioned indicates the topology has been submitted
	ConditionProvisioned = "Provisioned"
)
