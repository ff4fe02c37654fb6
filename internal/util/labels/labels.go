package labels

// Label keys applied to every resource of a cluster.
const (
	// KeyApp identifies which cluster a resource belongs to
	KeyApp = "app"

	// KeyRole identifies the Citus role of a pod (master, worker)
	KeyRole = "role"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "app.kubernetes.io/managed-by"
)

// Role values
const (
	RoleMaster       = "master"
	RoleWorker       = "worker"
	RoleRegistration = "registration"
)

// ManagedByOperator is the managed-by value for operator-created resources.
const ManagedByOperator = "citus-operator"

// LabelBuilder provides a fluent interface for building resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the cluster name pre-set.
func NewLabelBuilder(clusterName string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyApp: clusterName,
		},
	}
}

// WithRole adds a role label (e.g., "master", "worker").
func (lb *LabelBuilder) WithRole(role string) *LabelBuilder {
	lb.labels[KeyRole] = role
	return lb
}

// WithManagedBy sets who manages this resource.
func (lb *LabelBuilder) WithManagedBy(manager string) *LabelBuilder {
	lb.labels[KeyManagedBy] = manager
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// Selector returns the immutable selector labels for a role in a cluster.
func Selector(clusterName, role string) map[string]string {
	return NewLabelBuilder(clusterName).WithRole(role).Build()
}

// ForRole returns the object labels for a role in a cluster. They are always
// a superset of Selector.
func ForRole(clusterName, role string) map[string]string {
	return NewLabelBuilder(clusterName).
		Merge(Selector(clusterName, role)).
		WithManagedBy(ManagedByOperator).
		Build()
}

// SelectorForCluster returns a label selector string for all resources in a cluster.
func SelectorForCluster(clusterName string) string {
	return KeyApp + "=" + clusterName
}
