// Package labels provides consistent labeling for the Kubernetes resources
// that make up a Citus cluster.
//
// Selector labels (app, role) identify the pods a workload or Service targets
// and never change for the lifetime of a cluster. Object labels add the
// managed-by marker on top of the selector labels.
package labels
