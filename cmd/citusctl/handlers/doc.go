// Package handlers implements the business logic for citusctl commands.
//
// Handlers talk to the API server through a controller-runtime client built
// from the standard kubeconfig loading rules. They never touch the cluster's
// child resources directly; the operator owns those. The one exception is
// purging worker volume claims, which the operator deliberately leaves behind.
package handlers
