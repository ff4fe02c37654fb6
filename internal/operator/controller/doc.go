// Package controller implements the Kubernetes controller for CitusCluster
// custom resources.
//
// Each reconcile selects one action from the deletion marker and the
// finalizer set alone:
//
//	deletion marker set               -> Delete (tear down, then drop finalizer)
//	no marker, no finalizers          -> Create (add finalizer, then provision)
//	no marker, finalizers present     -> NoOp   (re-check later)
//
// The finalizer is always present before any resource is created, and is
// only removed once every resource is gone, so deletion of a cluster is
// always observed and a crash between teardown and finalizer removal is
// resumed by running Delete again.
package controller
