// Package async runs independent Kubernetes API operations concurrently.
//
// [RunParallel] bounds the number of in-flight tasks and reports every
// failure, not just the first.
package async
