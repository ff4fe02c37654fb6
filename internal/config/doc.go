// Package config defines the operator settings that are not part of a
// CitusCluster spec: container image, placeholder credentials, reconcile
// intervals and controller concurrency.
//
// Settings are read from an optional YAML file, then overridden by
// environment variables, then defaulted and validated.
package config
