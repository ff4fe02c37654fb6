// Package naming provides consistent naming functions for Citus cluster resources.
//
// Every name is derived from the CitusCluster name plus a fixed suffix, so two
// clusters with distinct names never collide and the master and worker
// resources of one cluster never collide with each other.
package naming
