// Package topology derives the Kubernetes resources that make up a Citus
// cluster from its specification.
//
// [Build] is a pure function: the same [Params] always produce the same
// [Topology]. It performs no API calls and sets no owner references; the
// reconciler submits the result.
//
// A cluster named "demo" with three workers yields:
//
//	Deployment  demo-master            1 replica, role=master
//	StatefulSet demo-workers           3 replicas, role=worker, serviceName demo-worker
//	Service     demo-worker            headless, role=worker
//	Service     demo                   ClusterIP, role=master
//	Job         demo-register-workers  registers demo-workers-{0,1,2}.demo-worker
package topology
