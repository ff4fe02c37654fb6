package topology

import (
	"errors"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	citusv1alpha1 "github.com/jw3/citus-operator/api/v1alpha1"
	"github.com/jw3/citus-operator/internal/config"
)

// Params are the inputs of the topology builder.
type Params struct {
	Name            string
	Namespace       string
	Workers         int32
	WorkerStorageGB int32

	Image                    string
	ImagePullPolicy          corev1.PullPolicy
	Password                 string
	Port                     int32
	RegistrationBackoffLimit int32
}

// ParamsFor combines a cluster spec with the operator configuration.
func ParamsFor(cluster *citusv1alpha1.CitusCluster, cfg *config.Config) Params {
	return Params{
		Name:                     cluster.Name,
		Namespace:                cluster.Namespace,
		Workers:                  cluster.Spec.Workers,
		WorkerStorageGB:          cluster.Spec.StorageGB(),
		Image:                    cfg.Image,
		ImagePullPolicy:          corev1.PullPolicy(cfg.ImagePullPolicy),
		Password:                 cfg.Password,
		Port:                     cfg.Port,
		RegistrationBackoffLimit: cfg.RegistrationBackoffLimit,
	}
}

// Validate reports parameters the builder cannot produce a topology for.
func (p Params) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("cluster name is required"))
	}
	if p.Namespace == "" {
		errs = append(errs, errors.New("cluster namespace is required"))
	}
	if p.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", p.Workers))
	}
	if p.WorkerStorageGB < 1 {
		errs = append(errs, fmt.Errorf("workerStorageGB must be at least 1, got %d", p.WorkerStorageGB))
	}
	if p.Image == "" {
		errs = append(errs, errors.New("image is required"))
	}
	if p.Port < 1 {
		errs = append(errs, fmt.Errorf("invalid port %d", p.Port))
	}
	return errors.Join(errs...)
}

// Topology is the desired set of resources for one cluster.
type Topology struct {
	MasterWorkload  *appsv1.Deployment
	WorkerWorkload  *appsv1.StatefulSet
	WorkerService   *corev1.Service
	MasterService   *corev1.Service
	RegistrationJob *batchv1.Job
}

// Objects returns the resources in submission order.
func (t *Topology) Objects() []client.Object {
	return []client.Object{
		t.MasterWorkload,
		t.WorkerWorkload,
		t.WorkerService,
		t.MasterService,
		t.RegistrationJob,
	}
}

// Build derives the desired topology for a cluster.
func Build(p Params) (*Topology, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid topology parameters: %w", err)
	}

	master := p.workload(roleMaster)
	workers := p.workload(roleWorker)

	return &Topology{
		MasterWorkload:  p.buildDeployment(master),
		WorkerWorkload:  p.buildStatefulSet(workers),
		WorkerService:   p.buildService(workers),
		MasterService:   p.buildService(master),
		RegistrationJob: p.buildRegistrationJob(),
	}, nil
}
