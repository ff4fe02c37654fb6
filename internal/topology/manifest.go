package topology

import (
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	"github.com/jw3/citus-operator/internal/util/labels"
	"github.com/jw3/citus-operator/internal/util/naming"
)

const (
	roleMaster = labels.RoleMaster
	roleWorker = labels.RoleWorker

	// PortName is the name of the PostgreSQL port on containers and Services.
	PortName = "pg"

	// DataVolumeName is the volume claim template name for worker data.
	DataVolumeName = "data"

	dataMountPath = "/var/lib/postgresql/data"
)

// workload captures everything that differs between the master and the
// worker group, so a single set of builders serves both roles.
type workload struct {
	role        string
	name        string
	serviceName string
	replicas    int32
	headless    bool
	persistent  bool
	labels      map[string]string
	selector    map[string]string
}

func (p Params) workload(role string) workload {
	w := workload{
		role:     role,
		labels:   labels.ForRole(p.Name, role),
		selector: labels.Selector(p.Name, role),
	}

	switch role {
	case roleMaster:
		w.name = naming.MasterDeployment(p.Name)
		w.serviceName = naming.MasterService(p.Name)
		w.replicas = 1
	case roleWorker:
		w.name = naming.WorkerStatefulSet(p.Name)
		w.serviceName = naming.WorkerService(p.Name)
		w.replicas = p.Workers
		w.headless = true
		w.persistent = true
	}

	return w
}

func (p Params) objectMeta(name string, lbls map[string]string) metav1.ObjectMeta {
	return metav1.ObjectMeta{
		Name:      name,
		Namespace: p.Namespace,
		Labels:    lbls,
	}
}

// podTemplate is the single pod manifest shared by master and workers.
func (p Params) podTemplate(w workload) corev1.PodTemplateSpec {
	container := corev1.Container{
		Name:            w.role,
		Image:           p.Image,
		ImagePullPolicy: p.ImagePullPolicy,
		Ports: []corev1.ContainerPort{
			{
				Name:          PortName,
				ContainerPort: p.Port,
				Protocol:      corev1.ProtocolTCP,
			},
		},
		Env: []corev1.EnvVar{
			{Name: "POSTGRES_PASSWORD", Value: p.Password},
		},
		ReadinessProbe: &corev1.Probe{
			ProbeHandler: corev1.ProbeHandler{
				Exec: &corev1.ExecAction{
					Command: []string{"pg_isready", "-U", "postgres"},
				},
			},
			InitialDelaySeconds: 5,
			PeriodSeconds:       10,
		},
	}

	if w.persistent {
		// initdb refuses a mount point that already holds lost+found
		container.Env = append(container.Env, corev1.EnvVar{Name: "PGDATA", Value: dataMountPath + "/pgdata"})
		container.VolumeMounts = []corev1.VolumeMount{
			{
				Name:      DataVolumeName,
				MountPath: dataMountPath,
			},
		}
	}

	return corev1.PodTemplateSpec{
		ObjectMeta: metav1.ObjectMeta{
			Labels: w.labels,
		},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{container},
		},
	}
}

func (p Params) buildDeployment(w workload) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: p.objectMeta(w.name, w.labels),
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(w.replicas),
			Selector: &metav1.LabelSelector{
				MatchLabels: w.selector,
			},
			// Never run two coordinators side by side
			Strategy: appsv1.DeploymentStrategy{
				Type: appsv1.RecreateDeploymentStrategyType,
			},
			Template: p.podTemplate(w),
		},
	}
}

func (p Params) buildStatefulSet(w workload) *appsv1.StatefulSet {
	return &appsv1.StatefulSet{
		ObjectMeta: p.objectMeta(w.name, w.labels),
		Spec: appsv1.StatefulSetSpec{
			ServiceName: w.serviceName,
			Replicas:    ptr.To(w.replicas),
			Selector: &metav1.LabelSelector{
				MatchLabels: w.selector,
			},
			PodManagementPolicy: appsv1.ParallelPodManagement,
			UpdateStrategy: appsv1.StatefulSetUpdateStrategy{
				Type: appsv1.RollingUpdateStatefulSetStrategyType,
			},
			Template: p.podTemplate(w),
			VolumeClaimTemplates: []corev1.PersistentVolumeClaim{
				VolumeClaimTemplate(DataVolumeName, p.WorkerStorageGB, w.selector),
			},
			PersistentVolumeClaimRetentionPolicy: RetainPolicy(),
		},
	}
}

// buildService fronts a workload. Workers get a headless Service so each
// ordinal resolves as {pod}.{service}; the master gets a ClusterIP.
func (p Params) buildService(w workload) *corev1.Service {
	spec := corev1.ServiceSpec{
		Selector: w.selector,
		Ports: []corev1.ServicePort{
			{
				Name:       PortName,
				Port:       p.Port,
				TargetPort: intstr.FromInt32(p.Port),
				Protocol:   corev1.ProtocolTCP,
			},
		},
	}

	if w.headless {
		spec.ClusterIP = corev1.ClusterIPNone
		spec.PublishNotReadyAddresses = true
	} else {
		spec.Type = corev1.ServiceTypeClusterIP
	}

	return &corev1.Service{
		ObjectMeta: p.objectMeta(w.serviceName, w.labels),
		Spec:       spec,
	}
}
