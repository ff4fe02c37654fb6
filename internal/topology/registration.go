package topology

import (
	"fmt"
	"strings"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/jw3/citus-operator/internal/util/labels"
	"github.com/jw3/citus-operator/internal/util/naming"
)

// RegistrationStatements returns one master_add_node call per worker ordinal.
func RegistrationStatements(cluster string, workers, port int32) []string {
	addrs := naming.WorkerAddresses(cluster, int(workers))
	stmts := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		stmts = append(stmts, fmt.Sprintf("SELECT * from master_add_node('%s', %d)", addr, port))
	}
	return stmts
}

// RegistrationSQL joins every registration statement into a single batch.
func RegistrationSQL(cluster string, workers, port int32) string {
	return strings.Join(RegistrationStatements(cluster, workers, port), ";")
}

// waitScript blocks until the master and every worker accept connections.
func waitScript(cluster string, workers, port int32) string {
	hosts := append([]string{naming.MasterService(cluster)}, naming.WorkerAddresses(cluster, int(workers))...)
	checks := make([]string, 0, len(hosts))
	for _, h := range hosts {
		checks = append(checks, fmt.Sprintf("pg_isready -q -h %s -p %d", h, port))
	}
	return fmt.Sprintf("until %s; do sleep 2; done", strings.Join(checks, " && "))
}

// buildRegistrationJob creates the one-shot Job that adds every worker to the
// master. The Job name is fixed per cluster, so creating it a second time
// fails with AlreadyExists instead of registering the workers again.
func (p Params) buildRegistrationJob() *batchv1.Job {
	lbls := labels.ForRole(p.Name, labels.RoleRegistration)

	return &batchv1.Job{
		ObjectMeta: p.objectMeta(naming.RegistrationJob(p.Name), lbls),
		Spec: batchv1.JobSpec{
			BackoffLimit: ptr.To(p.RegistrationBackoffLimit),
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: lbls,
				},
				Spec: corev1.PodSpec{
					RestartPolicy: corev1.RestartPolicyOnFailure,
					InitContainers: []corev1.Container{
						{
							Name:            "wait-for-nodes",
							Image:           p.Image,
							ImagePullPolicy: p.ImagePullPolicy,
							Command:         []string{"bash", "-c", waitScript(p.Name, p.Workers, p.Port)},
						},
					},
					Containers: []corev1.Container{
						{
							Name:            "register-workers",
							Image:           p.Image,
							ImagePullPolicy: p.ImagePullPolicy,
							Command: []string{
								"bash",
								"-c",
								fmt.Sprintf("psql -c \"%s\"", RegistrationSQL(p.Name, p.Workers, p.Port)),
							},
							Env: []corev1.EnvVar{
								{Name: "PGHOST", Value: naming.MasterService(p.Name)},
								{Name: "PGPORT", Value: fmt.Sprintf("%d", p.Port)},
								{Name: "PGUSER", Value: "postgres"},
								{Name: "PGPASSWORD", Value: p.Password},
							},
						},
					},
				},
			},
		},
	}
}
