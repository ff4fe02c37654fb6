package naming

import "fmt"

// Naming functions for cluster resources.
// The worker address format must stay stable: it is what the master stores
// after registration.

func MasterDeployment(cluster string) string {
	return fmt.Sprintf("%s-master", cluster)
}

func MasterService(cluster string) string {
	return cluster
}

func WorkerStatefulSet(cluster string) string {
	return fmt.Sprintf("%s-workers", cluster)
}

func WorkerService(cluster string) string {
	return fmt.Sprintf("%s-worker", cluster)
}

func RegistrationJob(cluster string) string {
	return fmt.Sprintf("%s-register-workers", cluster)
}

// WorkerAddress is the DNS name of worker ordinal i inside the namespace.
func WorkerAddress(cluster string, ordinal int) string {
	return fmt.Sprintf("%s-%d.%s", WorkerStatefulSet(cluster), ordinal, WorkerService(cluster))
}

// WorkerAddresses returns the addresses of workers [0, count).
func WorkerAddresses(cluster string, count int) []string {
	addrs := make([]string, 0, count)
	for i := range count {
		addrs = append(addrs, WorkerAddress(cluster, i))
	}
	return addrs
}

