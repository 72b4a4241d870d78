package capture

import (
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// Defaults match the dnsperf client DaemonSet
const (
	DefaultNamespace = "dnsperf"
	DefaultSelector  = "app=dnsperf"
	DefaultContainer = "dnsperf"
)

// Cluster gives access to dnsperf client pods
type Cluster struct {
	ClientSet  kubernetes.Interface
	RestConfig *rest.Config
}

// PodOptions selects the pods and container holding dnsperf output
type PodOptions struct {
	Namespace string
	Selector  string
	Container string
	// File, when set, is read from inside the container instead of the container log
	File string
	// TailLines limits log reads to the last N lines, 0 reads everything
	TailLines int64
}
