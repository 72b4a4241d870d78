package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/remotecommand"
	"k8s.io/kubectl/pkg/scheme"
	"k8s.io/utils/ptr"
)

// NewCluster builds a client from kubeconfig, falling back to $KUBECONFIG and ~/.kube/config
func NewCluster(kubeconfig string) (Cluster, error) {
	if kubeconfig == "" && os.Getenv("KUBECONFIG") != "" {
		kubeconfig = os.Getenv("KUBECONFIG")
	} else if _, err := os.Stat(filepath.Join(os.Getenv("HOME"), ".kube", "config")); kubeconfig == "" && !os.IsNotExist(err) {
		kubeconfig = filepath.Join(os.Getenv("HOME"), ".kube", "config")
	}
	restConfig, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return Cluster{}, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	clientSet, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return Cluster{}, fmt.Errorf("failed to create clientset: %w", err)
	}
	return Cluster{ClientSet: clientSet, RestConfig: restConfig}, nil
}

// Sources returns one capture source per pod matching the options.
// Pending pods have no output yet and are skipped
func (c Cluster) Sources(ctx context.Context, opts PodOptions) ([]Source, error) {
	pods, err := c.ClientSet.CoreV1().Pods(opts.Namespace).List(ctx, metav1.ListOptions{LabelSelector: opts.Selector})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods in %s: %w", opts.Namespace, err)
	}
	var sources []Source
	for _, pod := range pods.Items {
		if pod.Status.Phase == corev1.PodPending {
			log.Debug().Msgf("Skipping pending pod %s/%s", pod.Namespace, pod.Name)
			continue
		}
		if opts.File != "" {
			sources = append(sources, PodFile{cluster: c, pod: pod, container: opts.Container, path: opts.File})
		} else {
			sources = append(sources, PodLogs{cluster: c, pod: pod, container: opts.Container, tailLines: opts.TailLines})
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no dnsperf pods found in %s with selector %q", opts.Namespace, opts.Selector)
	}
	return sources, nil
}

// PodLogs reads dnsperf output from a container log
type PodLogs struct {
	cluster   Cluster
	pod       corev1.Pod
	container string
	tailLines int64
}

func (p PodLogs) Name() string {
	return fmt.Sprintf("pod/%s/%s", p.pod.Namespace, p.pod.Name)
}

func (p PodLogs) Read(ctx context.Context) (string, error) {
	logOpts := &corev1.PodLogOptions{Container: p.container}
	if p.tailLines > 0 {
		logOpts.TailLines = ptr.To(p.tailLines)
	}
	stream, err := p.cluster.ClientSet.CoreV1().Pods(p.pod.Namespace).GetLogs(p.pod.Name, logOpts).Stream(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to stream logs of %s: %w", p.Name(), err)
	}
	defer stream.Close()
	data, err := io.ReadAll(stream)
	if err != nil {
		return "", fmt.Errorf("failed to read logs of %s: %w", p.Name(), err)
	}
	log.Trace().Msgf("Logs from %s: %s", p.Name(), data)
	return string(data), nil
}

// PodFile reads a capture file written inside a dnsperf container
type PodFile struct {
	cluster   Cluster
	pod       corev1.Pod
	container string
	path      string
}

func (p PodFile) Name() string {
	return fmt.Sprintf("pod/%s/%s:%s", p.pod.Namespace, p.pod.Name, p.path)
}

func (p PodFile) Read(ctx context.Context) (string, error) {
	var stdout, stderr bytes.Buffer
	if p.cluster.RestConfig == nil {
		return "", fmt.Errorf("cannot exec into %s: missing rest config", p.Name())
	}
	command := []string{"cat", p.path}
	log.Debug().Msgf("Running command in %s: %v", p.pod.Name, command)
	req := p.cluster.ClientSet.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(p.pod.Name).
		Namespace(p.pod.Namespace).
		SubResource("exec")
	req.VersionedParams(&corev1.PodExecOptions{
		Container: p.container,
		Stdin:     false,
		Stdout:    true,
		Stderr:    true,
		Command:   command,
		TTY:       false,
	}, scheme.ParameterCodec)
	exec, err := remotecommand.NewSPDYExecutor(p.cluster.RestConfig, "POST", req.URL())
	if err != nil {
		return "", err
	}
	err = exec.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		log.Error().Msgf("Exec failed in pod %s: %v, stderr: %v", p.pod.Name, err.Error(), stderr.String())
		return "", fmt.Errorf("failed to read %s: %w", p.Name(), err)
	}
	log.Trace().Msgf("Output from %s: %s", p.pod.Name, stdout.String())
	return stdout.String(), nil
}
