package reconciler

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	typedcorev1 "k8s.io/client-go/kubernetes/typed/core/v1"
	"k8s.io/client-go/tools/record"
)

// EventRecorder publishes a warning describing a reconciliation failure
// against the object that failed. It is the Manager's only optional hook
// into cluster visibility beyond its own in-memory status tracker.
type EventRecorder interface {
	Warning(resourceType ResourceType, name, namespace, reason, message string)
}

// KubernetesEventRecorder posts events through client-go's broadcaster, the
// same mechanism controller-runtime controllers use, so reconcile failures
// show up against the object with `kubectl describe`.
type KubernetesEventRecorder struct {
	recorder record.EventRecorder
}

// NewKubernetesEventRecorder starts a broadcaster that records events to
// client's Events API under the given component name.
func NewKubernetesEventRecorder(client kubernetes.Interface, component string) *KubernetesEventRecorder {
	broadcaster := record.NewBroadcaster()
	broadcaster.StartRecordingToSink(&typedcorev1.EventSinkImpl{Interface: client.CoreV1().Events("")})
	recorder := broadcaster.NewRecorder(scheme.Scheme, corev1.EventSource{Component: component})
	return &KubernetesEventRecorder{recorder: recorder}
}

func (k *KubernetesEventRecorder) Warning(resourceType ResourceType, name, namespace, reason, message string) {
	obj := &corev1.ObjectReference{
		Kind:      string(resourceType),
		Name:      name,
		Namespace: namespace,
	}
	k.recorder.Event(obj, corev1.EventTypeWarning, reason, message)
}
