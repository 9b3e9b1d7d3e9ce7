package reconciler

import (
	"context"
	"testing"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	redundancyv1alpha1 "github.com/mathi-naickan/opensaf-sub000/pkg/apis/redundancy/v1alpha1"
)

// TestNewKubernetesDetector tests the creation of a KubernetesDetector.
func TestNewKubernetesDetector(t *testing.T) {
	// Create a detector without a rest config (will be used for unit tests)
	detector, err := NewKubernetesDetector(nil, "default")
	if err != nil {
		t.Fatalf("failed to create detector: %v", err)
	}

	if detector == nil {
		t.Fatal("detector is nil")
	}

	if detector.namespace != "default" {
		t.Errorf("namespace = %q, want %q", detector.namespace, "default")
	}

	if detector.scheme == nil {
		t.Error("scheme is nil")
	}
}

// TestKubernetesDetectorGetSource tests the GetSource method.
func TestKubernetesDetectorGetSource(t *testing.T) {
	detector, err := NewKubernetesDetector(nil, "")
	if err != nil {
		t.Fatalf("failed to create detector: %v", err)
	}

	if source := detector.GetSource(); source != SourceKubernetes {
		t.Errorf("GetSource() = %v, want %v", source, SourceKubernetes)
	}
}

// TestKubernetesDetectorAddResourceType tests adding resource types.
func TestKubernetesDetectorAddResourceType(t *testing.T) {
	detector, err := NewKubernetesDetector(nil, "default")
	if err != nil {
		t.Fatalf("failed to create detector: %v", err)
	}

	if err := detector.AddResourceType(ResourceTypeServiceGroup); err != nil {
		t.Errorf("AddResourceType(ServiceGroup) failed: %v", err)
	}

	if err := detector.AddResourceType(ResourceTypeServiceUnit); err != nil {
		t.Errorf("AddResourceType(ServiceUnit) failed: %v", err)
	}

	if err := detector.AddResourceType(ResourceTypeServiceInstance); err != nil {
		t.Errorf("AddResourceType(ServiceInstance) failed: %v", err)
	}

	if err := detector.AddResourceType(ResourceTypeDependencyEdge); err != nil {
		t.Errorf("AddResourceType(DependencyEdge) failed: %v", err)
	}

	detector.mu.RLock()
	if !detector.resourceTypes[ResourceTypeServiceGroup] {
		t.Error("ServiceGroup not in resourceTypes")
	}
	if !detector.resourceTypes[ResourceTypeServiceUnit] {
		t.Error("ServiceUnit not in resourceTypes")
	}
	if !detector.resourceTypes[ResourceTypeServiceInstance] {
		t.Error("ServiceInstance not in resourceTypes")
	}
	if !detector.resourceTypes[ResourceTypeDependencyEdge] {
		t.Error("DependencyEdge not in resourceTypes")
	}
	detector.mu.RUnlock()
}

// TestKubernetesDetectorRemoveResourceType tests removing resource types.
func TestKubernetesDetectorRemoveResourceType(t *testing.T) {
	detector, err := NewKubernetesDetector(nil, "default")
	if err != nil {
		t.Fatalf("failed to create detector: %v", err)
	}

	if err := detector.AddResourceType(ResourceTypeServiceGroup); err != nil {
		t.Errorf("AddResourceType failed: %v", err)
	}

	if err := detector.RemoveResourceType(ResourceTypeServiceGroup); err != nil {
		t.Errorf("RemoveResourceType failed: %v", err)
	}

	detector.mu.RLock()
	if detector.resourceTypes[ResourceTypeServiceGroup] {
		t.Error("ServiceGroup still in resourceTypes after removal")
	}
	detector.mu.RUnlock()
}

// TestKubernetesDetectorStopWithoutStart tests stopping without starting.
func TestKubernetesDetectorStopWithoutStart(t *testing.T) {
	detector, err := NewKubernetesDetector(nil, "default")
	if err != nil {
		t.Fatalf("failed to create detector: %v", err)
	}

	if err := detector.Stop(); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}
}

// TestKubernetesDetectorNamespaceDisplay tests namespace display logic.
func TestKubernetesDetectorNamespaceDisplay(t *testing.T) {
	tests := []struct {
		namespace string
		want      string
	}{
		{"", "all namespaces"},
		{"default", "default"},
		{"my-namespace", "my-namespace"},
	}

	for _, tt := range tests {
		t.Run(tt.namespace, func(t *testing.T) {
			detector, err := NewKubernetesDetector(nil, tt.namespace)
			if err != nil {
				t.Fatalf("failed to create detector: %v", err)
			}

			if got := detector.namespaceDisplay(); got != tt.want {
				t.Errorf("namespaceDisplay() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestExtractObjectMeta tests the extractObjectMeta helper function.
func TestExtractObjectMeta(t *testing.T) {
	sg := &redundancyv1alpha1.ServiceGroup{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "payments-sg",
			Namespace: "test-namespace",
		},
	}

	meta, ok := extractObjectMeta(sg)
	if !ok {
		t.Fatal("extractObjectMeta returned false for valid object")
	}

	if meta.name != "payments-sg" {
		t.Errorf("name = %q, want %q", meta.name, "payments-sg")
	}

	if meta.namespace != "test-namespace" {
		t.Errorf("namespace = %q, want %q", meta.namespace, "test-namespace")
	}
}

// TestExtractObjectMetaInvalidObject tests extractObjectMeta with invalid input.
func TestExtractObjectMetaInvalidObject(t *testing.T) {
	invalidObj := struct{ Name string }{Name: "test"}

	_, ok := extractObjectMeta(invalidObj)
	if ok {
		t.Error("extractObjectMeta returned true for invalid object")
	}
}

// TestKubernetesDetectorEventHandlers tests the event handlers directly.
func TestKubernetesDetectorEventHandlers(t *testing.T) {
	detector, err := NewKubernetesDetector(nil, "default")
	if err != nil {
		t.Fatalf("failed to create detector: %v", err)
	}

	detector.running = true
	changeChan := make(chan ChangeEvent, 10)
	detector.changeChan = changeChan

	sg := &redundancyv1alpha1.ServiceGroup{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "payments-sg",
			Namespace: "default",
		},
	}

	detector.handleAdd(ResourceTypeServiceGroup, sg)

	select {
	case event := <-changeChan:
		if event.Operation != OperationCreate {
			t.Errorf("handleAdd: Operation = %v, want %v", event.Operation, OperationCreate)
		}
		if event.Name != "payments-sg" {
			t.Errorf("handleAdd: Name = %q, want %q", event.Name, "payments-sg")
		}
		if event.Type != ResourceTypeServiceGroup {
			t.Errorf("handleAdd: Type = %v, want %v", event.Type, ResourceTypeServiceGroup)
		}
		if event.Source != SourceKubernetes {
			t.Errorf("handleAdd: Source = %v, want %v", event.Source, SourceKubernetes)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("handleAdd: no event received")
	}

	detector.handleUpdate(ResourceTypeServiceGroup, sg, sg)

	select {
	case event := <-changeChan:
		if event.Operation != OperationUpdate {
			t.Errorf("handleUpdate: Operation = %v, want %v", event.Operation, OperationUpdate)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("handleUpdate: no event received")
	}

	detector.handleDelete(ResourceTypeServiceGroup, sg)

	select {
	case event := <-changeChan:
		if event.Operation != OperationDelete {
			t.Errorf("handleDelete: Operation = %v, want %v", event.Operation, OperationDelete)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("handleDelete: no event received")
	}
}

// TestKubernetesDetectorEventHandlersNotRunning tests that events are not sent when not running.
func TestKubernetesDetectorEventHandlersNotRunning(t *testing.T) {
	detector, err := NewKubernetesDetector(nil, "default")
	if err != nil {
		t.Fatalf("failed to create detector: %v", err)
	}

	detector.running = false
	changeChan := make(chan ChangeEvent, 10)
	detector.changeChan = changeChan

	sg := &redundancyv1alpha1.ServiceGroup{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "payments-sg",
			Namespace: "default",
		},
	}

	detector.handleAdd(ResourceTypeServiceGroup, sg)

	select {
	case <-changeChan:
		t.Error("received event when detector is not running")
	case <-time.After(50 * time.Millisecond):
		// Expected - no event should be received
	}
}

// TestKubernetesDetectorCreateEventHandler tests the createEventHandler method.
func TestKubernetesDetectorCreateEventHandler(t *testing.T) {
	detector, err := NewKubernetesDetector(nil, "default")
	if err != nil {
		t.Fatalf("failed to create detector: %v", err)
	}

	handler := detector.createEventHandler(ResourceTypeServiceGroup)
	if handler == nil {
		t.Fatal("createEventHandler returned nil")
	}
}

// testScheme creates a scheme with the redundancy API types registered for testing.
func testScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(redundancyv1alpha1.AddToScheme(scheme))
	return scheme
}

// TestKubernetesDetectorWithFakeClient tests detector behavior with a fake client.
func TestKubernetesDetectorWithFakeClient(t *testing.T) {
	scheme := testScheme()

	fakeClient := fake.NewClientBuilder().
		WithScheme(scheme).
		Build()

	sg := &redundancyv1alpha1.ServiceGroup{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "payments-sg",
			Namespace: "default",
		},
		Spec: redundancyv1alpha1.ServiceGroupSpec{
			RedundancyModel:     "2N",
			PreferredActiveSUs:  1,
			PreferredStandbySUs: 1,
		},
	}

	ctx := context.Background()

	if err := fakeClient.Create(ctx, sg); err != nil {
		t.Fatalf("failed to create service group: %v", err)
	}

	var retrieved redundancyv1alpha1.ServiceGroup
	if err := fakeClient.Get(ctx, client.ObjectKey{Name: "payments-sg", Namespace: "default"}, &retrieved); err != nil {
		t.Fatalf("failed to get service group: %v", err)
	}

	if retrieved.Name != "payments-sg" {
		t.Errorf("retrieved name = %q, want %q", retrieved.Name, "payments-sg")
	}
}

// TestSendChangeEventChannelFull tests behavior when the change channel is full.
func TestSendChangeEventChannelFull(t *testing.T) {
	detector, err := NewKubernetesDetector(nil, "default")
	if err != nil {
		t.Fatalf("failed to create detector: %v", err)
	}

	detector.running = true
	changeChan := make(chan ChangeEvent, 1)
	detector.changeChan = changeChan

	changeChan <- ChangeEvent{Name: "filler"}

	event := ChangeEvent{
		Type:      ResourceTypeServiceGroup,
		Name:      "payments-sg",
		Operation: OperationCreate,
		Timestamp: time.Now(),
		Source:    SourceKubernetes,
	}

	done := make(chan bool, 1)
	go func() {
		detector.sendChangeEvent(event)
		done <- true
	}()

	select {
	case <-done:
		// Good - event was dropped without blocking
	case <-time.After(100 * time.Millisecond):
		t.Error("sendChangeEvent blocked when channel was full")
	}
}
