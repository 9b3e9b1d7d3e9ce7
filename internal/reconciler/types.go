package reconciler

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/util/retry"

	redundancyv1alpha1 "github.com/mathi-naickan/opensaf-sub000/pkg/apis/redundancy/v1alpha1"

	"github.com/mathi-naickan/opensaf-sub000/internal/metrics"
	"github.com/mathi-naickan/opensaf-sub000/pkg/logging"
)

// ResourceType represents the type of configuration object being reconciled.
type ResourceType string

const (
	// ResourceTypeServiceGroup represents ServiceGroup CRD/YAML resources.
	ResourceTypeServiceGroup ResourceType = "ServiceGroup"

	// ResourceTypeServiceUnit represents ServiceUnit CRD/YAML resources.
	ResourceTypeServiceUnit ResourceType = "ServiceUnit"

	// ResourceTypeServiceInstance represents ServiceInstance CRD/YAML resources.
	ResourceTypeServiceInstance ResourceType = "ServiceInstance"

	// ResourceTypeDependencyEdge represents DependencyEdge CRD/YAML resources.
	ResourceTypeDependencyEdge ResourceType = "DependencyEdge"
)

// ValidResourceTypes is the set of all valid resource types.
var ValidResourceTypes = map[ResourceType]bool{
	ResourceTypeServiceGroup:    true,
	ResourceTypeServiceUnit:     true,
	ResourceTypeServiceInstance: true,
	ResourceTypeDependencyEdge:  true,
}

// IsValidResourceType checks if a resource type string is valid.
func IsValidResourceType(resourceType string) bool {
	return ValidResourceTypes[ResourceType(resourceType)]
}

// ChangeEvent represents a detected change in a configuration object.
type ChangeEvent struct {
	Type      ResourceType
	Name      string
	Namespace string
	Operation ChangeOperation
	Timestamp time.Time
	Source    ChangeSource
	FilePath  string
}

// ChangeOperation represents the type of change detected.
type ChangeOperation string

const (
	OperationCreate ChangeOperation = "Create"
	OperationUpdate ChangeOperation = "Update"
	OperationDelete ChangeOperation = "Delete"
)

// ChangeSource indicates where a change originated.
type ChangeSource string

const (
	SourceFilesystem   ChangeSource = "Filesystem"
	SourceKubernetes   ChangeSource = "Kubernetes"
	SourceManual       ChangeSource = "Manual"
	SourceEngineState  ChangeSource = "EngineState"
)

// ReconcileResult represents the outcome of a reconciliation attempt.
type ReconcileResult struct {
	Requeue      bool
	RequeueAfter time.Duration
	Error        error
}

// ReconcileRequest represents a request to reconcile a specific object.
type ReconcileRequest struct {
	Type      ResourceType
	Name      string
	Namespace string
	Attempt   int
	LastError error
}

// Reconciler is the interface each resource-specific reconciler implements.
// Each one turns a loaded configuration object into engine registry calls
// (UpsertSG/UpsertSU/UpsertSI, their Remove counterparts, and
// LoadDependencyEdges) plus engine.Post calls (EvSUInService, EvSINew,
// EvSIDelete, EvSUAdminDown) rather than managing any process of its own.
type Reconciler interface {
	// Reconcile processes a single reconciliation request. It must be
	// idempotent: calling it twice with the same input produces the same
	// engine events.
	Reconcile(ctx context.Context, req ReconcileRequest) ReconcileResult

	// GetResourceType returns the type of resource this reconciler handles.
	GetResourceType() ResourceType
}

// ChangeDetector is the interface for components that detect changes to
// configuration objects, either on the filesystem or via Kubernetes informers.
type ChangeDetector interface {
	Start(ctx context.Context, changes chan<- ChangeEvent) error
	Stop() error
	GetSource() ChangeSource
	AddResourceType(resourceType ResourceType) error
	RemoveResourceType(resourceType ResourceType) error
}

// ReconcileQueue represents a queue of objects awaiting reconciliation.
type ReconcileQueue interface {
	Add(req ReconcileRequest)
	Get(ctx context.Context) (ReconcileRequest, bool)
	Done(req ReconcileRequest)
	Len() int
	Shutdown()
}

// ManagerConfig holds configuration for the ReconcileManager.
type ManagerConfig struct {
	Mode                  WatchMode
	FilesystemPath        string
	Namespace             string
	WorkerCount           int
	MaxRetries            int
	InitialBackoff        time.Duration
	MaxBackoff            time.Duration
	DebounceInterval      time.Duration
	ReconcileTimeout      time.Duration
	Debug                 bool
	DisabledResourceTypes map[ResourceType]bool
}

// WatchMode specifies how to detect configuration changes.
type WatchMode string

const (
	WatchModeFilesystem WatchMode = "filesystem"
	WatchModeKubernetes WatchMode = "kubernetes"
	WatchModeAuto       WatchMode = "auto"
)

// WatchModeFromKubernetesFlag returns the WatchMode implied by a single
// --kubernetes boolean flag, keeping mode selection consistent across the CLI.
func WatchModeFromKubernetesFlag(kubernetesEnabled bool) WatchMode {
	if kubernetesEnabled {
		return WatchModeKubernetes
	}
	return WatchModeFilesystem
}

// ReconcileStatus represents the current status of reconciliation for an object.
type ReconcileStatus struct {
	ResourceType      ResourceType
	Name              string
	Namespace         string
	LastReconcileTime *time.Time
	LastError         string
	RetryCount        int
	State             ReconcileState
}

// ReconcileState represents the state of an object's reconciliation.
type ReconcileState string

const (
	StatePending     ReconcileState = "Pending"
	StateReconciling ReconcileState = "Reconciling"
	StateSynced      ReconcileState = "Synced"
	StateError       ReconcileState = "Error"
	StateFailed      ReconcileState = "Failed"
)

// DefaultNamespace is the default namespace for Kubernetes resources.
const DefaultNamespace = "default"

// DefaultStatusSyncInterval is how often reconcilers requeue for periodic
// status sync, recovering from any missed edge-triggered event within this
// bound (the level-triggered half of the reconciliation loop).
const DefaultStatusSyncInterval = 30 * time.Second

// FailureLogBackoffTimeout bounds how long a persistently failing object can
// go without a fresh log line, even once the exponential log backoff below
// has stretched past it.
const FailureLogBackoffTimeout = 5 * time.Minute

// StatusUpdater updates CRD status for the engine's configuration objects
// when running in Kubernetes mode.
type StatusUpdater interface {
	GetServiceGroup(ctx context.Context, name, namespace string) (*redundancyv1alpha1.ServiceGroup, error)
	UpdateServiceGroupStatus(ctx context.Context, sg *redundancyv1alpha1.ServiceGroup) error
	GetServiceUnit(ctx context.Context, name, namespace string) (*redundancyv1alpha1.ServiceUnit, error)
	UpdateServiceUnitStatus(ctx context.Context, su *redundancyv1alpha1.ServiceUnit) error
	GetServiceInstance(ctx context.Context, name, namespace string) (*redundancyv1alpha1.ServiceInstance, error)
	UpdateServiceInstanceStatus(ctx context.Context, si *redundancyv1alpha1.ServiceInstance) error
	IsKubernetesMode() bool
}

// BaseStatusConfig holds common configuration for status updates.
type BaseStatusConfig struct {
	StatusUpdater StatusUpdater
	Namespace     string
}

// SetStatusUpdater sets the status updater and namespace.
func (c *BaseStatusConfig) SetStatusUpdater(updater StatusUpdater, namespace string) {
	c.StatusUpdater = updater
	if namespace != "" {
		c.Namespace = namespace
	}
}

// GetNamespace returns the namespace to use, falling back to the default.
func (c *BaseStatusConfig) GetNamespace(reqNamespace string) string {
	if reqNamespace != "" {
		return reqNamespace
	}
	if c.Namespace != "" {
		return c.Namespace
	}
	return DefaultNamespace
}

// IsNotFoundError checks if an error indicates an object was not found.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if apierrors.IsNotFound(err) {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "not found") ||
		strings.Contains(errMsg, "does not exist")
}

// SanitizeErrorMessage strips absolute file paths and secret-shaped
// substrings from an error message before it is exposed via status fields.
func SanitizeErrorMessage(errMsg string) string {
	if errMsg == "" {
		return ""
	}

	pathPattern := regexp.MustCompile(`(?:/[\w.-]+)+/`)
	errMsg = pathPattern.ReplaceAllString(errMsg, "[path]/")

	tokenPattern := regexp.MustCompile(`(?i)(bearer\s+|token[=:]\s*|apikey[=:]\s*|password[=:]\s*|secret[=:]\s*)[\w\-._~+/]+=*`)
	errMsg = tokenPattern.ReplaceAllString(errMsg, "$1[REDACTED]")

	base64Pattern := regexp.MustCompile(`[A-Za-z0-9+/]{20,}={0,2}`)
	errMsg = base64Pattern.ReplaceAllStringFunc(errMsg, func(match string) string {
		if len(match) > 40 {
			return "[REDACTED]"
		}
		return match
	})

	return errMsg
}

// StatusSyncRetryBackoff is the retry backoff configuration for status updates.
var StatusSyncRetryBackoff = retry.DefaultRetry

// IsConflictError returns true if the error is a Kubernetes conflict error.
func IsConflictError(err error) bool {
	return apierrors.IsConflict(err)
}

// CategorizeStatusSyncError returns a descriptive reason for a status sync
// error, for metrics and debugging.
func CategorizeStatusSyncError(err error) string {
	if err == nil {
		return "unknown"
	}
	if IsConflictError(err) {
		return "conflict_after_retries"
	}
	if IsNotFoundError(err) {
		return "object_not_found"
	}

	errStrLower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStrLower, "connection refused"),
		strings.Contains(errStrLower, "no route to host"),
		strings.Contains(errStrLower, "network is unreachable"):
		return "api_server_unreachable"
	case strings.Contains(errStrLower, "timeout"), strings.Contains(errStrLower, "deadline exceeded"):
		return "timeout"
	case strings.Contains(errStrLower, "forbidden"):
		return "permission_denied"
	case strings.Contains(errStrLower, "unauthorized"):
		return "authentication_failed"
	default:
		return "update_status_failed"
	}
}

func coalesceErrors(primary, fallback error) error {
	if primary != nil {
		return primary
	}
	return fallback
}

// StatusSyncResult holds the outcome of a status sync operation.
type StatusSyncResult struct {
	Success bool
	Error   error
}

// StatusSyncHelper encapsulates the common retry-on-conflict pattern for
// status sync, shared by the ServiceGroup/ServiceUnit/ServiceInstance
// reconcilers.
type StatusSyncHelper struct {
	ResourceType   ResourceType
	ResourceName   string
	Metrics        *metrics.Registry
	FailureTracker *StatusSyncFailureTracker
	ReconcilerName string
}

// NewStatusSyncHelper creates a new helper for status sync operations.
func NewStatusSyncHelper(resourceType ResourceType, name, reconcilerName string, reg *metrics.Registry) *StatusSyncHelper {
	return &StatusSyncHelper{
		ResourceType:   resourceType,
		ResourceName:   name,
		Metrics:        reg,
		FailureTracker: GetStatusSyncFailureTracker(),
		ReconcilerName: reconcilerName,
	}
}

// RecordAttempt records a status sync attempt in metrics.
func (h *StatusSyncHelper) RecordAttempt() {
	h.Metrics.RecordReconcile(string(h.ResourceType), "attempt")
}

// HandleResult processes the result of a status sync operation, recording
// success/failure metrics and logging failures with backoff.
func (h *StatusSyncHelper) HandleResult(retryErr, lastErr error) {
	if retryErr != nil || lastErr != nil {
		actualErr := coalesceErrors(lastErr, retryErr)

		reason := CategorizeStatusSyncError(actualErr)
		h.Metrics.RecordReconcile(string(h.ResourceType), reason)

		if h.FailureTracker.RecordFailure(h.ResourceType, h.ResourceName, actualErr) {
			failureCount := h.FailureTracker.GetFailureCount(h.ResourceType, h.ResourceName)
			logging.Debug(h.ReconcilerName, "Status sync failed for %s: %s (consecutive failures: %d)",
				h.ResourceName, actualErr.Error(), failureCount)
		}
	} else {
		h.Metrics.RecordReconcile(string(h.ResourceType), "success")
		h.FailureTracker.RecordSuccess(h.ResourceType, h.ResourceName)
	}
}

// WasSuccessful returns true if the status sync succeeded.
func (h *StatusSyncHelper) WasSuccessful(retryErr, lastErr error) bool {
	return retryErr == nil && lastErr == nil
}

// StatusSyncFailureTracker tracks per-object status sync failures to
// implement backoff-based logging.
type StatusSyncFailureTracker struct {
	mu       sync.RWMutex
	failures map[string]*resourceFailureInfo
}

type resourceFailureInfo struct {
	consecutiveFailures int
	lastFailure         time.Time
	lastError           string
	lastLoggedAt        time.Time
}

// NewStatusSyncFailureTracker creates a new failure tracker.
func NewStatusSyncFailureTracker() *StatusSyncFailureTracker {
	return &StatusSyncFailureTracker{
		failures: make(map[string]*resourceFailureInfo),
	}
}

func resourceKey(resourceType ResourceType, name string) string {
	return string(resourceType) + "/" + name
}

// RecordFailure records a status sync failure for an object. Returns true
// if this failure should be logged, per an exponential log backoff: every
// one of the first 3 failures, every 10th through 100, every 100th through
// 1000, every 1000th beyond, or whenever FailureLogBackoffTimeout has
// elapsed since the last log line.
func (t *StatusSyncFailureTracker) RecordFailure(resourceType ResourceType, name string, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := resourceKey(resourceType, name)
	info, exists := t.failures[key]
	if !exists {
		info = &resourceFailureInfo{}
		t.failures[key] = info
	}

	info.consecutiveFailures++
	info.lastFailure = time.Now()
	info.lastError = err.Error()

	shouldLog := info.consecutiveFailures <= 3 ||
		(info.consecutiveFailures%10 == 0 && info.consecutiveFailures <= 100) ||
		(info.consecutiveFailures%100 == 0 && info.consecutiveFailures <= 1000) ||
		info.consecutiveFailures%1000 == 0 ||
		time.Since(info.lastLoggedAt) > FailureLogBackoffTimeout

	if shouldLog {
		info.lastLoggedAt = time.Now()
	}

	return shouldLog
}

// RecordSuccess records a successful status sync, resetting the failure counter.
func (t *StatusSyncFailureTracker) RecordSuccess(resourceType ResourceType, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, resourceKey(resourceType, name))
}

// GetFailureCount returns the current consecutive failure count for an object.
func (t *StatusSyncFailureTracker) GetFailureCount(resourceType ResourceType, name string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if info, exists := t.failures[resourceKey(resourceType, name)]; exists {
		return info.consecutiveFailures
	}
	return 0
}

// GetLastError returns the last error message for an object.
func (t *StatusSyncFailureTracker) GetLastError(resourceType ResourceType, name string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if info, exists := t.failures[resourceKey(resourceType, name)]; exists {
		return info.lastError
	}
	return ""
}

var (
	globalFailureTracker     *StatusSyncFailureTracker
	globalFailureTrackerOnce sync.Once
	globalFailureTrackerMu   sync.Mutex
)

// GetStatusSyncFailureTracker returns the global failure tracker instance.
func GetStatusSyncFailureTracker() *StatusSyncFailureTracker {
	globalFailureTrackerMu.Lock()
	defer globalFailureTrackerMu.Unlock()

	globalFailureTrackerOnce.Do(func() {
		globalFailureTracker = NewStatusSyncFailureTracker()
	})
	return globalFailureTracker
}

// ResetStatusSyncFailureTracker resets the global failure tracker; for tests.
func ResetStatusSyncFailureTracker() {
	globalFailureTrackerMu.Lock()
	defer globalFailureTrackerMu.Unlock()

	globalFailureTrackerOnce = sync.Once{}
	globalFailureTracker = nil
}
