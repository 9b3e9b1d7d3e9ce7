// Package reconciler provides a unified reconciliation system for the
// redundancy engine's configuration objects.
//
// # Overview
//
// The reconciler package implements automatic change detection and
// reconciliation for both Kubernetes CRDs and filesystem-based YAML
// configurations. It ensures that the running state of the engine matches
// the desired state defined in configuration files or Kubernetes custom
// resources.
//
// # Architecture
//
// The reconciliation system consists of several key components:
//
//   - Manager: Central coordinator that manages all reconcilers
//   - Reconciler: Interface for resource-specific reconciliation logic
//   - ChangeDetector: Interface for detecting changes in resource sources
//   - ReconcileQueue: Generic reconciliation queue with retry and backoff
//
// The system supports two modes of operation:
//
//   - Kubernetes Mode: Uses informers and controllers for CRD changes
//   - Filesystem Mode: Uses fsnotify for watching YAML file changes
//
// # Usage
//
// The reconciliation system is integrated with the engine bootstrap
// process. It starts watching for changes when the application starts
// and stops when the application shuts down.
//
// Example usage:
//
//	manager := reconciler.NewManager(config)
//	if err := manager.Start(ctx); err != nil {
//	    return fmt.Errorf("failed to start reconciliation: %w", err)
//	}
//	defer manager.Stop()
//
// # Resource Types
//
// The following resource types are supported for reconciliation:
//
//   - ServiceGroup: redundancy-model group configuration
//   - ServiceUnit: unit placement, rank, and capacity
//   - ServiceInstance: instance rank and preferred SU order
//   - DependencyEdge: sponsor/dependent SI-SI relationships
//
// # Event Integration
//
// Configuration changes detected by either mode are translated into
// reconcile requests and, from there, into events posted to the engine's
// mailbox — the engine never reads configuration directly.
//
// # Performance Considerations
//
// The system implements several optimizations:
//
//   - Debouncing: Multiple rapid changes are batched together
//   - Efficient watching: Uses informers for Kubernetes, fsnotify for files
//   - Backoff: Failed reconciliations use exponential backoff
//   - Deduplication: a request for a resource already in the queue is not
//     queued a second time
package reconciler
