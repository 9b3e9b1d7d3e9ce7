package reconciler

import "github.com/mathi-naickan/opensaf-sub000/internal/metrics"

// recordOutcome reports a completed Reconcile call's outcome: "error",
// "requeue", or "ok". A nil registry makes this a no-op.
func recordOutcome(m *metrics.Registry, resourceType ResourceType, result ReconcileResult) {
	outcome := "ok"
	switch {
	case result.Error != nil:
		outcome = "error"
	case result.Requeue:
		outcome = "requeue"
	}
	m.RecordReconcile(string(resourceType), outcome)
}
