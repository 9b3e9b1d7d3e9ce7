// Package metrics exposes Prometheus instrumentation for the engine,
// orchestrator, and reconciler subsystems.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every collector this module registers with Prometheus.
// A single instance is constructed at process start and threaded through
// the collaborators that need to record observations.
type Registry struct {
	OrdersSent       *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
	QueueDepth       prometheus.Gauge
	MessagesLost     *prometheus.CounterVec
	ReconcileResults *prometheus.CounterVec
}

// NewRegistry constructs and registers the collectors against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		OrdersSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "amfd_orders_sent_total",
			Help: "Assignment orders sent to node agents, by order kind.",
		}, []string{"kind"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "amfd_sg_transitions_total",
			Help: "Service group FSM state transitions, by service group and resulting state.",
		}, []string{"service_group", "state"}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "amfd_engine_mailbox_depth",
			Help: "Current depth of the engine's event mailbox.",
		}),
		MessagesLost: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "amfd_messages_lost_total",
			Help: "Orders dropped or timed out before a reply was received, by destination node.",
		}, []string{"node"}),
		ReconcileResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "amfd_reconcile_results_total",
			Help: "Configuration reconciliation attempts, by resource type and outcome.",
		}, []string{"resource_type", "outcome"}),
	}
}

// RecordOrder increments the order counter for kind.
func (r *Registry) RecordOrder(kind string) {
	if r == nil {
		return
	}
	r.OrdersSent.WithLabelValues(kind).Inc()
}

// RecordTransition increments the transition counter for sg reaching state.
func (r *Registry) RecordTransition(sg, state string) {
	if r == nil {
		return
	}
	r.Transitions.WithLabelValues(sg, state).Inc()
}

// SetQueueDepth sets the current mailbox depth gauge.
func (r *Registry) SetQueueDepth(n int) {
	if r == nil {
		return
	}
	r.QueueDepth.Set(float64(n))
}

// RecordMessageLost increments the message-loss counter for node.
func (r *Registry) RecordMessageLost(node string) {
	if r == nil {
		return
	}
	r.MessagesLost.WithLabelValues(node).Inc()
}

// RecordReconcile increments the reconciliation-result counter.
func (r *Registry) RecordReconcile(resourceType, outcome string) {
	if r == nil {
		return
	}
	r.ReconcileResults.WithLabelValues(resourceType, outcome).Inc()
}
