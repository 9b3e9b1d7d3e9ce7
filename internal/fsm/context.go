package fsm

import (
	"context"

	"github.com/mathi-naickan/opensaf-sub000/internal/dependency"
	"github.com/mathi-naickan/opensaf-sub000/internal/messaging"
	"github.com/mathi-naickan/opensaf-sub000/internal/metrics"
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/mathi-naickan/opensaf-sub000/internal/orchestrator"
)

// Context bundles the collaborators and registries a Dispatch call needs.
// The engine constructs one Context per process and passes it explicitly
// into every entry point instead of reaching for a singleton.
type Context struct {
	Ctx context.Context

	SUs map[model.SUName]*model.ServiceUnit
	SIs map[model.SIName]*model.ServiceInstance

	Orch      *orchestrator.Orchestrator
	Deps      *dependency.Graph
	Timers    *dependency.Timers
	Transport messaging.Transport

	// Metrics is optional; a nil Registry makes every Record* call a no-op.
	Metrics *metrics.Registry
}

// send issues an order to the SU's node and counts it once the transport
// accepts it, the one choke point every model-specific handler routes
// assignment actions through. The SUSI's sub-fsm state is set by the
// callers in susi.go, not here.
func (c *Context) send(kind messaging.OrderKind, su model.SUName, si model.SIName, ha model.HAState) {
	suObj, ok := c.SUs[su]
	if !ok {
		return
	}
	if err := c.Transport.Send(c.Ctx, suObj.Node, messaging.Order{
		Kind: kind,
		SU:   su,
		SI:   si,
		HA:   ha,
	}); err != nil {
		return
	}
	c.Metrics.RecordOrder(kind.String())
}
