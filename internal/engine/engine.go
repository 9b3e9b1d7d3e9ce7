package engine

import (
	"context"

	"github.com/mathi-naickan/opensaf-sub000/internal/dependency"
	"github.com/mathi-naickan/opensaf-sub000/internal/fsm"
	"github.com/mathi-naickan/opensaf-sub000/internal/messaging"
	"github.com/mathi-naickan/opensaf-sub000/internal/metrics"
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/mathi-naickan/opensaf-sub000/internal/orchestrator"
	"github.com/mathi-naickan/opensaf-sub000/pkg/logging"
)

const subsystem = "Engine"

// configOp is an engine-loop-only mutation of the SG/SU/SI registries,
// submitted through the same mailbox as fsm events so registry edits never
// race with a Dispatch call.
type configOp struct {
	apply func(e *Engine)
	done  chan error
}

// Engine owns the SG/SU/SI registries and runs the single goroutine that
// ever mutates them. Every other goroutine in the process — reconcilers,
// the messaging transport, timers — only ever calls Post.
type Engine struct {
	sgs map[model.SGName]*model.ServiceGroup

	fsmCtx *fsm.Context

	mailbox     chan fsm.Event
	configCh    chan configOp
	nodeReplies <-chan messaging.Reply

	checkpoint   CheckpointSink
	adminReplies AdminReplySink
	metrics      *metrics.Registry

	invocations *invocationAllocator

	snapshot snapshotHolder
}

// New constructs an Engine around the given transport. checkpoint and
// adminReplies may be nil, in which case a no-op sink is used for each.
// metricsReg may be nil, in which case every recorded metric is a no-op.
func New(transport messaging.Transport, checkpoint CheckpointSink, adminReplies AdminReplySink, metricsReg *metrics.Registry) *Engine {
	sus := make(map[model.SUName]*model.ServiceUnit)
	sis := make(map[model.SIName]*model.ServiceInstance)

	e := &Engine{
		sgs:          make(map[model.SGName]*model.ServiceGroup),
		mailbox:      make(chan fsm.Event, 256),
		configCh:     make(chan configOp, 64),
		checkpoint:   checkpoint,
		adminReplies: adminReplies,
		metrics:      metricsReg,
		invocations:  newInvocationAllocator(),
	}
	if e.checkpoint == nil {
		e.checkpoint = NoopCheckpoint{}
	}
	if e.adminReplies == nil {
		e.adminReplies = NoopAdminReplySink{}
	}

	e.fsmCtx = &fsm.Context{
		Ctx:       context.Background(),
		SUs:       sus,
		SIs:       sis,
		Orch:      orchestrator.New(sus, sis),
		Deps:      dependency.New(),
		Timers:    dependency.NewTimers(func(t dependency.TimerFired) { e.postTimer(t) }),
		Transport: transport,
		Metrics:   metricsReg,
	}
	e.nodeReplies = transport.Subscribe()
	e.publishSnapshot()
	return e
}

// Post enqueues an event for the engine loop to process. It is safe to call
// from any goroutine.
func (e *Engine) Post(ev fsm.Event) {
	e.mailbox <- ev
}

// NextInvocation allocates a fresh administrative invocation token: callers
// constructing an admin event use this so every in-flight invocation is
// uniquely numbered.
func (e *Engine) NextInvocation() uint64 {
	return e.invocations.next()
}

func (e *Engine) postTimer(t dependency.TimerFired) {
	var kind fsm.TimerKind
	switch t.Kind {
	case dependency.TimerToleration:
		kind = fsm.TimerToleration
	case dependency.TimerAwaitActive:
		kind = fsm.TimerAwaitActive
	case dependency.TimerQuiesced:
		kind = fsm.TimerQuiesced
	}
	e.Post(fsm.Event{Kind: fsm.EvTimer, SG: t.SG, SI: t.SI, TimerKind: kind})
}

// Run processes the mailbox and node-agent replies until ctx is canceled.
// This is the only goroutine that ever touches fsmCtx's SU/SI registries or
// the sgs map.
func (e *Engine) Run(ctx context.Context) {
	defer e.fsmCtx.Timers.CancelAll()
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-e.configCh:
			op.apply(e)
			if op.done != nil {
				close(op.done)
			}
			e.publishSnapshot()
		case reply, ok := <-e.nodeReplies:
			if !ok {
				e.nodeReplies = nil
				continue
			}
			for _, ev := range translateReply(e.fsmCtx, reply) {
				e.dispatch(ev)
			}
		case ev := <-e.mailbox:
			e.metrics.SetQueueDepth(len(e.mailbox))
			e.dispatch(ev)
		}
	}
}

func (e *Engine) dispatch(ev fsm.Event) {
	sg, ok := e.sgs[ev.SG]
	if !ok {
		logging.Warn(subsystem, "event kind=%d for unknown sg=%s dropped", ev.Kind, ev.SG)
		return
	}
	result := fsm.Dispatch(e.fsmCtx, sg, ev)
	if result.Transitioned {
		e.checkpoint.Checkpoint(e.buildSnapshot())
		e.metrics.RecordTransition(string(sg.Name), sg.FSMState.String())
	}
	if result.Reply != nil {
		e.adminReplies.Reply(*result.Reply)
	}
	e.publishSnapshot()
}

// translateReply turns one messaging.Reply into the fsm events it answers.
// A reply with no SI named is the ack for a modifyAll/deleteAll "every SUSI
// of this SU" order, so it fans out into one SUSI_SUCCESS/SUSI_FAIL per SUSI
// the SU currently holds.
func translateReply(fsmCtx *fsm.Context, reply messaging.Reply) []fsm.Event {
	kind := fsm.EvSUSISuccess
	if reply.Result == messaging.ReplyFail {
		kind = fsm.EvSUSIFail
	}
	op := orderOpFromKind(reply.Kind)

	if reply.SI != "" {
		su, ok := fsmCtx.SUs[reply.SU]
		if !ok {
			return nil
		}
		return []fsm.Event{{Kind: kind, SG: su.SG, SU: reply.SU, SI: reply.SI, Op: op, HA: reply.HA}}
	}

	su, ok := fsmCtx.SUs[reply.SU]
	if !ok {
		return nil
	}
	events := make([]fsm.Event, 0, len(su.SUSIs))
	for si := range su.SUSIs {
		events = append(events, fsm.Event{Kind: kind, SG: su.SG, SU: reply.SU, SI: si, Op: op, HA: reply.HA})
	}
	return events
}

func orderOpFromKind(kind messaging.OrderKind) fsm.OrderOp {
	switch kind {
	case messaging.OrderAssign:
		return fsm.OpAssign
	case messaging.OrderModify:
		return fsm.OpModify
	default:
		return fsm.OpDelete
	}
}
