package engine

import (
	"context"
	"testing"
	"time"

	"github.com/mathi-naickan/opensaf-sub000/internal/fsm"
	"github.com/mathi-naickan/opensaf-sub000/internal/messaging"
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/stretchr/testify/require"
)

func twoNSU(name model.SUName, node model.NodeName, rank int) *model.ServiceUnit {
	return &model.ServiceUnit{
		Name:       name,
		SG:         "sg-1",
		Node:       node,
		Rank:       rank,
		Readiness:  model.ReadinessInService,
		Admin:      model.AdminUnlocked,
		MaxActive:  10,
		MaxStandby: 10,
	}
}

func newRunningEngine(t *testing.T) (*Engine, *messaging.InProcTransport, func()) {
	t.Helper()
	transport := messaging.NewInProcTransport([]model.NodeName{"node-1", "node-2"})
	transport.Start()
	replies := NewChannelAdminReplySink(8)
	e := New(transport, nil, replies, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	cleanup := func() {
		cancel()
		<-done
		transport.Stop()
	}
	return e, transport, cleanup
}

func waitForSnapshotPredicate(t *testing.T, e *Engine, pred func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		snap := e.Snapshot()
		if pred(snap) {
			return snap
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot predicate")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestEngineAssignsAndSettlesSINew(t *testing.T) {
	e, _, cleanup := newRunningEngine(t)
	defer cleanup()

	sg := &model.ServiceGroup{Name: "sg-1", Model: model.TwoN, Admin: model.AdminUnlocked, FSMState: model.SGStable}
	require.NoError(t, e.UpsertSG(sg))
	require.NoError(t, e.UpsertSU(twoNSU("su-1", "node-1", 0)))
	require.NoError(t, e.UpsertSU(twoNSU("su-2", "node-2", 1)))
	require.NoError(t, e.UpsertSI(&model.ServiceInstance{Name: "si-1", SG: "sg-1", Rank: 0}))

	e.Post(fsm.Event{Kind: fsm.EvSINew, SG: "sg-1", SI: "si-1"})

	snap := waitForSnapshotPredicate(t, e, func(s Snapshot) bool {
		su1, ok1 := s.SUs["su-1"]
		su2, ok2 := s.SUs["su-2"]
		if !ok1 || !ok2 {
			return false
		}
		susi1, has1 := su1.SUSIs["si-1"]
		susi2, has2 := su2.SUSIs["si-1"]
		return has1 && has2 && susi1.HA == model.HAActive && susi2.HA == model.HAStandby
	})

	require.Equal(t, model.HAActive, snap.SUs["su-1"].SUSIs["si-1"].HA)
	require.Equal(t, model.HAStandby, snap.SUs["su-2"].SUSIs["si-1"].HA)
}

func TestEngineAdminLockRepliesExactlyOnce(t *testing.T) {
	e, _, cleanup := newRunningEngine(t)
	defer cleanup()

	sg := &model.ServiceGroup{Name: "sg-1", Model: model.TwoN, Admin: model.AdminUnlocked, FSMState: model.SGStable}
	require.NoError(t, e.UpsertSG(sg))
	require.NoError(t, e.UpsertSU(twoNSU("su-1", "node-1", 0)))
	require.NoError(t, e.UpsertSU(twoNSU("su-2", "node-2", 1)))
	require.NoError(t, e.UpsertSI(&model.ServiceInstance{Name: "si-1", SG: "sg-1", Rank: 0}))

	e.Post(fsm.Event{Kind: fsm.EvSINew, SG: "sg-1", SI: "si-1"})
	waitForSnapshotPredicate(t, e, func(s Snapshot) bool {
		su1, ok := s.SUs["su-1"]
		return ok && su1.SUSIs["si-1"] != nil && su1.SUSIs["si-1"].HA == model.HAActive
	})

	invocation := e.NextInvocation()
	e.Post(fsm.Event{Kind: fsm.EvSUAdminDown, SG: "sg-1", SU: "su-1", AdminOp: fsm.AdminOpLock, Invocation: invocation})

	sink := e.adminReplies.(*ChannelAdminReplySink)
	select {
	case reply := <-sink.Replies():
		require.Equal(t, invocation, reply.Invocation)
		require.Equal(t, fsm.AdminStatusOK, reply.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for admin reply")
	}

	select {
	case extra := <-sink.Replies():
		t.Fatalf("unexpected second admin reply: %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}
