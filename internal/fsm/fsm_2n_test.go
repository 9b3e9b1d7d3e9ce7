package fsm

import (
	"testing"

	"github.com/mathi-naickan/opensaf-sub000/internal/messaging"
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/stretchr/testify/require"
)

func twoNFixture() (*Context, *fakeTransport, *model.ServiceGroup) {
	sus := map[model.SUName]*model.ServiceUnit{
		"su-1": twoNSU("su-1", "node-1", 0),
		"su-2": twoNSU("su-2", "node-2", 1),
	}
	sis := map[model.SIName]*model.ServiceInstance{
		"si-1": {Name: "si-1", SG: "sg-1", Rank: 0},
		"si-2": {Name: "si-2", SG: "sg-1", Rank: 1},
	}
	ctx, tr := newTestContext(sus, sis)
	sg := testSG(model.TwoN)
	return ctx, tr, sg
}

func TestAssign2NPicksOneActiveOneStandbySU(t *testing.T) {
	ctx, _, sg := twoNFixture()

	assign2N(ctx, sg)

	require.Equal(t, model.SIFullyAssigned, ctx.SIs["si-1"].Assignment)
	require.Equal(t, model.SIFullyAssigned, ctx.SIs["si-2"].Assignment)
	require.Equal(t, model.HAActive, ctx.SUs["su-1"].SUSIs["si-1"].HA)
	require.Equal(t, model.HAStandby, ctx.SUs["su-2"].SUSIs["si-1"].HA)
	require.Equal(t, 2, ctx.SUs["su-1"].NumCurrActive)
	require.Equal(t, 2, ctx.SUs["su-2"].NumCurrStandby)
}

func TestSUFaultOnActivePromotesStandby(t *testing.T) {
	ctx, tr, sg := twoNFixture()
	assign2N(ctx, sg)
	tr.sent = nil

	result := suFault(ctx, sg, Event{Kind: EvSUFault, SU: "su-1"})
	require.True(t, result.Transitioned)
	require.Equal(t, model.SGSUOper, sg.FSMState)
	require.Equal(t, model.SUSIModifying, ctx.SUs["su-1"].SUSIs["si-1"].FSM)

	for _, order := range tr.sent {
		require.Equal(t, messaging.OrderModify, order.Kind)
	}

	// Acking the quiesce on su-1 triggers continueAfterQuiesce2N, which
	// promotes su-2 to ACTIVE and starts tearing down su-1's bindings.
	for si := range ctx.SUs["su-1"].SUSIs {
		susiSuccess(ctx, sg, Event{Kind: EvSUSISuccess, SU: "su-1", SI: si, Op: OpModify, HA: model.HAQuiesced})
	}

	for _, susi := range ctx.SUs["su-1"].SUSIs {
		require.Equal(t, model.SUSIUnassigning, susi.FSM)
	}
	for _, susi := range ctx.SUs["su-2"].SUSIs {
		require.Equal(t, model.SUSIModifying, susi.FSM)
	}

	for si := range ctx.SUs["su-2"].SUSIs {
		susiSuccess(ctx, sg, Event{Kind: EvSUSISuccess, SU: "su-2", SI: si, Op: OpModify, HA: model.HAActive})
	}
	for _, si := range []model.SIName{"si-1", "si-2"} {
		susiSuccess(ctx, sg, Event{Kind: EvSUSISuccess, SU: "su-1", SI: si, Op: OpDelete})
	}

	require.Empty(t, ctx.SUs["su-1"].SUSIs)
	require.True(t, sg.OperListEmpty())
	require.Equal(t, model.SGStable, sg.FSMState)
	require.Equal(t, model.HAActive, ctx.SUs["su-2"].SUSIs["si-1"].HA)
	require.Equal(t, model.HAActive, ctx.SUs["su-2"].SUSIs["si-2"].HA)
}

func TestSISwapRejectedForNonTwoN(t *testing.T) {
	ctx, _, sg := twoNFixture()
	sg.Model = model.NPlusM

	result := siSwap(ctx, sg, Event{Kind: EvSISwap, Invocation: 7})
	require.NotNil(t, result.Reply)
	require.Equal(t, AdminStatusBadOperation, result.Reply.Status)
}

func TestSISwapCompletesAndReplies(t *testing.T) {
	ctx, _, sg := twoNFixture()
	assign2N(ctx, sg)

	result := siSwap(ctx, sg, Event{Kind: EvSISwap, Invocation: 42})
	require.True(t, result.Transitioned)
	require.Nil(t, result.Reply)
	require.Equal(t, uint64(42), sg.PendingAdminInvocation)
	require.Equal(t, model.SGSUOper, sg.FSMState)

	// su-1 was the active peer being quiesced; ack that first.
	for si := range ctx.SUs["su-1"].SUSIs {
		susiSuccess(ctx, sg, Event{Kind: EvSUSISuccess, SU: "su-1", SI: si, Op: OpModify, HA: model.HAQuiesced})
	}

	// That settles su-1's quiesce and issues su-2 -> ACTIVE, su-1 -> STANDBY.
	var final Result
	for si := range ctx.SUs["su-2"].SUSIs {
		final = susiSuccess(ctx, sg, Event{Kind: EvSUSISuccess, SU: "su-2", SI: si, Op: OpModify, HA: model.HAActive})
	}
	for si := range ctx.SUs["su-1"].SUSIs {
		final = susiSuccess(ctx, sg, Event{Kind: EvSUSISuccess, SU: "su-1", SI: si, Op: OpModify, HA: model.HAStandby})
	}

	require.Equal(t, uint64(0), sg.PendingAdminInvocation)
	require.NotNil(t, final.Reply)
	require.Equal(t, AdminStatusOK, final.Reply.Status)
	require.Equal(t, model.HAActive, ctx.SUs["su-2"].SUSIs["si-1"].HA)
	require.Equal(t, model.HAStandby, ctx.SUs["su-1"].SUSIs["si-1"].HA)
}
