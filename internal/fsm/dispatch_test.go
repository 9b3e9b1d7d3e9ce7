package fsm

import (
	"testing"

	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/stretchr/testify/require"
)

func TestSINewDefersWhenSponsorNotSatisfied(t *testing.T) {
	sus := map[model.SUName]*model.ServiceUnit{
		"su-1": twoNSU("su-1", "node-1", 0),
		"su-2": twoNSU("su-2", "node-2", 1),
	}
	sis := map[model.SIName]*model.ServiceInstance{
		"si-1": {
			Name:     "si-1",
			SG:       "sg-1",
			Sponsors: []model.SponsorRequirement{{Sponsor: "sponsor-si", RequiredHA: model.HAActive}},
		},
	}
	ctx, _ := newTestContext(sus, sis)
	sg := testSG(model.TwoN)
	require.NoError(t, ctx.Deps.Load([]model.DependencyEdge{
		{Sponsor: "sponsor-si", Dependent: "si-1", RequiredHA: model.HAActive, ToleranceMS: 1000},
	}))

	result := Dispatch(ctx, sg, Event{Kind: EvSINew})
	require.False(t, result.Transitioned)
	require.Equal(t, model.DepBlocked, ctx.SIs["si-1"].DepState)
	require.Equal(t, model.SIUnassigned, ctx.SIs["si-1"].Assignment)
	require.Nil(t, ctx.SUs["su-1"].SUSIs["si-1"])
}

func TestNodeFailTearsDownAndFailsOverWithoutAck(t *testing.T) {
	ctx, tr, sg := twoNFixture()
	assign2N(ctx, sg)
	tr.sent = nil

	result := Dispatch(ctx, sg, Event{Kind: EvNodeFail, Node: "node-1"})
	require.True(t, result.Transitioned)

	require.Empty(t, ctx.SUs["su-1"].SUSIs)
	require.Equal(t, model.ReadinessOutOfService, ctx.SUs["su-1"].Readiness)
	require.Equal(t, model.SUSIModifying, ctx.SUs["su-2"].SUSIs["si-1"].FSM)
}

func TestSUAdminLockQuiescesThenReplies(t *testing.T) {
	ctx, _, sg := twoNFixture()
	assign2N(ctx, sg)

	result := Dispatch(ctx, sg, Event{Kind: EvSUAdminDown, SU: "su-1", AdminOp: AdminOpLock, Invocation: 99})
	require.True(t, result.Transitioned)
	require.Nil(t, result.Reply)
	require.Equal(t, model.AdminLocked, ctx.SUs["su-1"].Admin)
	require.Equal(t, uint64(99), sg.PendingAdminInvocation)

	var final Result
	for si := range ctx.SUs["su-1"].SUSIs {
		final = Dispatch(ctx, sg, Event{Kind: EvSUSISuccess, SU: "su-1", SI: si, Op: OpModify, HA: model.HAQuiesced})
	}
	for _, si := range []model.SIName{"si-1", "si-2"} {
		final = Dispatch(ctx, sg, Event{Kind: EvSUSISuccess, SU: "su-2", SI: si, Op: OpModify, HA: model.HAActive})
	}
	for _, si := range []model.SIName{"si-1", "si-2"} {
		final = Dispatch(ctx, sg, Event{Kind: EvSUSISuccess, SU: "su-1", SI: si, Op: OpDelete})
	}

	require.NotNil(t, final.Reply)
	require.Equal(t, uint64(99), final.Reply.Invocation)
	require.Equal(t, AdminStatusOK, final.Reply.Status)
}
