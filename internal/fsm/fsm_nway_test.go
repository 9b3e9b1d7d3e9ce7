package fsm

import (
	"testing"

	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/stretchr/testify/require"
)

func nWaySU(name model.SUName, node model.NodeName, rank int) *model.ServiceUnit {
	return &model.ServiceUnit{
		Name:       name,
		SG:         "sg-1",
		Node:       node,
		Rank:       rank,
		Readiness:  model.ReadinessInService,
		Admin:      model.AdminUnlocked,
		MaxActive:  3,
		MaxStandby: 3,
	}
}

func nWayFixture() (*Context, *model.ServiceGroup) {
	sus := map[model.SUName]*model.ServiceUnit{
		"su-1": nWaySU("su-1", "node-1", 0),
		"su-2": nWaySU("su-2", "node-2", 1),
		"su-3": nWaySU("su-3", "node-3", 2),
	}
	sis := map[model.SIName]*model.ServiceInstance{
		"si-1": {Name: "si-1", SG: "sg-1", Rank: 0, PreferredSUOrder: []model.SUName{"su-2", "su-1", "su-3"}},
	}
	ctx, _ := newTestContext(sus, sis)
	sg := testSG(model.NWay)
	sg.PrefStandbySUs = 2
	return ctx, sg
}

func TestAssignNWayHonorsPreferredSUOrder(t *testing.T) {
	ctx, sg := nWayFixture()

	assignNWay(ctx, sg)

	require.Equal(t, model.HAActive, ctx.SUs["su-2"].SUSIs["si-1"].HA, "si-1's own preferred order should win over SG rank order")
	require.Equal(t, model.HAStandby, ctx.SUs["su-1"].SUSIs["si-1"].HA)
	require.Equal(t, model.HAStandby, ctx.SUs["su-3"].SUSIs["si-1"].HA)
	require.Equal(t, model.SIFullyAssigned, ctx.SIs["si-1"].Assignment)
}

func TestFaultSUNWayPromotesBestRankedStandby(t *testing.T) {
	ctx, sg := nWayFixture()
	assignNWay(ctx, sg)

	result := suFault(ctx, sg, Event{Kind: EvSUFault, SU: "su-2"})
	require.True(t, result.Transitioned)

	for si := range ctx.SUs["su-2"].SUSIs {
		susiSuccess(ctx, sg, Event{Kind: EvSUSISuccess, SU: "su-2", SI: si, Op: OpModify, HA: model.HAQuiesced})
	}

	// su-1 ranks ahead of su-3 in si-1's own PreferredSUOrder.
	require.Equal(t, model.SUSIModifying, ctx.SUs["su-1"].SUSIs["si-1"].FSM)
}
