package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathi-naickan/opensaf-sub000/internal/model"
)

func baseSUs() map[model.SUName]*model.ServiceUnit {
	return map[model.SUName]*model.ServiceUnit{
		"su-2": {Name: "su-2", SG: "sg-1", Rank: 2, Readiness: model.ReadinessInService, Admin: model.AdminUnlocked, MaxActive: 1, MaxStandby: 1, SUSIs: map[model.SIName]*model.SUSI{}},
		"su-1": {Name: "su-1", SG: "sg-1", Rank: 1, Readiness: model.ReadinessInService, Admin: model.AdminUnlocked, MaxActive: 1, MaxStandby: 1, SUSIs: map[model.SIName]*model.SUSI{}},
	}
}

func TestRankedSUsOrdersByRank(t *testing.T) {
	ranked := RankedSUs("sg-1", baseSUs())
	require.Len(t, ranked, 2)
	assert.Equal(t, model.SUName("su-1"), ranked[0].Name)
	assert.Equal(t, model.SUName("su-2"), ranked[1].Name)
}

func TestNewAssignPicksLowestRankEligibleSU(t *testing.T) {
	sus := baseSUs()
	sis := map[model.SIName]*model.ServiceInstance{
		"si-1": {Name: "si-1", SG: "sg-1", SISUs: map[model.SUName]*model.SUSI{}},
	}
	o := New(sus, sis)
	a, err := o.NewAssign("sg-1", "si-1", model.HAActive)
	require.NoError(t, err)
	assert.Equal(t, model.SUName("su-1"), a.SU)
	assert.Equal(t, model.HAActive, a.HA)
}

func TestNewAssignHonorsPreferredSUOrder(t *testing.T) {
	sus := baseSUs()
	sis := map[model.SIName]*model.ServiceInstance{
		"si-1": {Name: "si-1", SG: "sg-1", SISUs: map[model.SUName]*model.SUSI{}, PreferredSUOrder: []model.SUName{"su-2", "su-1"}},
	}
	o := New(sus, sis)
	a, err := o.NewAssign("sg-1", "si-1", model.HAActive)
	require.NoError(t, err)
	assert.Equal(t, model.SUName("su-2"), a.SU)
}

func TestNewAssignReturnsErrorWhenCapacityExhausted(t *testing.T) {
	sus := map[model.SUName]*model.ServiceUnit{
		"su-1": {Name: "su-1", SG: "sg-1", Rank: 1, Readiness: model.ReadinessInService, Admin: model.AdminUnlocked, MaxActive: 0, MaxStandby: 0, SUSIs: map[model.SIName]*model.SUSI{}},
	}
	sis := map[model.SIName]*model.ServiceInstance{
		"si-1": {Name: "si-1", SG: "sg-1", SISUs: map[model.SUName]*model.SUSI{}},
	}
	o := New(sus, sis)
	_, err := o.NewAssign("sg-1", "si-1", model.HAActive)
	require.Error(t, err)
}

func TestOperListAddDelIsIdempotent(t *testing.T) {
	sg := &model.ServiceGroup{Name: "sg-1"}
	OperListAdd(sg, "su-1")
	OperListAdd(sg, "su-1")
	assert.Equal(t, []model.SUName{"su-1"}, sg.SUOperList)
	OperListDel(sg, "su-1")
	assert.True(t, sg.OperListEmpty())
}
