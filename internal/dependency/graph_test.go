package dependency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathi-naickan/opensaf-sub000/internal/model"
)

func TestLoadRejectsCycle(t *testing.T) {
	g := New()
	err := g.Load([]model.DependencyEdge{
		{Sponsor: "si-a", Dependent: "si-b", RequiredHA: model.HAActive},
		{Sponsor: "si-b", Dependent: "si-a", RequiredHA: model.HAActive},
	})
	require.Error(t, err)
}

func TestScreenSponsorState(t *testing.T) {
	g := New()
	require.NoError(t, g.Load([]model.DependencyEdge{
		{Sponsor: "si-a", Dependent: "si-b", RequiredHA: model.HAActive},
	}))

	states := map[model.SIName]SiState{
		"si-a": {Name: "si-a", HA: model.HAStandby, Assigned: true},
	}
	assert.False(t, g.ScreenSponsorState("si-b", states))

	states["si-a"] = SiState{Name: "si-a", HA: model.HAActive, Assigned: true}
	assert.True(t, g.ScreenSponsorState("si-b", states))
}

func TestSponsorBecameActiveUnblocksDependents(t *testing.T) {
	g := New()
	require.NoError(t, g.Load([]model.DependencyEdge{
		{Sponsor: "si-a", Dependent: "si-b", RequiredHA: model.HAActive},
		{Sponsor: "si-a", Dependent: "si-c", RequiredHA: model.HAActive},
	}))
	states := map[model.SIName]SiState{
		"si-a": {Name: "si-a", HA: model.HAActive, Assigned: true},
	}
	unblocked := g.SponsorBecameActive("si-a", states)
	assert.ElementsMatch(t, []model.SIName{"si-b", "si-c"}, unblocked)
}

func TestIsFailoverPossibleBlockedBySponsor(t *testing.T) {
	g := New()
	require.NoError(t, g.Load([]model.DependencyEdge{
		{Sponsor: "si-a", Dependent: "si-b", RequiredHA: model.HAActive},
	}))
	blocked := map[model.SIName]bool{"si-a": true}
	assert.False(t, g.IsFailoverPossible("si-b", blocked))
	assert.True(t, g.IsFailoverPossible("si-b", map[model.SIName]bool{}))
}

func TestRoleFailoverOrderIsTopological(t *testing.T) {
	g := New()
	require.NoError(t, g.Load([]model.DependencyEdge{
		{Sponsor: "si-a", Dependent: "si-b", RequiredHA: model.HAActive},
		{Sponsor: "si-b", Dependent: "si-c", RequiredHA: model.HAActive},
	}))
	order := g.RoleFailoverOrder("si-a")
	require.Equal(t, []model.SIName{"si-a", "si-b", "si-c"}, order)
}
