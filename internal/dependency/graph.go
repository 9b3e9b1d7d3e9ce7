// Package dependency tracks the sponsor/dependent relationships between
// service instances and decides when a dependent SI's role change must wait
// on, or cascade from, a sponsor's role change.
package dependency

import (
	"fmt"

	"github.com/mathi-naickan/opensaf-sub000/internal/model"
)

// Edge is a sponsor -> dependent relationship together with the HA state the
// sponsor must reach before the dependent may be assigned, and the
// toleration window the dependent is granted once the sponsor drops below it.
type Edge struct {
	Sponsor     model.SIName
	Dependent   model.SIName
	RequiredHA  model.HAState
	ToleranceMS int64
}

// Graph is the sponsor/dependent index for one cluster. It is not
// thread-safe; callers (the engine loop) serialize access.
type Graph struct {
	bySponsor   map[model.SIName][]Edge
	byDependent map[model.SIName][]Edge
}

// New returns an empty dependency graph.
func New() *Graph {
	return &Graph{
		bySponsor:   make(map[model.SIName][]Edge),
		byDependent: make(map[model.SIName][]Edge),
	}
}

// Load replaces the graph contents with edges, after verifying they form a
// DAG. SGs whose dependency configuration fails this check must stay in
// implicit LOCKED until corrected.
func (g *Graph) Load(edges []model.DependencyEdge) error {
	modelEdges := make([]Edge, 0, len(edges))
	for _, e := range edges {
		modelEdges = append(modelEdges, Edge{
			Sponsor:     e.Sponsor,
			Dependent:   e.Dependent,
			RequiredHA:  e.RequiredHA,
			ToleranceMS: e.ToleranceMS,
		})
	}
	if err := model.ValidateAcyclic(edges); err != nil {
		return fmt.Errorf("dependency graph rejected: %w", err)
	}
	g.bySponsor = make(map[model.SIName][]Edge)
	g.byDependent = make(map[model.SIName][]Edge)
	for _, e := range modelEdges {
		g.bySponsor[e.Sponsor] = append(g.bySponsor[e.Sponsor], e)
		g.byDependent[e.Dependent] = append(g.byDependent[e.Dependent], e)
	}
	return nil
}

// Sponsors returns the sponsor requirements of a dependent SI.
func (g *Graph) Sponsors(dependent model.SIName) []Edge {
	out := make([]Edge, len(g.byDependent[dependent]))
	copy(out, g.byDependent[dependent])
	return out
}

// Dependents returns the SIs that depend on sponsor.
func (g *Graph) Dependents(sponsor model.SIName) []Edge {
	out := make([]Edge, len(g.bySponsor[sponsor]))
	copy(out, g.bySponsor[sponsor])
	return out
}

// SiState is the minimal view of an SI's current assignment the tracker
// needs to evaluate sponsor conditions, decoupled from internal/model so the
// tracker can be exercised without constructing full ServiceInstance values.
type SiState struct {
	Name      model.SIName
	HA        model.HAState
	Assigned  bool
}

// ScreenSponsorState reports whether dependent's sponsor requirements are
// currently satisfied given the live state of every SI in states.
func (g *Graph) ScreenSponsorState(dependent model.SIName, states map[model.SIName]SiState) bool {
	for _, edge := range g.byDependent[dependent] {
		sponsor, ok := states[edge.Sponsor]
		if !ok || !sponsor.Assigned || sponsor.HA != edge.RequiredHA {
			return false
		}
	}
	return true
}

// SponsorBecameActive returns the dependents that are newly unblocked now
// that sponsor reached its required HA state, given the rest of the live
// state in states.
func (g *Graph) SponsorBecameActive(sponsor model.SIName, states map[model.SIName]SiState) []model.SIName {
	var unblocked []model.SIName
	for _, edge := range g.bySponsor[sponsor] {
		if g.ScreenSponsorState(edge.Dependent, states) {
			unblocked = append(unblocked, edge.Dependent)
		}
	}
	return unblocked
}

// SponsorLost returns the dependents that must start (or restart) their
// toleration window because sponsor dropped out of its required HA state.
func (g *Graph) SponsorLost(sponsor model.SIName) []Edge {
	return g.Dependents(sponsor)
}

// IsFailoverPossible reports whether dependent may fail over given a set of
// SIs currently mid-toleration (blocked). A dependent cannot fail over while
// any of its sponsors are themselves blocked, since failing it over now
// would only have to be undone when the sponsor's own failover lands.
func (g *Graph) IsFailoverPossible(dependent model.SIName, blocked map[model.SIName]bool) bool {
	for _, edge := range g.byDependent[dependent] {
		if blocked[edge.Sponsor] {
			return false
		}
	}
	return true
}

// RoleFailoverOrder returns dependent plus every transitive dependent of it,
// in the order their QUIESCING/failover orders must be sent: a dependent is
// never ordered to drop its role before its sponsor has started dropping
// its own, so this is the topological order rooted at dependent walking
// outward through the sponsor->dependent edges.
func (g *Graph) RoleFailoverOrder(dependent model.SIName) []model.SIName {
	seen := map[model.SIName]bool{}
	var order []model.SIName
	var walk func(n model.SIName)
	walk = func(n model.SIName) {
		if seen[n] {
			return
		}
		seen[n] = true
		order = append(order, n)
		for _, edge := range g.bySponsor[n] {
			walk(edge.Dependent)
		}
	}
	walk(dependent)
	return order
}
