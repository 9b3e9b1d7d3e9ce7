package reconciler

import (
	"github.com/mathi-naickan/opensaf-sub000/internal/engine"
	"github.com/mathi-naickan/opensaf-sub000/internal/fsm"
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
)

// EngineClient is the slice of *engine.Engine each reconciler needs: enough
// to turn a loaded configuration object into registry upserts/removals and
// the lifecycle event that starts the corresponding FSM transition, plus
// enough read access to decide whether a delete has actually drained.
//
// Declaring it here rather than depending on *engine.Engine directly keeps
// these reconcilers unit-testable against a fake without spinning up a real
// event loop.
type EngineClient interface {
	UpsertSG(sg *model.ServiceGroup) error
	RemoveSG(name model.SGName) error
	UpsertSU(su *model.ServiceUnit) error
	RemoveSU(name model.SUName) error
	UpsertSI(si *model.ServiceInstance) error
	RemoveSI(name model.SIName) error
	LoadDependencyEdges(edges []model.DependencyEdge) error
	Post(ev fsm.Event)
	Snapshot() engine.Snapshot
}

var _ EngineClient = (*engine.Engine)(nil)
