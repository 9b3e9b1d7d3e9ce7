package fsm

import (
	"context"

	"github.com/mathi-naickan/opensaf-sub000/internal/dependency"
	"github.com/mathi-naickan/opensaf-sub000/internal/messaging"
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/mathi-naickan/opensaf-sub000/internal/orchestrator"
)

// fakeTransport records every order sent to it instead of delivering
// anything, letting tests assert on what the FSM tried to send without a
// live node-agent loop.
type fakeTransport struct {
	sent []messaging.Order
}

func (f *fakeTransport) Send(_ context.Context, _ model.NodeName, order messaging.Order) error {
	f.sent = append(f.sent, order)
	return nil
}

func (f *fakeTransport) Subscribe() <-chan messaging.Reply {
	return nil
}

// newTestContext builds a fsm.Context over the given SU/SI registries with
// fresh orchestrator/dependency/transport collaborators, the shape every
// redundancy-model test needs.
func newTestContext(sus map[model.SUName]*model.ServiceUnit, sis map[model.SIName]*model.ServiceInstance) (*Context, *fakeTransport) {
	tr := &fakeTransport{}
	return &Context{
		Ctx:       context.Background(),
		SUs:       sus,
		SIs:       sis,
		Orch:      orchestrator.New(sus, sis),
		Deps:      dependency.New(),
		Timers:    dependency.NewTimers(func(dependency.TimerFired) {}),
		Transport: tr,
	}, tr
}

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

func testSG(m model.RedundancyModel) *model.ServiceGroup {
	return &model.ServiceGroup{
		Name:  "sg-1",
		Model: m,
		Admin: model.AdminUnlocked,
	}
}
