// Package orchestrator implements the assignment orchestrator: the
// candidate-choice logic that turns an SG-FSM decision ("this SI needs an
// ACTIVE assignment") into concrete SUSI creations, modifications, and
// deletions, and maintains each service group's SU operation list.
package orchestrator

import (
	"fmt"
	"sort"

	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/mathi-naickan/opensaf-sub000/pkg/logging"
)

const subsystem = "Orchestrator"

// Orchestrator decides which SU a new or changing SUSI binds to and emits
// the order records the messaging layer sends to node agents. It holds no
// long-lived state of its own beyond its collaborators' registries; every
// method call operates on the SG/SU/SI snapshot passed in by the engine.
type Orchestrator struct {
	sus map[model.SUName]*model.ServiceUnit
	sis map[model.SIName]*model.ServiceInstance
}

// New constructs an Orchestrator bound to the given SU/SI registries. The
// maps are shared with, and mutated by, the engine loop; the orchestrator
// never runs off its own goroutine.
func New(sus map[model.SUName]*model.ServiceUnit, sis map[model.SIName]*model.ServiceInstance) *Orchestrator {
	return &Orchestrator{sus: sus, sis: sis}
}

// Assignment is a SUSI creation, modification, or deletion the orchestrator
// wants the caller to apply to the data model and then hand to the
// messaging layer as an order.
type Assignment struct {
	SU     model.SUName
	SI     model.SIName
	HA     model.HAState
	Delete bool
}

// RankedSUs returns the service units of sg in ascending rank order, the
// order new assignments are filled in.
func RankedSUs(sg model.SGName, sus map[model.SUName]*model.ServiceUnit) []*model.ServiceUnit {
	var list []*model.ServiceUnit
	for _, su := range sus {
		if su.SG == sg {
			list = append(list, su)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Rank != list[j].Rank {
			return list[i].Rank < list[j].Rank
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// RankedSIs returns the service instances of sg in ascending rank order; the
// original AMF implementation walks si_list in rank order when filling
// ACTIVE/STANDBY, not just su_list, so every redundancy model consults this
// before SU rank.
func RankedSIs(sg model.SGName, sis map[model.SIName]*model.ServiceInstance) []*model.ServiceInstance {
	var list []*model.ServiceInstance
	for _, si := range sis {
		if si.SG == sg {
			list = append(list, si)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Rank != list[j].Rank {
			return list[i].Rank < list[j].Rank
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// eligibleSUs filters candidates to SUs that are in service, unlocked, and
// have spare capacity for ha, keeping the order of candidates.
func eligibleSUs(candidates []*model.ServiceUnit, ha model.HAState, already map[model.SUName]bool) []*model.ServiceUnit {
	var out []*model.ServiceUnit
	for _, su := range candidates {
		if already[su.Name] {
			continue
		}
		if !su.Eligible() {
			continue
		}
		if !su.HasCapacity(ha) {
			continue
		}
		out = append(out, su)
	}
	return out
}

// chooseSU picks the SU that should take on ha for si, preferring si's own
// PreferredSUOrder (per-SI ranked order, if configured) and falling back to
// SG-wide SU rank order.
func (o *Orchestrator) chooseSU(sg model.SGName, si *model.ServiceInstance, ha model.HAState) (*model.ServiceUnit, error) {
	already := make(map[model.SUName]bool, len(si.SISUs))
	for name := range si.SISUs {
		already[name] = true
	}

	if len(si.PreferredSUOrder) > 0 {
		for _, name := range si.PreferredSUOrder {
			su, ok := o.sus[name]
			if !ok || already[name] || !su.Eligible() || !su.HasCapacity(ha) {
				continue
			}
			return su, nil
		}
	}

	ranked := RankedSUs(sg, o.sus)
	candidates := eligibleSUs(ranked, ha, already)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no eligible su for si %q ha %s: %w", si.Name, ha, ErrCapacityExhausted)
	}
	return candidates[0], nil
}

// NewAssign creates a brand-new SUSI assignment for si at the given HA
// state, choosing the SU via chooseSU, and returns the Assignment the
// caller should apply to the model and hand to the messaging layer.
func (o *Orchestrator) NewAssign(sg model.SGName, siName model.SIName, ha model.HAState) (Assignment, error) {
	si, ok := o.sis[siName]
	if !ok {
		return Assignment{}, fmt.Errorf("newAssign: unknown si %q", siName)
	}
	su, err := o.chooseSU(sg, si, ha)
	if err != nil {
		return Assignment{}, err
	}
	logging.Debug(subsystem, "newAssign: si=%s su=%s ha=%s", siName, su.Name, ha)
	return Assignment{SU: su.Name, SI: siName, HA: ha}, nil
}

// ModifySend changes the HA state of an existing SUSI in place (e.g.
// STANDBY -> ACTIVE during failover, or ACTIVE -> QUIESCING during a lock).
func (o *Orchestrator) ModifySend(su model.SUName, si model.SIName, ha model.HAState) Assignment {
	logging.Debug(subsystem, "modifySend: su=%s si=%s ha=%s", su, si, ha)
	return Assignment{SU: su, SI: si, HA: ha}
}

// DelSend removes an existing SUSI assignment entirely, the terminal step
// of an UNASSIGNING transition.
func (o *Orchestrator) DelSend(su model.SUName, si model.SIName) Assignment {
	logging.Debug(subsystem, "delSend: su=%s si=%s", su, si)
	return Assignment{SU: su, SI: si, Delete: true}
}

// OperListAdd records that su has an order outstanding against sg.
func OperListAdd(sg *model.ServiceGroup, su model.SUName) {
	sg.OperListAdd(su)
}

// OperListDel clears an outstanding order record for su against sg.
func OperListDel(sg *model.ServiceGroup, su model.SUName) {
	sg.OperListDel(su)
}
