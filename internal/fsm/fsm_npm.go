package fsm

import (
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/mathi-naickan/opensaf-sub000/internal/orchestrator"
)

// splitNPlusM partitions sg's eligible SUs into the preferred-active and
// preferred-standby pools. When EqualRankedSUs is set, both
// pools are the same rank-ordered set and assignment is load-balanced
// instead of role-pinned ("equal rank" mode).
func splitNPlusM(ctx *Context, sg *model.ServiceGroup) (actives, standbys []*model.ServiceUnit) {
	sus := orchestrator.RankedSUs(sg.Name, ctx.SUs)
	if sg.EqualRankedSUs {
		var pool []*model.ServiceUnit
		for _, su := range sus {
			if su.Eligible() {
				pool = append(pool, su)
			}
		}
		return pool, pool
	}
	for _, su := range sus {
		if !su.Eligible() {
			continue
		}
		if len(actives) < sg.PrefActiveSUs {
			actives = append(actives, su)
			continue
		}
		if len(standbys) < sg.PrefStandbySUs {
			standbys = append(standbys, su)
		}
	}
	return actives, standbys
}

// leastLoaded picks the SU with spare capacity for ha and the fewest
// current assignments of that role, spreading load across the pool rather
// than always filling rank order first.
func leastLoaded(pool []*model.ServiceUnit, ha model.HAState, exclude map[model.SUName]bool) *model.ServiceUnit {
	var best *model.ServiceUnit
	for _, su := range pool {
		if exclude[su.Name] || !su.HasCapacity(ha) {
			continue
		}
		load := su.NumCurrActive
		if ha == model.HAStandby {
			load = su.NumCurrStandby
		}
		if best == nil {
			best = su
			continue
		}
		bestLoad := best.NumCurrActive
		if ha == model.HAStandby {
			bestLoad = best.NumCurrStandby
		}
		if load < bestLoad {
			best = su
		}
	}
	return best
}

// assignNPlusM implements the N+M chooser: every
// unassigned SI gets an ACTIVE binding from the active pool and, capacity
// permitting, a STANDBY binding from the standby pool, both chosen by
// least-loaded rather than strict rank fill so the M spare SUs absorb
// failures evenly.
func assignNPlusM(ctx *Context, sg *model.ServiceGroup) {
	actives, standbys := splitNPlusM(ctx, sg)
	for _, si := range orchestrator.RankedSIs(sg.Name, ctx.SIs) {
		if si.Assignment == model.SIFullyAssigned {
			continue
		}
		if len(si.Sponsors) > 0 {
			states := ctx.liveStates(sg)
			if !ctx.Deps.ScreenSponsorState(si.Name, states) {
				si.DepState = model.DepBlocked
				continue
			}
		}

		already := make(map[model.SUName]bool, len(si.SISUs))
		for su := range si.SISUs {
			already[su] = true
		}

		if si.Assignment == model.SIUnassigned {
			if su := leastLoaded(actives, model.HAActive, already); su != nil {
				ctx.assign(sg, orchestrator.Assignment{SU: su.Name, SI: si.Name, HA: model.HAActive})
				already[su.Name] = true
				si.Assignment = model.SIPartiallyAssigned
				si.DepState = model.DepSatisfied
			} else {
				continue
			}
		}
		if su := leastLoaded(standbys, model.HAStandby, already); su != nil {
			ctx.assign(sg, orchestrator.Assignment{SU: su.Name, SI: si.Name, HA: model.HAStandby})
			si.Assignment = model.SIFullyAssigned
		}
	}
}

// faultActiveNPlusM handles SU_FAULT on an N+M active SU:
// quiesce every SI it holds and enter SU_OPER. Per-SI standby promotion
// happens once the quiesce completes, in continueAfterQuiesceNPlusM.
func faultActiveNPlusM(ctx *Context, sg *model.ServiceGroup, su *model.ServiceUnit) {
	if len(su.SUSIs) == 0 {
		return
	}
	ctx.modifyAll(sg, su.Name, model.HAQuiescing)
	sg.FSMState = model.SGSUOper
}

// continueAfterQuiesceNPlusM promotes each SI's existing standby to ACTIVE
// (or, if it has none, tries a fresh assignment against the spare pool),
// then tears down the faulted SU's bindings. A SI whose sponsor is itself
// mid-failover is deferred to DepBlocked instead, per promoteIfFailoverPossible.
func continueAfterQuiesceNPlusM(ctx *Context, sg *model.ServiceGroup, quiescedSU *model.ServiceUnit) {
	blocked := ctx.failingOverSIs(sg)
	for si := range quiescedSU.SUSIs {
		siObj, ok := ctx.SIs[si]
		if !ok {
			continue
		}
		promoted := false
		for suName, susi := range siObj.SISUs {
			if suName == quiescedSU.Name {
				continue
			}
			if susi.HA == model.HAStandby {
				ctx.promoteIfFailoverPossible(sg, suName, siObj, blocked)
				promoted = true
				break
			}
		}
		if !promoted {
			siObj.Assignment = model.SIUnassigned
			ctx.tryAssignActiveIfFailoverPossible(sg, siObj, blocked)
		}
	}
	ctx.deleteAll(sg, quiescedSU.Name)
}

// redistributeNPlusM implements the single-step-per-STABLE-entry
// redistribution pass for N+M: when AutoAdjust is set and the most-loaded
// active SU holds at least two more ACTIVE SIs than the least-loaded one,
// quiesce one ACTIVE SI on the most-loaded SU (the first found in map
// order, not chosen by rank). The move is staged as sg.Redistribution, so
// no second move starts while it is in flight and its quiesce ack is routed
// to continueAfterRedistributeNPlusM, which promotes the SI's standby or
// reassigns it by rank; the SI is not placed on the least-loaded SU as such.
func redistributeNPlusM(ctx *Context, sg *model.ServiceGroup) {
	if !sg.AutoAdjust || sg.Redistribution != nil {
		return
	}
	actives, _ := splitNPlusM(ctx, sg)
	var busiest, idlest *model.ServiceUnit
	for _, su := range actives {
		if busiest == nil || su.NumCurrActive > busiest.NumCurrActive {
			busiest = su
		}
		if idlest == nil || su.NumCurrActive < idlest.NumCurrActive {
			idlest = su
		}
	}
	if busiest == nil || idlest == nil || busiest.Name == idlest.Name {
		return
	}
	if busiest.NumCurrActive-idlest.NumCurrActive < 2 {
		return
	}
	for si, susi := range busiest.SUSIs {
		if susi.HA != model.HAActive {
			continue
		}
		sg.Redistribution = &model.RedistributionTriple{OldActive: busiest.Name, NewActive: idlest.Name, SI: si}
		ctx.modify(sg, busiest.Name, si, model.HAQuiescing)
		sg.FSMState = model.SGSUOper
		return
	}
}

// continueAfterRedistributeNPlusM completes a single staged SI move: the SI
// named in sg.Redistribution gets a standby promotion or a fresh assignment
// off oldActive, then its SUSI on oldActive is deleted. Unlike
// continueAfterQuiesceNPlusM this never touches the SU's other SUSIs, since
// only the one staged SI was quiesced.
func continueAfterRedistributeNPlusM(ctx *Context, sg *model.ServiceGroup, oldActive *model.ServiceUnit) {
	redist := sg.Redistribution
	if redist == nil {
		return
	}
	si := redist.SI
	if siObj, ok := ctx.SIs[si]; ok {
		promoted := false
		for suName, susi := range siObj.SISUs {
			if suName == oldActive.Name {
				continue
			}
			if susi.HA == model.HAStandby {
				ctx.modify(sg, suName, si, model.HAActive)
				promoted = true
				break
			}
		}
		if !promoted {
			siObj.Assignment = model.SIUnassigned
			ctx.tryAssignActive(sg, siObj)
		}
	}
	ctx.deleteSUSI(sg, oldActive.Name, si)
}
