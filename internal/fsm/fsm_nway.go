package fsm

import (
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/mathi-naickan/opensaf-sub000/internal/orchestrator"
)

// nWayCandidates returns sg's eligible SUs in the order an SI should be
// offered them: si's own PreferredSUOrder first, then SG rank order for
// anything PreferredSUOrder didn't name.
func nWayCandidates(ctx *Context, sg *model.ServiceGroup, si *model.ServiceInstance) []*model.ServiceUnit {
	seen := make(map[model.SUName]bool)
	var out []*model.ServiceUnit
	for _, name := range si.PreferredSUOrder {
		su, ok := ctx.SUs[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		if su.SG == sg.Name {
			out = append(out, su)
		}
	}
	for _, su := range orchestrator.RankedSUs(sg.Name, ctx.SUs) {
		if !seen[su.Name] {
			seen[su.Name] = true
			out = append(out, su)
		}
	}
	return out
}

// assignNWay implements the N-Way chooser: each SI picks
// one ACTIVE SU and up to PrefStandbySUs STANDBY SUs from its own candidate
// order, independent of every other SI's placement — unlike 2N/N+M there is
// no SG-wide active/standby pool split.
func assignNWay(ctx *Context, sg *model.ServiceGroup) {
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

		candidates := nWayCandidates(ctx, sg, si)
		already := make(map[model.SUName]bool, len(si.SISUs))
		for su := range si.SISUs {
			already[su] = true
		}

		if si.Assignment == model.SIUnassigned {
			for _, su := range candidates {
				if already[su.Name] || !su.Eligible() || !su.HasCapacity(model.HAActive) {
					continue
				}
				ctx.assign(sg, orchestrator.Assignment{SU: su.Name, SI: si.Name, HA: model.HAActive})
				already[su.Name] = true
				si.Assignment = model.SIPartiallyAssigned
				si.DepState = model.DepSatisfied
				break
			}
		}

		standbyCount := 0
		for su := range si.SISUs {
			if si.SISUs[su].HA == model.HAStandby {
				standbyCount++
			}
		}
		want := sg.PrefStandbySUs
		if want == 0 {
			want = 1
		}
		for _, su := range candidates {
			if standbyCount >= want {
				break
			}
			if already[su.Name] || !su.Eligible() || !su.HasCapacity(model.HAStandby) {
				continue
			}
			ctx.assign(sg, orchestrator.Assignment{SU: su.Name, SI: si.Name, HA: model.HAStandby})
			already[su.Name] = true
			standbyCount++
		}
		if standbyCount >= want {
			si.Assignment = model.SIFullyAssigned
		}
	}
}

// standbiesEngagedNWay reports whether si already has at least one STANDBY
// binding, the condition `ARE_STDBY_SUS_ENGAGED` gates promotion on: a fresh
// assignment is only tried from scratch when no standby exists to promote.
func standbiesEngagedNWay(si *model.ServiceInstance) bool {
	for _, susi := range si.SISUs {
		if susi.HA == model.HAStandby {
			return true
		}
	}
	return false
}

// faultSUNWay handles SU_FAULT for an N-Way SU: every SI it
// held ACTIVE is quiesced; SIs it held STANDBY are dropped directly, since
// losing a standby carries no failover obligation.
func faultSUNWay(ctx *Context, sg *model.ServiceGroup, su *model.ServiceUnit) {
	var quiescing, dropping []model.SIName
	for si, susi := range su.SUSIs {
		if susi.HA == model.HAActive {
			quiescing = append(quiescing, si)
		} else {
			dropping = append(dropping, si)
		}
	}
	if len(quiescing) > 0 {
		ctx.modifyAll(sg, su.Name, model.HAQuiescing)
		sg.FSMState = model.SGSUOper
	}
	for _, si := range dropping {
		ctx.deleteSUSI(sg, su.Name, si)
	}
}

// continueAfterQuiesceNWay promotes, per SI held by the quiesced SU, the
// best-ranked existing STANDBY to ACTIVE via findPrefStandbyNWay, falling
// back to a fresh assignment if none is engaged, then tears down the
// faulted SU's bindings. A SI whose sponsor is itself mid-failover is
// deferred to DepBlocked instead, per promoteIfFailoverPossible.
func continueAfterQuiesceNWay(ctx *Context, sg *model.ServiceGroup, quiescedSU *model.ServiceUnit) {
	blocked := ctx.failingOverSIs(sg)
	for si := range quiescedSU.SUSIs {
		siObj, ok := ctx.SIs[si]
		if !ok {
			continue
		}
		if standbiesEngagedNWay(siObj) {
			if su := findPrefStandbyNWay(ctx, sg, siObj, quiescedSU.Name); su != "" {
				ctx.promoteIfFailoverPossible(sg, su, siObj, blocked)
			}
		} else {
			siObj.Assignment = model.SIUnassigned
			ctx.tryAssignActiveIfFailoverPossible(sg, siObj, blocked)
		}
	}
	ctx.deleteAll(sg, quiescedSU.Name)
}

// findPrefStandbyNWay picks the engaged STANDBY SU for si that ranks
// highest in si's candidate order, excluding exclude (the SU being retired).
func findPrefStandbyNWay(ctx *Context, sg *model.ServiceGroup, si *model.ServiceInstance, exclude model.SUName) model.SUName {
	for _, su := range nWayCandidates(ctx, sg, si) {
		if su.Name == exclude {
			continue
		}
		if susi, ok := si.SISUs[su.Name]; ok && susi.HA == model.HAStandby {
			return su.Name
		}
	}
	return ""
}
