package fsm

import (
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/mathi-naickan/opensaf-sub000/internal/orchestrator"
)

// assign2N implements the 2N chooser: the two top-ranked
// eligible SUs split the service group, one ACTIVE for every SI, the other
// STANDBY for every SI. Unlike N+M/N-Way, the active and standby roles are
// per-SG, not per-SI, so assignment bypasses the general-purpose
// orchestrator chooser and binds both roles directly.
func assign2N(ctx *Context, sg *model.ServiceGroup) {
	var activeSU, standbySU *model.ServiceUnit
	for _, su := range orchestrator.RankedSUs(sg.Name, ctx.SUs) {
		if !su.Eligible() {
			continue
		}
		if activeSU == nil {
			activeSU = su
			continue
		}
		if standbySU == nil {
			standbySU = su
			break
		}
	}
	if activeSU == nil {
		return
	}

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
		if _, ok := si.SISUs[activeSU.Name]; !ok {
			ctx.assign(sg, orchestrator.Assignment{SU: activeSU.Name, SI: si.Name, HA: model.HAActive})
		}
		if standbySU != nil {
			if _, ok := si.SISUs[standbySU.Name]; !ok {
				ctx.assign(sg, orchestrator.Assignment{SU: standbySU.Name, SI: si.Name, HA: model.HAStandby})
			}
			si.Assignment = model.SIFullyAssigned
		} else {
			si.Assignment = model.SIPartiallyAssigned
		}
		si.DepState = model.DepSatisfied
	}
}

// standbyPeer2N returns the first-ranked SU of sg that is not su, the 2N
// model's fixed active/standby pairing. Readiness and admin state are not
// checked.
func standbyPeer2N(ctx *Context, sg *model.ServiceGroup, su model.SUName) *model.ServiceUnit {
	for _, cand := range orchestrator.RankedSUs(sg.Name, ctx.SUs) {
		if cand.Name != su {
			return cand
		}
	}
	return nil
}

// faultActive2N handles SU_FAULT on the SU currently serving ACTIVE for sg:
// quiesce every SUSI on the faulted SU and enter SU_OPER. The standby
// promotion happens once the quiesce order is acknowledged, in
// continueAfterQuiesce2N.
func faultActive2N(ctx *Context, sg *model.ServiceGroup, su *model.ServiceUnit) {
	if len(su.SUSIs) == 0 {
		return
	}
	ctx.modifyAll(sg, su.Name, model.HAQuiescing)
	sg.FSMState = model.SGSUOper
}

// continueAfterQuiesce2N runs once every SUSI on a quiesced SU has settled:
// it promotes the standby peer to ACTIVE, per SI, and tears down the
// faulted SU's bindings, completing the failover. Promotion is per SI
// rather than the single "all SUSIs of this SU" order, since a SI whose
// sponsor is itself mid-failover must be deferred (DepBlocked) rather than
// promoted alongside its peers, per promoteIfFailoverPossible.
func continueAfterQuiesce2N(ctx *Context, sg *model.ServiceGroup, quiescedSU *model.ServiceUnit) {
	peer := standbyPeer2N(ctx, sg, quiescedSU.Name)
	if peer != nil && len(peer.SUSIs) > 0 {
		blocked := ctx.failingOverSIs(sg)
		for si, susi := range peer.SUSIs {
			if susi.HA != model.HAStandby {
				continue
			}
			if siObj, ok := ctx.SIs[si]; ok {
				ctx.promoteIfFailoverPossible(sg, peer.Name, siObj, blocked)
			}
		}
	}
	ctx.deleteAll(sg, quiescedSU.Name)
}

// swap2N implements SI_SWAP for a 2N service group: quiesce the current active peer, then promote the standby
// to ACTIVE and demote the old active to STANDBY. Rejected (BAD_OPERATION)
// for any other redundancy model by the caller in admin.go.
func swap2N(ctx *Context, sg *model.ServiceGroup, invocation uint64) Result {
	var activeSU, standbySU *model.ServiceUnit
	for _, su := range orchestrator.RankedSUs(sg.Name, ctx.SUs) {
		if su.NumCurrActive > 0 && activeSU == nil {
			activeSU = su
		} else if su.NumCurrStandby > 0 && standbySU == nil {
			standbySU = su
		}
	}
	if activeSU == nil || standbySU == nil {
		return Result{Reply: &AdminReply{Invocation: invocation, Status: AdminStatusFailed}}
	}
	ctx.modifyAll(sg, activeSU.Name, model.HAQuiescing)
	activeSU.SwitchFlag = true
	standbySU.SwitchFlag = true
	sg.FSMState = model.SGSUOper
	sg.PendingAdminInvocation = invocation
	return Result{Transitioned: true}
}

// continueAfterSwapQuiesce2N completes a SI_SWAP once the quiesced (former
// active) SU's orders settle: the standby is promoted to ACTIVE and the
// former active becomes STANDBY, rather than being torn down.
func continueAfterSwapQuiesce2N(ctx *Context, sg *model.ServiceGroup, quiescedSU *model.ServiceUnit) {
	quiescedSU.SwitchFlag = false
	peer := standbyPeer2N(ctx, sg, quiescedSU.Name)
	if peer != nil {
		peer.SwitchFlag = false
		if len(peer.SUSIs) > 0 {
			ctx.modifyAll(sg, peer.Name, model.HAActive)
		}
	}
	if len(quiescedSU.SUSIs) > 0 {
		ctx.modifyAll(sg, quiescedSU.Name, model.HAStandby)
	}
}
