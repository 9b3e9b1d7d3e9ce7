package fsm

import (
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/mathi-naickan/opensaf-sub000/pkg/logging"
)

// suFault handles SU_FAULT by delegating to the redundancy model's
// fault-handling chooser, which quiesces the
// faulted SU's bindings and enters SU_OPER.
func suFault(ctx *Context, sg *model.ServiceGroup, ev Event) Result {
	su, ok := ctx.SUs[ev.SU]
	if !ok {
		return Result{}
	}
	before := sg.FSMState
	switch sg.Model {
	case model.TwoN:
		faultActive2N(ctx, sg, su)
	case model.NPlusM:
		faultActiveNPlusM(ctx, sg, su)
	case model.NWay:
		faultSUNWay(ctx, sg, su)
	}
	return Result{Transitioned: sg.FSMState != before}
}

// susiSuccess applies an acknowledged order to the SUSI sub-machine and, once
// an SU's orders all settle, runs the per-model continuation (standby
// promotion after a fault quiesce, or the second half of a SI_SWAP) before
// checking whether the whole SG has returned to STABLE.
func susiSuccess(ctx *Context, sg *model.ServiceGroup, ev Event) Result {
	su, ok := ctx.SUs[ev.SU]
	if !ok {
		return Result{}
	}
	quiesceAck := ev.Op == OpModify && (ev.HA == model.HAQuiesced || ev.HA == model.HAQuiescing)
	adminSIQuiesce := quiesceAck && sg.AdminSI != nil && *sg.AdminSI == ev.SI
	ctx.applySUSISuccess(ev.SU, ev.SI, ev.Op, ev.HA)
	ctx.settleOperList(sg, ev.SU)

	if ev.Op == OpDelete {
		if si, ok := ctx.SIs[ev.SI]; ok && !siHasActive(si) {
			ctx.sponsorLost(sg, ev.SI, defaultToleranceMS)
		}
	}

	if ev.Op == OpModify && ev.HA == model.HAActive {
		if si, ok := ctx.SIs[ev.SI]; ok && si.DepState == model.DepFailoverInProgress {
			si.DepState = model.DepSatisfied
			ctx.retryCascadedDependents(sg, ev.SI)
		}
	}

	if adminSIQuiesce {
		// The quiesced binding was one ACTIVE SUSI of a SI under admin LOCK,
		// not a whole-SU fault: complete it alone rather than running any
		// per-model SU continuation.
		ctx.deleteSUSI(sg, ev.SU, ev.SI)
	} else if quiesceAck && suTerminal(su) {
		switch {
		case su.SwitchFlag:
			continueAfterSwapQuiesce2N(ctx, sg, su)
		case sg.Model == model.NPlusM && sg.Redistribution != nil && sg.Redistribution.OldActive == su.Name:
			// A redistribution quiesce only staged one SI on su, not every
			// SUSI it holds; route it to the single-SI completion instead of
			// the whole-SU fault continuation.
			continueAfterRedistributeNPlusM(ctx, sg, su)
		default:
			switch sg.Model {
			case model.TwoN:
				continueAfterQuiesce2N(ctx, sg, su)
			case model.NPlusM:
				continueAfterQuiesceNPlusM(ctx, sg, su)
			case model.NWay:
				continueAfterQuiesceNWay(ctx, sg, su)
			}
		}
	}

	if !sg.OperListEmpty() {
		return Result{}
	}

	if sg.PendingAdminInvocation != 0 {
		inv := sg.PendingAdminInvocation
		sg.PendingAdminInvocation = 0
		sg.FSMState = model.SGStable
		sg.Redistribution = nil
		ctx.runDependentPromotions(sg)
		return Result{Transitioned: true, Reply: &AdminReply{Invocation: inv, Status: AdminStatusOK}}
	}
	if sg.AdminSI != nil {
		return Result{}
	}
	if ctx.becomeStable(sg) {
		if sg.Model == model.NPlusM {
			redistributeNPlusM(ctx, sg)
		}
		return Result{Transitioned: true}
	}
	return Result{}
}

// siHasActive reports whether si currently has an ACTIVE binding, used to
// decide whether losing one of its SUSIs should trigger sponsorLost for its
// dependents.
func siHasActive(si *model.ServiceInstance) bool {
	for _, susi := range si.SISUs {
		if susi.HA == model.HAActive {
			return true
		}
	}
	return false
}

// susiFail logs a rejected order and handles it as an SU_FAULT on ev.SU:
// the order is not retried, the SU's bindings are quiesced through the
// per-model fault path instead.
func susiFail(ctx *Context, sg *model.ServiceGroup, ev Event) Result {
	logging.Error(subsystem, nil, "sg=%s su=%s si=%s op=%d rejected by node agent", sg.Name, ev.SU, ev.SI, ev.Op)
	return suFault(ctx, sg, ev)
}
