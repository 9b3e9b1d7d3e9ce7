package fsm

import (
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
)

// siSwap implements SI_SWAP. It is only
// meaningful for 2N, where "swap" means exchanging the SG-wide active and
// standby SU roles; N+M and N-Way reject it with BAD_OPERATION since there
// is no single pair of SUs to exchange.
func siSwap(ctx *Context, sg *model.ServiceGroup, ev Event) Result {
	if sg.Model != model.TwoN {
		return Result{Reply: &AdminReply{Invocation: ev.Invocation, Status: AdminStatusBadOperation}}
	}
	return swap2N(ctx, sg, ev.Invocation)
}

// suAdminDown applies a LOCK/SHUTDOWN/UNLOCK administrative operation to a
// single SU. LOCK and SHUTDOWN quiesce the SU's
// bindings through the same per-model fault path a SU_FAULT would use;
// UNLOCK re-runs the assigner so the SU can pick up new work.
func suAdminDown(ctx *Context, sg *model.ServiceGroup, ev Event) Result {
	su, ok := ctx.SUs[ev.SU]
	if !ok {
		return Result{Reply: &AdminReply{Invocation: ev.Invocation, Status: AdminStatusFailed}}
	}

	switch ev.AdminOp {
	case AdminOpUnlock:
		su.Admin = model.AdminUnlocked
		assignAllForModel(ctx, sg)
		if !sg.OperListEmpty() {
			sg.FSMState = model.SGRealign
		}
		return Result{Transitioned: true, Reply: &AdminReply{Invocation: ev.Invocation, Status: AdminStatusOK}}
	case AdminOpLock:
		su.Admin = model.AdminLocked
	case AdminOpShutdown:
		su.Admin = model.AdminShuttingDown
	default:
		return Result{Reply: &AdminReply{Invocation: ev.Invocation, Status: AdminStatusBadOperation}}
	}

	if len(su.SUSIs) == 0 {
		return Result{Reply: &AdminReply{Invocation: ev.Invocation, Status: AdminStatusOK}}
	}
	switch sg.Model {
	case model.TwoN:
		faultActive2N(ctx, sg, su)
	case model.NPlusM:
		faultActiveNPlusM(ctx, sg, su)
	case model.NWay:
		faultSUNWay(ctx, sg, su)
	}
	sg.PendingAdminInvocation = ev.Invocation
	return Result{Transitioned: true}
}

// siAdminDown applies LOCK/UNLOCK to a single SI: its
// bindings are torn down (or, on UNLOCK, the assigner is re-run for it
// alone) and sg.AdminSI tracks the in-flight SI admin operation the
// universal STABLE-entry contract must respect. An ACTIVE binding is
// quiesced before it is deleted, the same mandatory ordering every
// SU_FAULT path uses; a STANDBY binding has no in-flight work to drain and
// is deleted directly.
func siAdminDown(ctx *Context, sg *model.ServiceGroup, ev Event) Result {
	si, ok := ctx.SIs[ev.SI]
	if !ok {
		return Result{Reply: &AdminReply{Invocation: ev.Invocation, Status: AdminStatusFailed}}
	}

	switch ev.AdminOp {
	case AdminOpUnlock:
		si.Admin = model.AdminUnlocked
		sg.AdminSI = nil
		ctx.tryAssignActive(sg, si)
		return Result{Transitioned: true, Reply: &AdminReply{Invocation: ev.Invocation, Status: AdminStatusOK}}
	case AdminOpLock:
		si.Admin = model.AdminLocked
	default:
		return Result{Reply: &AdminReply{Invocation: ev.Invocation, Status: AdminStatusBadOperation}}
	}

	name := ev.SI
	sg.AdminSI = &name
	if len(si.SISUs) == 0 {
		sg.AdminSI = nil
		return Result{Reply: &AdminReply{Invocation: ev.Invocation, Status: AdminStatusOK}}
	}
	for su, susi := range si.SISUs {
		if susi.HA == model.HAActive {
			ctx.modify(sg, su, ev.SI, model.HAQuiescing)
		} else {
			ctx.deleteSUSI(sg, su, ev.SI)
		}
	}
	si.Assignment = model.SIUnassigned
	sg.PendingAdminInvocation = ev.Invocation
	return Result{Transitioned: true}
}

// sgAdminDown applies LOCK/UNLOCK/SHUTDOWN to the whole service group:
// every in-service SU is quiesced and the SG enters SG_ADMIN until the
// operation list drains.
func sgAdminDown(ctx *Context, sg *model.ServiceGroup, ev Event) Result {
	switch ev.AdminOp {
	case AdminOpUnlock:
		sg.Admin = model.AdminUnlocked
		assignAllForModel(ctx, sg)
		if !sg.OperListEmpty() {
			sg.FSMState = model.SGRealign
		}
		return Result{Transitioned: true, Reply: &AdminReply{Invocation: ev.Invocation, Status: AdminStatusOK}}
	case AdminOpLock:
		sg.Admin = model.AdminLocked
	case AdminOpShutdown:
		sg.Admin = model.AdminShuttingDown
	default:
		return Result{Reply: &AdminReply{Invocation: ev.Invocation, Status: AdminStatusBadOperation}}
	}

	any := false
	for _, su := range ctx.SUs {
		if su.SG != sg.Name || len(su.SUSIs) == 0 {
			continue
		}
		any = true
		switch sg.Model {
		case model.TwoN:
			faultActive2N(ctx, sg, su)
		case model.NPlusM:
			faultActiveNPlusM(ctx, sg, su)
		case model.NWay:
			faultSUNWay(ctx, sg, su)
		}
	}
	if !any {
		return Result{Reply: &AdminReply{Invocation: ev.Invocation, Status: AdminStatusOK}}
	}
	sg.FSMState = model.SGAdmin
	sg.PendingAdminInvocation = ev.Invocation
	return Result{Transitioned: true}
}
