package fsm

import (
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
)

// nodeFail handles NODE_FAIL once, independent of redundancy model or the
// SG's current FSM state: every SU hosted on the lost node
// is treated as if its bindings had already quiesced, since no ACK will
// ever arrive from an unreachable node agent. The per-model continuation
// functions run the same promotion logic SU_FAULT's quiesce-ack path uses.
func nodeFail(ctx *Context, sg *model.ServiceGroup, ev Event) Result {
	var affected []*model.ServiceUnit
	for _, su := range ctx.SUs {
		if su.SG == sg.Name && su.Node == ev.Node {
			affected = append(affected, su)
		}
	}
	if len(affected) == 0 {
		return Result{}
	}

	for _, su := range affected {
		su.Readiness = model.ReadinessOutOfService
		if len(su.SUSIs) == 0 {
			continue
		}
		switch sg.Model {
		case model.TwoN:
			continueAfterQuiesce2N(ctx, sg, su)
		case model.NPlusM:
			continueAfterQuiesceNPlusM(ctx, sg, su)
		case model.NWay:
			continueAfterQuiesceNWay(ctx, sg, su)
		}
		// The node is gone, so the DELETE order the continuation just issued
		// will never be acknowledged; settle the operation list directly
		// instead of waiting on settleOperList's ack-driven path.
		sg.OperListDel(su.Name)
		su.SUSIs = nil
	}

	if sg.PendingAdminInvocation != 0 && sg.OperListEmpty() {
		inv := sg.PendingAdminInvocation
		sg.PendingAdminInvocation = 0
		sg.FSMState = model.SGStable
		return Result{Transitioned: true, Reply: &AdminReply{Invocation: inv, Status: AdminStatusOK}}
	}
	if sg.AdminSI == nil && sg.OperListEmpty() {
		if ctx.becomeStable(sg) {
			return Result{Transitioned: true}
		}
	}
	return Result{Transitioned: true}
}
