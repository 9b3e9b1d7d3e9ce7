package fsm

import (
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/mathi-naickan/opensaf-sub000/pkg/logging"
)

const subsystem = "FSM"

// Dispatch routes one event to the state machine for sg, mutating the SU/SI
// registries in ctx and issuing any resulting orders. It is the sole entry
// point internal/engine calls into this package.
func Dispatch(ctx *Context, sg *model.ServiceGroup, ev Event) Result {
	switch ev.Kind {
	case EvNodeFail:
		return nodeFail(ctx, sg, ev)

	case EvSUSISuccess:
		return susiSuccess(ctx, sg, ev)
	case EvSUSIFail:
		return susiFail(ctx, sg, ev)

	case EvSUFault:
		return suFault(ctx, sg, ev)
	case EvSUInService:
		return suInService(ctx, sg, ev)

	case EvSINew:
		return siNew(ctx, sg, ev)
	case EvSIDelete:
		return siDelete(ctx, sg, ev)

	case EvSISwap:
		return siSwap(ctx, sg, ev)

	case EvSUAdminDown:
		return suAdminDown(ctx, sg, ev)
	case EvSIAdminDown:
		return siAdminDown(ctx, sg, ev)
	case EvSGAdminDown:
		return sgAdminDown(ctx, sg, ev)

	case EvRealign:
		ctx.becomeStable(sg)
		return Result{}

	case EvTimer:
		return timerFired(ctx, sg, ev)

	default:
		logging.Warn(subsystem, "sg=%s unhandled event kind %d", sg.Name, ev.Kind)
		return Result{}
	}
}

// assignAllForModel chooses candidates for every unassigned SI in sg
// according to the redundancy model and issues the initial ACTIVE (and,
// where the model wants it, STANDBY) assignments. Called on STABLE +
// SI_NEW/SU_INSERVICE.
func assignAllForModel(ctx *Context, sg *model.ServiceGroup) {
	switch sg.Model {
	case model.TwoN:
		assign2N(ctx, sg)
	case model.NPlusM:
		assignNPlusM(ctx, sg)
	case model.NWay:
		assignNWay(ctx, sg)
	}
}

func siNew(ctx *Context, sg *model.ServiceGroup, ev Event) Result {
	if sg.Admin != model.AdminUnlocked {
		return Result{}
	}
	assignAllForModel(ctx, sg)
	if !sg.OperListEmpty() {
		sg.FSMState = model.SGRealign
		return Result{Transitioned: true}
	}
	return Result{}
}

func suInService(ctx *Context, sg *model.ServiceGroup, ev Event) Result {
	return siNew(ctx, sg, ev) // same "re-run the assigner" contract
}

func siDelete(ctx *Context, sg *model.ServiceGroup, ev Event) Result {
	si, ok := ctx.SIs[ev.SI]
	if !ok {
		return Result{}
	}
	for su := range si.SISUs {
		ctx.deleteSUSI(sg, su, ev.SI)
	}
	if sg.FSMState == model.SGStable && !sg.OperListEmpty() {
		sg.FSMState = model.SGRealign
		return Result{Transitioned: true}
	}
	return Result{}
}
