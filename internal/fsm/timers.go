package fsm

import (
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/mathi-naickan/opensaf-sub000/pkg/logging"
)

// timerFired applies the effect of an expired timer: when a toleration
// timer expires and the sponsor has still not recovered, the dependent is
// torn down and blocked rather than left waiting forever; if the sponsor has
// recovered by then, the dependent is marked satisfied and left running.
func timerFired(ctx *Context, sg *model.ServiceGroup, ev Event) Result {
	switch ev.TimerKind {
	case TimerToleration:
		si, ok := ctx.SIs[ev.SI]
		if !ok {
			return Result{}
		}
		if ctx.Deps.ScreenSponsorState(si.Name, ctx.liveStates(sg)) {
			si.DepState = model.DepSatisfied
			return Result{}
		}
		si.DepState = model.DepBlocked
		for su := range si.SISUs {
			ctx.deleteSUSI(sg, su, ev.SI)
		}
		si.Assignment = model.SIUnassigned
		if sg.FSMState == model.SGStable && !sg.OperListEmpty() {
			sg.FSMState = model.SGRealign
			return Result{Transitioned: true}
		}
		return Result{}

	default:
		logging.Warn(subsystem, "sg=%s si=%s unhandled timer kind %d", sg.Name, ev.SI, ev.TimerKind)
		return Result{}
	}
}
