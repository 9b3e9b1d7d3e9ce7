package fsm

import (
	"github.com/mathi-naickan/opensaf-sub000/internal/dependency"
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
)

// liveStates builds the dependency tracker's view of every SI in sg from
// the live SUSI index, used to screen sponsor requirements before a
// dependent is promoted or newly assigned.
func (c *Context) liveStates(sg *model.ServiceGroup) map[model.SIName]dependency.SiState {
	states := make(map[model.SIName]dependency.SiState)
	for name, si := range c.SIs {
		if si.SG != sg.Name {
			continue
		}
		st := dependency.SiState{Name: name}
		for _, susi := range si.SISUs {
			if susi.HA == model.HAActive && susi.FSM == model.SUSIAssigned {
				st.HA = model.HAActive
				st.Assigned = true
			}
		}
		states[name] = st
	}
	return states
}

// runDependentPromotions re-screens every SI blocked on a sponsor and, for
// those now unblocked, either promotes an already-engaged standby or retries
// a fresh assignment, the "(i) runs the dependency tracker" step of the
// universal STABLE-entry contract. A dependent whose own sponsor is itself
// mid-failover stays blocked even once ScreenSponsorState is satisfied,
// per IsFailoverPossible.
func (c *Context) runDependentPromotions(sg *model.ServiceGroup) {
	states := c.liveStates(sg)
	blocked := c.failingOverSIs(sg)
	for name, si := range c.SIs {
		if si.SG != sg.Name || si.DepState != model.DepBlocked {
			continue
		}
		if !c.Deps.ScreenSponsorState(name, states) || !c.Deps.IsFailoverPossible(name, blocked) {
			continue
		}
		if su, ok := engagedStandbySU(si); ok {
			c.promoteIfFailoverPossible(sg, su, si, blocked)
			continue
		}
		si.DepState = model.DepSatisfied
		c.tryAssignActive(sg, si)
	}
}

// tryAssignActive attempts to give si an ACTIVE assignment if it has none,
// refusing (and recording depState=DepBlocked) when its sponsors are not
// yet satisfied, per screenSponsorState.
func (c *Context) tryAssignActive(sg *model.ServiceGroup, si *model.ServiceInstance) bool {
	if si.Assignment != model.SIUnassigned {
		return false
	}
	if len(si.Sponsors) > 0 {
		states := c.liveStates(sg)
		if !c.Deps.ScreenSponsorState(si.Name, states) {
			si.DepState = model.DepBlocked
			return false
		}
	}
	a, err := c.Orch.NewAssign(sg.Name, si.Name, model.HAActive)
	if err != nil {
		return false
	}
	c.assign(sg, a)
	si.Assignment = model.SIPartiallyAssigned
	si.DepState = model.DepSatisfied
	return true
}

// tryAssignActiveIfFailoverPossible behaves like tryAssignActive but also
// refuses (marking DepBlocked) while any of si's sponsors are themselves
// mid-failover, per IsFailoverPossible.
func (c *Context) tryAssignActiveIfFailoverPossible(sg *model.ServiceGroup, si *model.ServiceInstance, blocked map[model.SIName]bool) bool {
	if !c.Deps.IsFailoverPossible(si.Name, blocked) {
		si.DepState = model.DepBlocked
		return false
	}
	return c.tryAssignActive(sg, si)
}

// engagedStandbySU returns an SU currently holding a STANDBY binding for si,
// if one exists.
func engagedStandbySU(si *model.ServiceInstance) (model.SUName, bool) {
	for su, susi := range si.SISUs {
		if susi.HA == model.HAStandby {
			return su, true
		}
	}
	return "", false
}

// failingOverSIs returns the set of sg's SIs currently between losing their
// ACTIVE binding to a fault and that binding's replacement landing, the
// "blocked" input IsFailoverPossible screens a dependent's sponsors against.
func (c *Context) failingOverSIs(sg *model.ServiceGroup) map[model.SIName]bool {
	blocked := make(map[model.SIName]bool)
	for name, si := range c.SIs {
		if si.SG == sg.Name && si.DepState == model.DepFailoverInProgress {
			blocked[name] = true
		}
	}
	return blocked
}

// promoteIfFailoverPossible promotes su's STANDBY binding for si to ACTIVE,
// unless si has a sponsor itself mid-failover, in which case the promotion
// is deferred (DepBlocked) for the next dependency-tracker pass rather than
// sent ahead of the sponsor.
func (c *Context) promoteIfFailoverPossible(sg *model.ServiceGroup, su model.SUName, si *model.ServiceInstance, blocked map[model.SIName]bool) {
	if !c.Deps.IsFailoverPossible(si.Name, blocked) {
		si.DepState = model.DepBlocked
		return
	}
	si.DepState = model.DepFailoverInProgress
	c.modify(sg, su, si.Name, model.HAActive)
}

// retryCascadedDependents re-screens, sponsor-before-dependent, every SI
// transitively depending on sponsor once sponsor's own failover has landed:
// RoleFailoverOrder's intended use, so a multi-level dependency chain
// unblocks outward in the correct order instead of racing on map iteration
// order in the next STABLE-entry sweep.
func (c *Context) retryCascadedDependents(sg *model.ServiceGroup, sponsor model.SIName) {
	states := c.liveStates(sg)
	blocked := c.failingOverSIs(sg)
	for _, name := range c.Deps.RoleFailoverOrder(sponsor) {
		if name == sponsor {
			continue
		}
		si, ok := c.SIs[name]
		if !ok || si.SG != sg.Name || si.DepState != model.DepBlocked {
			continue
		}
		if !c.Deps.ScreenSponsorState(name, states) || !c.Deps.IsFailoverPossible(name, blocked) {
			continue
		}
		if su, ok := engagedStandbySU(si); ok {
			c.promoteIfFailoverPossible(sg, su, si, blocked)
			continue
		}
		si.DepState = model.DepSatisfied
		c.tryAssignActiveIfFailoverPossible(sg, si, blocked)
	}
}

// sponsorLost starts the toleration timer for every direct dependent of
// sponsor and marks them as tolerating the loss.
func (c *Context) sponsorLost(sg *model.ServiceGroup, sponsor model.SIName, toleranceDefaultMS int64) {
	for _, edge := range c.Deps.SponsorLost(sponsor) {
		dep, ok := c.SIs[edge.Dependent]
		if !ok || dep.SG != sg.Name {
			continue
		}
		dep.DepState = model.DepToleratingSponsorLoss
		ms := edge.ToleranceMS
		if ms <= 0 {
			ms = toleranceDefaultMS
		}
		c.Timers.Start(dependency.TimerToleration, sg.Name, edge.Dependent, msDuration(ms))
	}
}
