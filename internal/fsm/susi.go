package fsm

import (
	"github.com/mathi-naickan/opensaf-sub000/internal/messaging"
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/mathi-naickan/opensaf-sub000/internal/orchestrator"
)

// assign creates a new SUSI in ASSIGNING, indexes it on both the SU and the
// SI, appends su to sg's operation list, and sends the ASSIGN order.
func (c *Context) assign(sg *model.ServiceGroup, a orchestrator.Assignment) {
	su := c.SUs[a.SU]
	si := c.SIs[a.SI]
	susi := &model.SUSI{SU: a.SU, SI: a.SI, HA: a.HA, FSM: model.SUSIAssigning}
	if su.SUSIs == nil {
		su.SUSIs = make(map[model.SIName]*model.SUSI)
	}
	if si.SISUs == nil {
		si.SISUs = make(map[model.SUName]*model.SUSI)
	}
	su.SUSIs[a.SI] = susi
	si.SISUs[a.SU] = susi
	active, standby := haBucketDelta(a.HA)
	su.NumCurrActive += active
	su.NumCurrStandby += standby
	sg.OperListAdd(a.SU)
	c.send(messaging.OrderAssign, a.SU, a.SI, a.HA)
}

// modify transitions an existing SUSI to MODIFYING and sends the MODIFY
// order for a single (SU,SI) pair.
func (c *Context) modify(sg *model.ServiceGroup, su model.SUName, si model.SIName, ha model.HAState) {
	if susi, ok := c.SUs[su].SUSIs[si]; ok {
		susi.FSM = model.SUSIModifying
	}
	sg.OperListAdd(su)
	c.send(messaging.OrderModify, su, si, ha)
}

// modifyAll transitions every SUSI on su to MODIFYING at ha and sends one
// MODIFY order with SI left empty, the "all SUSIs of this SU" form.
func (c *Context) modifyAll(sg *model.ServiceGroup, su model.SUName, ha model.HAState) {
	for _, susi := range c.SUs[su].SUSIs {
		susi.FSM = model.SUSIModifying
	}
	sg.OperListAdd(su)
	c.send(messaging.OrderModify, su, "", ha)
}

// deleteSUSI transitions an existing SUSI to UNASSIGNING and sends DELETE
// for a single (SU,SI) pair.
func (c *Context) deleteSUSI(sg *model.ServiceGroup, su model.SUName, si model.SIName) {
	if susi, ok := c.SUs[su].SUSIs[si]; ok {
		susi.FSM = model.SUSIUnassigning
	}
	sg.OperListAdd(su)
	c.send(messaging.OrderDelete, su, si, 0)
}

// deleteAll transitions every SUSI on su to UNASSIGNING and sends one
// DELETE order with SI left empty.
func (c *Context) deleteAll(sg *model.ServiceGroup, su model.SUName) {
	for _, susi := range c.SUs[su].SUSIs {
		susi.FSM = model.SUSIUnassigning
	}
	sg.OperListAdd(su)
	c.send(messaging.OrderDelete, su, "", 0)
}

// haBucketDelta reports how an HAState counts against a SU's NumCurrActive/
// NumCurrStandby capacity counters: ACTIVE counts against the former,
// STANDBY against the latter; QUIESCING/QUIESCED are transitional states
// with no assigned capacity of either kind and count against neither.
func haBucketDelta(ha model.HAState) (active, standby int) {
	switch ha {
	case model.HAActive:
		return 1, 0
	case model.HAStandby:
		return 0, 1
	default:
		return 0, 0
	}
}

// applySUSISuccess applies an acknowledged order to the SUSI sub-machine:
// ASSIGN/MODIFY acks move the SUSI to ASSIGNED at the acked HA state; DELETE
// acks remove the SUSI entirely. NumCurrActive/NumCurrStandby are adjusted
// symmetrically off the SUSI's actual prior and target HA buckets, so a
// QUIESCING/QUIESCED intermediate state is never mistaken for STANDBY.
func (c *Context) applySUSISuccess(su model.SUName, si model.SIName, op OrderOp, ha model.HAState) {
	suObj, ok := c.SUs[su]
	if !ok {
		return
	}
	susi, ok := suObj.SUSIs[si]
	if !ok {
		return // protocol violation: log and discard, no state change
	}

	switch op {
	case OpAssign, OpModify:
		prevActive, prevStandby := haBucketDelta(susi.HA)
		nextActive, nextStandby := haBucketDelta(ha)
		suObj.NumCurrActive += nextActive - prevActive
		suObj.NumCurrStandby += nextStandby - prevStandby
		susi.HA = ha
		susi.FSM = model.SUSIAssigned
	case OpDelete:
		active, standby := haBucketDelta(susi.HA)
		suObj.NumCurrActive -= active
		suObj.NumCurrStandby -= standby
		delete(suObj.SUSIs, si)
		if siObj, ok := c.SIs[si]; ok {
			delete(siObj.SISUs, su)
		}
	}
}

// suTerminal reports whether every SUSI held by su is in a terminal fsm
// state (ASSIGNED or UNASSIGNED/absent), the condition under which the
// universal contract removes su from the operation list.
func suTerminal(su *model.ServiceUnit) bool {
	for _, susi := range su.SUSIs {
		if susi.FSM != model.SUSIAssigned && susi.FSM != model.SUSIUnassigned {
			return false
		}
	}
	return true
}

// settleOperList drops su from sg's operation list once every SUSI it holds
// has reached a terminal state.
func (c *Context) settleOperList(sg *model.ServiceGroup, su model.SUName) {
	suObj, ok := c.SUs[su]
	if !ok {
		sg.OperListDel(su)
		return
	}
	if suTerminal(suObj) {
		sg.OperListDel(su)
	}
}

// becomeStable runs the universal STABLE-entry contract:
// once suOperList is empty and adminSI is nil, enter STABLE, clear any
// staged redistribution and re-run the dependency tracker. The general
// assigner is not re-run here. Returns true if the SG reached STABLE.
func (c *Context) becomeStable(sg *model.ServiceGroup) bool {
	if !sg.OperListEmpty() || sg.AdminSI != nil {
		return false
	}
	sg.FSMState = model.SGStable
	sg.Redistribution = nil
	c.runDependentPromotions(sg)
	return true
}
