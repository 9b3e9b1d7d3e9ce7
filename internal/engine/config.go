package engine

import (
	"github.com/mathi-naickan/opensaf-sub000/internal/dependency"
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
)

// run submits a configOp to the engine loop and blocks until it has been
// applied, so a reconciler calling UpsertSG/UpsertSU/... observes its effect
// as already committed to the registries when the call returns.
func (e *Engine) run(apply func(e *Engine)) error {
	done := make(chan error)
	e.configCh <- configOp{apply: apply, done: done}
	<-done
	return nil
}

// UpsertSG creates sg in the registry, or replaces its configuration fields
// in place when a group of that name already exists — its FSM state and
// in-flight operation list are left untouched.
func (e *Engine) UpsertSG(sg *model.ServiceGroup) error {
	return e.run(func(e *Engine) {
		existing, ok := e.sgs[sg.Name]
		if !ok {
			e.sgs[sg.Name] = sg
			return
		}
		existing.Model = sg.Model
		existing.PrefActiveSUs = sg.PrefActiveSUs
		existing.PrefStandbySUs = sg.PrefStandbySUs
		existing.EqualRankedSUs = sg.EqualRankedSUs
		existing.AutoAdjust = sg.AutoAdjust
	})
}

// RemoveSG deletes a service group and every SU/SI it owns from the
// registries. Callers are expected to have already drained any in-flight
// administrative operation against it.
func (e *Engine) RemoveSG(name model.SGName) error {
	return e.run(func(e *Engine) {
		delete(e.sgs, name)
		for suName, su := range e.fsmCtx.SUs {
			if su.SG == name {
				delete(e.fsmCtx.SUs, suName)
			}
		}
		for siName, si := range e.fsmCtx.SIs {
			if si.SG == name {
				delete(e.fsmCtx.SIs, siName)
			}
		}
	})
}

// UpsertSU creates or replaces su's configuration fields in the registry.
// Its current SUSI bindings and oper-list membership are preserved across
// an update so a config edit never drops in-flight assignments.
func (e *Engine) UpsertSU(su *model.ServiceUnit) error {
	return e.run(func(e *Engine) {
		if existing, ok := e.fsmCtx.SUs[su.Name]; ok {
			su.SUSIs = existing.SUSIs
			su.NumCurrActive = existing.NumCurrActive
			su.NumCurrStandby = existing.NumCurrStandby
		}
		e.fsmCtx.SUs[su.Name] = su
	})
}

// RemoveSU deletes su from the registry. The caller must have already
// driven its SUSIs to SUSIUnassigned (e.g. via an SU_ADMIN_DOWN/SHUTDOWN
// sequence) — RemoveSU does not itself quiesce anything.
func (e *Engine) RemoveSU(name model.SUName) error {
	return e.run(func(e *Engine) {
		delete(e.fsmCtx.SUs, name)
	})
}

// UpsertSI creates or replaces si's configuration fields. Its current
// assignment state and SponsorRequirement toleration bookkeeping are
// preserved across an update.
func (e *Engine) UpsertSI(si *model.ServiceInstance) error {
	return e.run(func(e *Engine) {
		if existing, ok := e.fsmCtx.SIs[si.Name]; ok {
			si.Assignment = existing.Assignment
			si.DepState = existing.DepState
			si.SISUs = existing.SISUs
		}
		e.fsmCtx.SIs[si.Name] = si
	})
}

// RemoveSI deletes si from the registry. The caller must have already
// issued an EvSIDelete through Post so the engine tears down its SUSIs
// before the configuration object disappears.
func (e *Engine) RemoveSI(name model.SIName) error {
	return e.run(func(e *Engine) {
		delete(e.fsmCtx.SIs, name)
	})
}

// LoadDependencyEdges replaces the SI-SI dependency graph wholesale. It
// rejects a graph containing a cycle, leaving the previous graph in place.
func (e *Engine) LoadDependencyEdges(edges []model.DependencyEdge) error {
	var loadErr error
	err := e.run(func(e *Engine) {
		fresh := dependency.New()
		if loadErr = fresh.Load(edges); loadErr != nil {
			return
		}
		e.fsmCtx.Deps = fresh
	})
	if err != nil {
		return err
	}
	return loadErr
}
