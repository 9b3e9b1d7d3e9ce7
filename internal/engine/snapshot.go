package engine

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mathi-naickan/opensaf-sub000/internal/model"
)

// Snapshot is an immutable point-in-time copy of the engine's registries,
// safe to read from any goroutine without synchronization. It replaces the
// pattern of external readers reaching into the engine's live maps.
type Snapshot struct {
	// Generation identifies this particular publication. A checkpoint
	// reader compares it against the Generation of the snapshot taken
	// right before a restart to tell "stale file from a prior process"
	// apart from "file this same process just wrote".
	Generation string
	SGs        map[model.SGName]model.ServiceGroup
	SUs        map[model.SUName]model.ServiceUnit
	SIs        map[model.SIName]model.ServiceInstance
}

// snapshotHolder publishes successive Snapshot values without the engine
// loop ever taking a lock: the loop stores a fresh pointer after each
// processed event, readers load whatever is current.
type snapshotHolder struct {
	ptr atomic.Pointer[Snapshot]
}

// Snapshot returns the most recently published registry snapshot.
func (e *Engine) Snapshot() Snapshot {
	s := e.snapshot.ptr.Load()
	if s == nil {
		return Snapshot{
			SGs: map[model.SGName]model.ServiceGroup{},
			SUs: map[model.SUName]model.ServiceUnit{},
			SIs: map[model.SIName]model.ServiceInstance{},
		}
	}
	return *s
}

func (e *Engine) buildSnapshot() Snapshot {
	sgs := make(map[model.SGName]model.ServiceGroup, len(e.sgs))
	for name, sg := range e.sgs {
		cp := *sg
		cp.SUOperList = append([]model.SUName(nil), sg.SUOperList...)
		sgs[name] = cp
	}

	sus := make(map[model.SUName]model.ServiceUnit, len(e.fsmCtx.SUs))
	for name, su := range e.fsmCtx.SUs {
		cp := *su
		if su.SUSIs != nil {
			cp.SUSIs = make(map[model.SIName]*model.SUSI, len(su.SUSIs))
			for si, susi := range su.SUSIs {
				susiCopy := *susi
				cp.SUSIs[si] = &susiCopy
			}
		}
		sus[name] = cp
	}

	sis := make(map[model.SIName]model.ServiceInstance, len(e.fsmCtx.SIs))
	for name, si := range e.fsmCtx.SIs {
		cp := *si
		if si.SISUs != nil {
			cp.SISUs = make(map[model.SUName]*model.SUSI, len(si.SISUs))
			for su, susi := range si.SISUs {
				susiCopy := *susi
				cp.SISUs[su] = &susiCopy
			}
		}
		sis[name] = cp
	}

	return Snapshot{Generation: uuid.NewString(), SGs: sgs, SUs: sus, SIs: sis}
}

func (e *Engine) publishSnapshot() {
	snap := e.buildSnapshot()
	e.snapshot.ptr.Store(&snap)
}
