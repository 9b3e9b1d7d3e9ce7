package reconciler

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mathi-naickan/opensaf-sub000/internal/config"
	"github.com/mathi-naickan/opensaf-sub000/internal/fsm"
	"github.com/mathi-naickan/opensaf-sub000/internal/metrics"
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	redundancyv1alpha1 "github.com/mathi-naickan/opensaf-sub000/pkg/apis/redundancy/v1alpha1"
)

// ServiceUnitReconciler turns ServiceUnit configuration objects into
// engine.UpsertSU calls, and drives a locked/drained unit's removal.
type ServiceUnitReconciler struct {
	storage *config.Storage
	engine  EngineClient
	metrics *metrics.Registry
}

// NewServiceUnitReconciler returns a reconciler reading ServiceUnit objects
// from storage and applying them to engine. metricsReg may be nil.
func NewServiceUnitReconciler(storage *config.Storage, engine EngineClient, metricsReg *metrics.Registry) *ServiceUnitReconciler {
	return &ServiceUnitReconciler{storage: storage, engine: engine, metrics: metricsReg}
}

func (r *ServiceUnitReconciler) GetResourceType() ResourceType {
	return ResourceTypeServiceUnit
}

func (r *ServiceUnitReconciler) Reconcile(_ context.Context, req ReconcileRequest) ReconcileResult {
	result := r.reconcile(req)
	recordOutcome(r.metrics, ResourceTypeServiceUnit, result)
	return result
}

func (r *ServiceUnitReconciler) reconcile(req ReconcileRequest) ReconcileResult {
	data, err := r.storage.Load(resourceDirMapping[ResourceTypeServiceUnit], req.Name)
	if err != nil {
		return r.reconcileDeleted(req)
	}

	var obj redundancyv1alpha1.ServiceUnit
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return ReconcileResult{Error: fmt.Errorf("parse service unit %s: %w", req.Name, err)}
	}

	su, err := toModelServiceUnit(req.Name, obj.Spec)
	if err != nil {
		return ReconcileResult{Error: fmt.Errorf("translate service unit %s: %w", req.Name, err)}
	}

	existed := r.engine.Snapshot().SUs[su.Name].SG != ""
	if err := r.engine.UpsertSU(su); err != nil {
		return ReconcileResult{Error: fmt.Errorf("upsert service unit %s: %w", req.Name, err)}
	}
	if !existed {
		r.engine.Post(fsm.Event{Kind: fsm.EvSUInService, SG: su.SG, SU: su.Name})
	}
	return ReconcileResult{}
}

// reconcileDeleted drives a deleted ServiceUnit toward removal: it fires a
// shutdown admin operation once, then requeues until the SU has no SUSIs
// left, only then removing it from the registry. SHUTTING_DOWN is not
// itself tracked here — the SU's presence or absence of SUSIs is the
// signal, matching the universal contract's own "oper list empty" test.
func (r *ServiceUnitReconciler) reconcileDeleted(req ReconcileRequest) ReconcileResult {
	snapshot := r.engine.Snapshot()
	su, ok := snapshot.SUs[model.SUName(req.Name)]
	if !ok {
		return ReconcileResult{}
	}

	if len(su.SUSIs) == 0 {
		if err := r.engine.RemoveSU(su.Name); err != nil {
			return ReconcileResult{Error: fmt.Errorf("remove service unit %s: %w", req.Name, err)}
		}
		return ReconcileResult{}
	}

	if req.Attempt <= 1 {
		r.engine.Post(fsm.Event{Kind: fsm.EvSUAdminDown, SG: su.SG, SU: su.Name, AdminOp: fsm.AdminOpShutdown})
	}
	return ReconcileResult{Requeue: true, RequeueAfter: time.Second}
}

func toModelServiceUnit(name string, spec redundancyv1alpha1.ServiceUnitSpec) (*model.ServiceUnit, error) {
	admin, err := parseAdminState(spec.AdminState)
	if err != nil {
		return nil, err
	}
	return &model.ServiceUnit{
		Name:       model.SUName(name),
		SG:         model.SGName(spec.ServiceGroup),
		Node:       model.NodeName(spec.Node),
		Rank:       spec.Rank,
		Readiness:  model.ReadinessInService,
		Admin:      admin,
		MaxActive:  spec.MaxActiveAssignments,
		MaxStandby: spec.MaxStandbyAssignments,
	}, nil
}
