package reconciler

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mathi-naickan/opensaf-sub000/internal/config"
	"github.com/mathi-naickan/opensaf-sub000/internal/fsm"
	"github.com/mathi-naickan/opensaf-sub000/internal/metrics"
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	redundancyv1alpha1 "github.com/mathi-naickan/opensaf-sub000/pkg/apis/redundancy/v1alpha1"
)

// ServiceInstanceReconciler turns ServiceInstance configuration objects into
// engine.UpsertSI calls, posting SI_NEW/SI_DELETE to drive the assigner.
type ServiceInstanceReconciler struct {
	storage *config.Storage
	engine  EngineClient
	metrics *metrics.Registry
}

// NewServiceInstanceReconciler returns a reconciler reading ServiceInstance
// objects from storage and applying them to engine. metricsReg may be nil.
func NewServiceInstanceReconciler(storage *config.Storage, engine EngineClient, metricsReg *metrics.Registry) *ServiceInstanceReconciler {
	return &ServiceInstanceReconciler{storage: storage, engine: engine, metrics: metricsReg}
}

func (r *ServiceInstanceReconciler) GetResourceType() ResourceType {
	return ResourceTypeServiceInstance
}

func (r *ServiceInstanceReconciler) Reconcile(_ context.Context, req ReconcileRequest) ReconcileResult {
	result := r.reconcile(req)
	recordOutcome(r.metrics, ResourceTypeServiceInstance, result)
	return result
}

func (r *ServiceInstanceReconciler) reconcile(req ReconcileRequest) ReconcileResult {
	data, err := r.storage.Load(resourceDirMapping[ResourceTypeServiceInstance], req.Name)
	if err != nil {
		snapshot := r.engine.Snapshot()
		si, ok := snapshot.SIs[model.SIName(req.Name)]
		if !ok {
			return ReconcileResult{}
		}
		r.engine.Post(fsm.Event{Kind: fsm.EvSIDelete, SG: si.SG, SI: si.Name})
		if err := r.engine.RemoveSI(si.Name); err != nil {
			return ReconcileResult{Error: fmt.Errorf("remove service instance %s: %w", req.Name, err)}
		}
		return ReconcileResult{}
	}

	var obj redundancyv1alpha1.ServiceInstance
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return ReconcileResult{Error: fmt.Errorf("parse service instance %s: %w", req.Name, err)}
	}

	si, err := toModelServiceInstance(req.Name, obj.Spec)
	if err != nil {
		return ReconcileResult{Error: fmt.Errorf("translate service instance %s: %w", req.Name, err)}
	}

	existed := r.engine.Snapshot().SIs[si.Name].SG != ""
	if err := r.engine.UpsertSI(si); err != nil {
		return ReconcileResult{Error: fmt.Errorf("upsert service instance %s: %w", req.Name, err)}
	}
	if !existed {
		r.engine.Post(fsm.Event{Kind: fsm.EvSINew, SG: si.SG, SI: si.Name})
	}
	return ReconcileResult{}
}

func toModelServiceInstance(name string, spec redundancyv1alpha1.ServiceInstanceSpec) (*model.ServiceInstance, error) {
	admin, err := parseAdminState(spec.AdminState)
	if err != nil {
		return nil, err
	}
	return &model.ServiceInstance{
		Name:             model.SIName(name),
		SG:               model.SGName(spec.ServiceGroup),
		Rank:             spec.Rank,
		Admin:            admin,
		PreferredSUOrder: suNames(spec.PreferredSUOrder),
	}, nil
}
