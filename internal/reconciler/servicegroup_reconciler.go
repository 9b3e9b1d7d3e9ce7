package reconciler

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mathi-naickan/opensaf-sub000/internal/config"
	"github.com/mathi-naickan/opensaf-sub000/internal/metrics"
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	redundancyv1alpha1 "github.com/mathi-naickan/opensaf-sub000/pkg/apis/redundancy/v1alpha1"
)

// ServiceGroupReconciler turns ServiceGroup configuration objects into
// engine.UpsertSG/RemoveSG calls.
type ServiceGroupReconciler struct {
	storage *config.Storage
	engine  EngineClient
	metrics *metrics.Registry
}

// NewServiceGroupReconciler returns a reconciler reading ServiceGroup
// objects from storage and applying them to engine. metricsReg may be nil.
func NewServiceGroupReconciler(storage *config.Storage, engine EngineClient, metricsReg *metrics.Registry) *ServiceGroupReconciler {
	return &ServiceGroupReconciler{storage: storage, engine: engine, metrics: metricsReg}
}

func (r *ServiceGroupReconciler) GetResourceType() ResourceType {
	return ResourceTypeServiceGroup
}

func (r *ServiceGroupReconciler) Reconcile(_ context.Context, req ReconcileRequest) ReconcileResult {
	result := r.reconcile(req)
	recordOutcome(r.metrics, ResourceTypeServiceGroup, result)
	return result
}

func (r *ServiceGroupReconciler) reconcile(req ReconcileRequest) ReconcileResult {
	data, err := r.storage.Load(resourceDirMapping[ResourceTypeServiceGroup], req.Name)
	if err != nil {
		// Not found means the object was deleted; remove it from the engine.
		if removeErr := r.engine.RemoveSG(model.SGName(req.Name)); removeErr != nil {
			return ReconcileResult{Error: fmt.Errorf("remove service group %s: %w", req.Name, removeErr)}
		}
		return ReconcileResult{}
	}

	var obj redundancyv1alpha1.ServiceGroup
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return ReconcileResult{Error: fmt.Errorf("parse service group %s: %w", req.Name, err)}
	}

	sg, err := toModelServiceGroup(req.Name, obj.Spec)
	if err != nil {
		return ReconcileResult{Error: fmt.Errorf("translate service group %s: %w", req.Name, err)}
	}

	if err := r.engine.UpsertSG(sg); err != nil {
		return ReconcileResult{Error: fmt.Errorf("upsert service group %s: %w", req.Name, err)}
	}
	return ReconcileResult{}
}

func toModelServiceGroup(name string, spec redundancyv1alpha1.ServiceGroupSpec) (*model.ServiceGroup, error) {
	redundancyModel, err := parseRedundancyModel(spec.RedundancyModel)
	if err != nil {
		return nil, err
	}
	admin, err := parseAdminState(spec.AdminState)
	if err != nil {
		return nil, err
	}
	return &model.ServiceGroup{
		Name:           model.SGName(name),
		Model:          redundancyModel,
		PrefActiveSUs:  spec.PreferredActiveSUs,
		PrefStandbySUs: spec.PreferredStandbySUs,
		AutoAdjust:     spec.AutoAdjust,
		EqualRankedSUs: spec.EqualRankedSUs,
		Admin:          admin,
		FSMState:       model.SGStable,
	}, nil
}
