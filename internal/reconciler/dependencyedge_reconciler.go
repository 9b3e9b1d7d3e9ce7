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

// DependencyEdgeReconciler replaces the engine's whole SI-SI dependency
// graph whenever any one edge changes. LoadDependencyEdges takes the full
// edge set rather than a single edge, so reconciling one edge means
// re-reading every edge on disk and loading the set as a unit.
type DependencyEdgeReconciler struct {
	storage *config.Storage
	engine  EngineClient
	metrics *metrics.Registry
}

// NewDependencyEdgeReconciler returns a reconciler reading DependencyEdge
// objects from storage and applying the full set to engine. metricsReg may
// be nil.
func NewDependencyEdgeReconciler(storage *config.Storage, engine EngineClient, metricsReg *metrics.Registry) *DependencyEdgeReconciler {
	return &DependencyEdgeReconciler{storage: storage, engine: engine, metrics: metricsReg}
}

func (r *DependencyEdgeReconciler) GetResourceType() ResourceType {
	return ResourceTypeDependencyEdge
}

func (r *DependencyEdgeReconciler) Reconcile(_ context.Context, req ReconcileRequest) ReconcileResult {
	result := r.reconcile(req)
	recordOutcome(r.metrics, ResourceTypeDependencyEdge, result)
	return result
}

func (r *DependencyEdgeReconciler) reconcile(req ReconcileRequest) ReconcileResult {
	names, err := r.storage.List(resourceDirMapping[ResourceTypeDependencyEdge])
	if err != nil {
		return ReconcileResult{Error: fmt.Errorf("list dependency edges: %w", err)}
	}

	edges := make([]model.DependencyEdge, 0, len(names))
	for _, name := range names {
		data, err := r.storage.Load(resourceDirMapping[ResourceTypeDependencyEdge], name)
		if err != nil {
			return ReconcileResult{Error: fmt.Errorf("load dependency edge %s: %w", name, err)}
		}
		var obj redundancyv1alpha1.DependencyEdge
		if err := yaml.Unmarshal(data, &obj); err != nil {
			return ReconcileResult{Error: fmt.Errorf("parse dependency edge %s: %w", name, err)}
		}
		edge, err := toModelDependencyEdge(obj.Spec)
		if err != nil {
			return ReconcileResult{Error: fmt.Errorf("translate dependency edge %s: %w", name, err)}
		}
		edges = append(edges, edge)
	}

	if err := r.engine.LoadDependencyEdges(edges); err != nil {
		return ReconcileResult{Error: fmt.Errorf("load dependency edges after change to %s: %w", req.Name, err)}
	}
	return ReconcileResult{}
}

func toModelDependencyEdge(spec redundancyv1alpha1.DependencyEdgeSpec) (model.DependencyEdge, error) {
	requiredHA, err := parseHAState(spec.RequiredHA)
	if err != nil {
		return model.DependencyEdge{}, err
	}
	return model.DependencyEdge{
		Sponsor:     model.SIName(spec.Sponsor),
		Dependent:   model.SIName(spec.Dependent),
		RequiredHA:  requiredHA,
		ToleranceMS: spec.ToleranceMS,
	}, nil
}
