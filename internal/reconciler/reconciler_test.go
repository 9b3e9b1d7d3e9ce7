package reconciler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mathi-naickan/opensaf-sub000/internal/config"
	"github.com/mathi-naickan/opensaf-sub000/internal/engine"
	"github.com/mathi-naickan/opensaf-sub000/internal/fsm"
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
)

// fakeEngineClient records every call instead of driving a real event loop,
// letting these tests assert on what each reconciler would have done to the
// engine without needing Run() and a live transport.
type fakeEngineClient struct {
	sgs   map[model.SGName]*model.ServiceGroup
	sus   map[model.SUName]*model.ServiceUnit
	sis   map[model.SIName]*model.ServiceInstance
	edges []model.DependencyEdge
	posts []fsm.Event
	snap  engine.Snapshot
}

func newFakeEngineClient() *fakeEngineClient {
	return &fakeEngineClient{
		sgs: map[model.SGName]*model.ServiceGroup{},
		sus: map[model.SUName]*model.ServiceUnit{},
		sis: map[model.SIName]*model.ServiceInstance{},
		snap: engine.Snapshot{
			SGs: map[model.SGName]model.ServiceGroup{},
			SUs: map[model.SUName]model.ServiceUnit{},
			SIs: map[model.SIName]model.ServiceInstance{},
		},
	}
}

func (f *fakeEngineClient) UpsertSG(sg *model.ServiceGroup) error {
	f.sgs[sg.Name] = sg
	f.snap.SGs[sg.Name] = *sg
	return nil
}
func (f *fakeEngineClient) RemoveSG(name model.SGName) error {
	delete(f.sgs, name)
	delete(f.snap.SGs, name)
	return nil
}
func (f *fakeEngineClient) UpsertSU(su *model.ServiceUnit) error {
	f.sus[su.Name] = su
	f.snap.SUs[su.Name] = *su
	return nil
}
func (f *fakeEngineClient) RemoveSU(name model.SUName) error {
	delete(f.sus, name)
	delete(f.snap.SUs, name)
	return nil
}
func (f *fakeEngineClient) UpsertSI(si *model.ServiceInstance) error {
	f.sis[si.Name] = si
	f.snap.SIs[si.Name] = *si
	return nil
}
func (f *fakeEngineClient) RemoveSI(name model.SIName) error {
	delete(f.sis, name)
	delete(f.snap.SIs, name)
	return nil
}
func (f *fakeEngineClient) LoadDependencyEdges(edges []model.DependencyEdge) error {
	f.edges = edges
	return nil
}
func (f *fakeEngineClient) Post(ev fsm.Event) {
	f.posts = append(f.posts, ev)
}
func (f *fakeEngineClient) Snapshot() engine.Snapshot {
	return f.snap
}

func TestServiceGroupReconcilerUpsertsThenRemoves(t *testing.T) {
	storage := config.NewStorageWithPath(t.TempDir())
	eng := newFakeEngineClient()
	r := NewServiceGroupReconciler(storage, eng, nil)

	require.NoError(t, storage.Save("servicegroups", "sg-1", []byte("spec:\n  redundancyModel: 2N\n  preferredActiveSUs: 1\n  preferredStandbySUs: 1\n")))

	result := r.Reconcile(context.Background(), ReconcileRequest{Type: ResourceTypeServiceGroup, Name: "sg-1"})
	require.NoError(t, result.Error)
	require.Equal(t, model.TwoN, eng.sgs["sg-1"].Model)
	require.Equal(t, model.AdminUnlocked, eng.sgs["sg-1"].Admin)

	require.NoError(t, storage.Delete("servicegroups", "sg-1"))
	result = r.Reconcile(context.Background(), ReconcileRequest{Type: ResourceTypeServiceGroup, Name: "sg-1"})
	require.NoError(t, result.Error)
	require.NotContains(t, eng.sgs, model.SGName("sg-1"))
}

func TestServiceUnitReconcilerPostsInServiceOnCreate(t *testing.T) {
	storage := config.NewStorageWithPath(t.TempDir())
	eng := newFakeEngineClient()
	r := NewServiceUnitReconciler(storage, eng, nil)

	require.NoError(t, storage.Save("serviceunits", "su-1", []byte("spec:\n  serviceGroup: sg-1\n  node: node-1\n  rank: 0\n  maxActiveAssignments: 2\n  maxStandbyAssignments: 2\n")))

	result := r.Reconcile(context.Background(), ReconcileRequest{Type: ResourceTypeServiceUnit, Name: "su-1"})
	require.NoError(t, result.Error)
	require.Contains(t, eng.sus, model.SUName("su-1"))
	require.Len(t, eng.posts, 1)
	require.Equal(t, fsm.EvSUInService, eng.posts[0].Kind)
}

func TestServiceUnitReconcilerRequeuesUntilDrained(t *testing.T) {
	storage := config.NewStorageWithPath(t.TempDir())
	eng := newFakeEngineClient()
	r := NewServiceUnitReconciler(storage, eng, nil)

	eng.snap.SUs["su-1"] = model.ServiceUnit{
		Name: "su-1", SG: "sg-1",
		SUSIs: map[model.SIName]*model.SUSI{"si-1": {SU: "su-1", SI: "si-1"}},
	}

	result := r.Reconcile(context.Background(), ReconcileRequest{Type: ResourceTypeServiceUnit, Name: "su-1", Attempt: 1})
	require.NoError(t, result.Error)
	require.True(t, result.Requeue)
	require.Len(t, eng.posts, 1)
	require.Equal(t, fsm.EvSUAdminDown, eng.posts[0].Kind)

	// Once the unit reports no remaining SUSIs, it is actually removed.
	eng.snap.SUs["su-1"] = model.ServiceUnit{Name: "su-1", SG: "sg-1"}
	result = r.Reconcile(context.Background(), ReconcileRequest{Type: ResourceTypeServiceUnit, Name: "su-1", Attempt: 2})
	require.NoError(t, result.Error)
	require.False(t, result.Requeue)
	require.NotContains(t, eng.sus, model.SUName("su-1"))
}

func TestDependencyEdgeReconcilerLoadsFullSet(t *testing.T) {
	storage := config.NewStorageWithPath(t.TempDir())
	eng := newFakeEngineClient()
	r := NewDependencyEdgeReconciler(storage, eng, nil)

	require.NoError(t, storage.Save("dependencyedges", "edge-1", []byte(
		"spec:\n  serviceGroup: sg-1\n  sponsor: si-1\n  dependent: si-2\n  requiredHA: ACTIVE\n  toleranceMS: 2000\n")))

	result := r.Reconcile(context.Background(), ReconcileRequest{Type: ResourceTypeDependencyEdge, Name: "edge-1"})
	require.NoError(t, result.Error)
	require.Len(t, eng.edges, 1)
	require.Equal(t, model.SIName("si-1"), eng.edges[0].Sponsor)
	require.Equal(t, model.SIName("si-2"), eng.edges[0].Dependent)
	require.Equal(t, int64(2000), eng.edges[0].ToleranceMS)
}
