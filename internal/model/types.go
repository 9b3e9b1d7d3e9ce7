// Package model defines the cluster/node/service-group/service-unit/
// service-instance data model shared by the fsm, orchestrator, dependency,
// and engine packages.
package model

import "fmt"

// NodeName identifies a cluster node that hosts service units.
type NodeName string

// SGName identifies a service group.
type SGName string

// SUName identifies a service unit.
type SUName string

// SIName identifies a service instance.
type SIName string

// AdminState is the administrative state of a node, SU, or SI.
type AdminState int

const (
	AdminUnlocked AdminState = iota
	AdminLocked
	AdminLockedInstantiation
	AdminShuttingDown
)

func (s AdminState) String() string {
	switch s {
	case AdminUnlocked:
		return "UNLOCKED"
	case AdminLocked:
		return "LOCKED"
	case AdminLockedInstantiation:
		return "LOCKED_INSTANTIATION"
	case AdminShuttingDown:
		return "SHUTTING_DOWN"
	default:
		return "UNKNOWN"
	}
}

// OperState is the operational state of a node.
type OperState int

const (
	OperEnabled OperState = iota
	OperDisabled
)

// ReadinessState tracks whether a service unit can receive new assignments.
type ReadinessState int

const (
	ReadinessOutOfService ReadinessState = iota
	ReadinessInService
	ReadinessStopping
)

// RedundancyModel selects which FSM rule set a service group uses.
type RedundancyModel int

const (
	TwoN RedundancyModel = iota
	NPlusM
	NWay
)

func (m RedundancyModel) String() string {
	switch m {
	case TwoN:
		return "2N"
	case NPlusM:
		return "NPM"
	case NWay:
		return "NWAY"
	default:
		return "UNKNOWN"
	}
}

// SGFSMState is the coarse-grained state of a service group's FSM.
type SGFSMState int

const (
	SGStable SGFSMState = iota
	SGRealign
	SGAdmin
	SGSUOper
	SGSIOper
)

func (s SGFSMState) String() string {
	switch s {
	case SGStable:
		return "STABLE"
	case SGRealign:
		return "SG_REALIGN"
	case SGAdmin:
		return "SG_ADMIN"
	case SGSUOper:
		return "SU_OPER"
	case SGSIOper:
		return "SI_OPER"
	default:
		return "UNKNOWN"
	}
}

// HAState is the high-availability role assigned to a SUSI.
type HAState int

const (
	HAActive HAState = iota
	HAStandby
	HAQuiescing
	HAQuiesced
)

func (h HAState) String() string {
	switch h {
	case HAActive:
		return "ACTIVE"
	case HAStandby:
		return "STANDBY"
	case HAQuiescing:
		return "QUIESCING"
	case HAQuiesced:
		return "QUIESCED"
	default:
		return "UNKNOWN"
	}
}

// SUSIFSMState tracks the in-flight status of one SU-SI assignment order.
type SUSIFSMState int

const (
	SUSIAssigning SUSIFSMState = iota
	SUSIAssigned
	SUSIModifying
	SUSIUnassigning
	SUSIUnassigned
)

func (s SUSIFSMState) String() string {
	switch s {
	case SUSIAssigning:
		return "ASSIGNING"
	case SUSIAssigned:
		return "ASSIGNED"
	case SUSIModifying:
		return "MODIFYING"
	case SUSIUnassigning:
		return "UNASSIGNING"
	case SUSIUnassigned:
		return "UNASSIGNED"
	default:
		return "UNKNOWN"
	}
}

// SIAssignmentState summarizes how much of an SI's required HA roles are bound.
type SIAssignmentState int

const (
	SIUnassigned SIAssignmentState = iota
	SIPartiallyAssigned
	SIFullyAssigned
)

// SIDepState tracks an SI's standing with respect to its sponsors.
type SIDepState int

const (
	DepSatisfied SIDepState = iota
	DepToleratingSponsorLoss
	DepBlocked
	// DepFailoverInProgress marks an SI between losing its ACTIVE binding to
	// a fault and that binding's replacement order being acknowledged. A
	// dependent's own promotion is deferred while any of its sponsors sit in
	// this state, so a cascaded failover never promotes a dependent ahead of
	// a sponsor still completing its own.
	DepFailoverInProgress
)

// Node is a cluster member that hosts service units.
type Node struct {
	Name    NodeName
	Admin   AdminState
	Oper    OperState
	Member  bool
}

// Cluster is the top-level configuration and runtime container.
type Cluster struct {
	Name  string
	Nodes map[NodeName]*Node
}

// RedistributionTriple names the SUs and SI of a single ACTIVE move staged
// by the N+M AutoAdjust redistribution pass; that pass sets OldActive,
// NewActive and SI and leaves Standby empty.
type RedistributionTriple struct {
	OldActive SUName
	NewActive SUName
	Standby   SUName
	SI        SIName
}

// ServiceGroup is a redundancy domain: a set of SUs providing a set of SIs.
type ServiceGroup struct {
	Name            SGName
	Model           RedundancyModel
	PrefActiveSUs   int
	PrefStandbySUs  int
	MaxActiveSIs    int
	MaxStandbySIs   int
	AutoAdjust      bool
	EqualRankedSUs  bool
	Admin           AdminState
	FSMState        SGFSMState
	SUOperList      []SUName
	AdminSI         *SIName
	Redistribution  *RedistributionTriple

	// PendingAdminInvocation is the invocation token of the administrative
	// operation currently draining the operation list, zero when none is
	// outstanding. The engine emits exactly one ADMIN_REPLY for it once the
	// operation list empties.
	PendingAdminInvocation uint64
}

// OperListAdd appends name to the SU operation list unless already present.
func (sg *ServiceGroup) OperListAdd(name SUName) {
	for _, n := range sg.SUOperList {
		if n == name {
			return
		}
	}
	sg.SUOperList = append(sg.SUOperList, name)
}

// OperListDel removes name from the SU operation list.
func (sg *ServiceGroup) OperListDel(name SUName) {
	out := sg.SUOperList[:0]
	for _, n := range sg.SUOperList {
		if n != name {
			out = append(out, n)
		}
	}
	sg.SUOperList = out
}

// OperListEmpty reports whether the SU operation list has drained.
func (sg *ServiceGroup) OperListEmpty() bool {
	return len(sg.SUOperList) == 0
}

// ServiceUnit is a deployable unit within a service group, hosted on one node.
type ServiceUnit struct {
	Name             SUName
	SG               SGName
	Node             NodeName
	Rank             int
	Readiness        ReadinessState
	Admin            AdminState
	MaxActive        int
	MaxStandby       int
	NumCurrActive    int
	NumCurrStandby   int
	SwitchFlag       bool
	SUSIs            map[SIName]*SUSI
}

// Eligible reports whether the SU may receive new assignments: readiness is
// checked ahead of admin state, since a unit can leave service before its
// admin state transition is applied.
func (su *ServiceUnit) Eligible() bool {
	if su.Readiness != ReadinessInService {
		return false
	}
	return su.Admin == AdminUnlocked
}

// HasCapacity reports whether su can take one more assignment of the given
// HA state.
func (su *ServiceUnit) HasCapacity(ha HAState) bool {
	switch ha {
	case HAActive:
		return su.NumCurrActive < su.MaxActive
	case HAStandby:
		return su.NumCurrStandby < su.MaxStandby
	default:
		return true
	}
}

// SponsorRequirement names a sponsor SI and the HA state it must reach
// before the dependent SI may be assigned.
type SponsorRequirement struct {
	Sponsor      SIName
	RequiredHA   HAState
}

// ServiceInstance is a unit of service that must be bound to SU(s) via SUSI.
type ServiceInstance struct {
	Name              SIName
	SG                SGName
	Rank              int
	Admin             AdminState
	Assignment        SIAssignmentState
	DepState          SIDepState
	CSICount          int
	Instantiated      bool
	SwitchFlag        bool
	AdminInvocation   uint64
	Sponsors          []SponsorRequirement
	PreferredSUOrder  []SUName
	SISUs             map[SUName]*SUSI
}

// SUSI is one SU-SI assignment binding.
type SUSI struct {
	SU      SUName
	SI      SIName
	HA      HAState
	FSM     SUSIFSMState
}

// DependencyEdge is a sponsor -> dependent relationship between two SIs.
type DependencyEdge struct {
	Sponsor      SIName
	Dependent    SIName
	RequiredHA   HAState
	ToleranceMS  int64
}

// ValidateAcyclic rejects a dependency graph containing a cycle with a plain
// error. It does not change the admin state of any service group.
func ValidateAcyclic(edges []DependencyEdge) error {
	adj := make(map[SIName][]SIName, len(edges))
	for _, e := range edges {
		adj[e.Sponsor] = append(adj[e.Sponsor], e.Dependent)
	}
	const (
		white = iota
		gray
		black
	)
	color := make(map[SIName]int, len(adj))
	var visit func(n SIName) error
	visit = func(n SIName) error {
		color[n] = gray
		for _, next := range adj[n] {
			switch color[next] {
			case gray:
				return fmt.Errorf("dependency cycle detected at %q", next)
			case white:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		color[n] = black
		return nil
	}
	for n := range adj {
		if color[n] == white {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}
