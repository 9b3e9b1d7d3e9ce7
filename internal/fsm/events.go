package fsm

import "github.com/mathi-naickan/opensaf-sub000/internal/model"

// EventKind enumerates the SG-FSM's external event catalogue: messaging-layer
// replies, administrative operations, and the config-layer/fault
// notifications that drive every transition.
type EventKind int

const (
	EvSUFault EventKind = iota
	EvSUInService
	EvSINew
	EvSIDelete
	EvSUSISuccess
	EvSUSIFail
	EvNodeFail
	EvSUAdminDown
	EvSIAdminDown
	EvSGAdminDown
	EvSISwap
	EvRealign
	EvTimer
)

// AdminOp is the requested operation for SU_ADMIN/SI_ADMIN/SG_ADMIN events.
type AdminOp int

const (
	AdminOpLock AdminOp = iota
	AdminOpUnlock
	AdminOpShutdown
	AdminOpSwap   // SI_ADMIN only
	AdminOpAdjust // SG_ADMIN only
)

// Event is the single input type Dispatch accepts. Only the fields relevant
// to Kind are populated; zero values elsewhere are ignored.
type Event struct {
	Kind EventKind

	SU model.SUName
	SI model.SIName
	SG model.SGName

	// SUSI_SUCCESS / SUSI_FAIL
	Op OrderOp
	HA model.HAState

	// NODE_FAIL
	Node model.NodeName

	// *_ADMIN_DOWN / SI_SWAP
	AdminOp    AdminOp
	Invocation uint64

	// TIMER
	TimerKind TimerKind
}

// OrderOp mirrors messaging.OrderKind without importing the messaging
// package from fsm's event surface — Dispatch reports which operation a
// SUSI_SUCCESS/SUSI_FAIL answers, the engine translates it when routing
// from internal/messaging.Reply.
type OrderOp int

const (
	OpAssign OrderOp = iota
	OpModify
	OpDelete
)

// TimerKind mirrors dependency.TimerKind plus the SUSI order timeout, kept
// distinct so fsm does not need to import dependency just for this enum.
type TimerKind int

const (
	TimerAwaitActive TimerKind = iota
	TimerQuiesced
	TimerToleration
	TimerOrderTimeout
)
