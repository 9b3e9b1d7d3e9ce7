package messaging

import "github.com/mathi-naickan/opensaf-sub000/internal/model"

// OrderKind distinguishes the three operations a node agent can be asked to
// perform on a SUSI.
type OrderKind int

const (
	OrderAssign OrderKind = iota
	OrderModify
	OrderDelete
)

func (k OrderKind) String() string {
	switch k {
	case OrderAssign:
		return "ASSIGN"
	case OrderModify:
		return "MODIFY"
	case OrderDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Order is one outbound instruction to a node agent. An empty SI means "all
// SUSIs of this SU", used by MODIFY and DELETE.
type Order struct {
	Kind OrderKind
	Node model.NodeName
	SU   model.SUName
	SI   model.SIName
	HA   model.HAState
}

// ReplyResult is the outcome a node agent reports for an order.
type ReplyResult int

const (
	ReplyOK ReplyResult = iota
	ReplyFail
)

// Reply is one inbound SUSI_ASSIGN_REPLY event, always carrying the kind,
// SU, SI and HA state of the order it answers so the engine can apply it to
// the matching SUSI(s). No per-order timer is kept for it.
type Reply struct {
	Kind   OrderKind
	Node   model.NodeName
	SU     model.SUName
	SI     model.SIName
	HA     model.HAState
	Result ReplyResult
}
