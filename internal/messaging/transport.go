package messaging

import (
	"context"

	"github.com/mathi-naickan/opensaf-sub000/internal/model"
)

// Transport is the engine's sole dependency on the node-agent messaging
// layer. Send must not block the caller on network I/O; an implementation
// queues the order and returns immediately, matching the engine's
// suspension-point rule.
type Transport interface {
	// Send enqueues order for delivery to dest. Orders to the same dest are
	// delivered in the order Send was called.
	Send(ctx context.Context, dest model.NodeName, order Order) error

	// Subscribe returns the channel replies arrive on. There is exactly one
	// subscriber: the engine's Run loop.
	Subscribe() <-chan Reply
}
