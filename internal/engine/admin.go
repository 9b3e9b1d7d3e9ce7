package engine

import (
	"sync/atomic"

	"github.com/mathi-naickan/opensaf-sub000/internal/fsm"
)

// AdminReplySink receives the terminal outcome of every administrative
// invocation exactly once. Implementations
// typically forward it to whatever transport delivered the request — a CLI
// waiter, an HTTP long-poll, a gRPC stream.
type AdminReplySink interface {
	Reply(reply fsm.AdminReply)
}

// NoopAdminReplySink discards admin replies. New uses it when no
// AdminReplySink is given.
type NoopAdminReplySink struct{}

func (NoopAdminReplySink) Reply(fsm.AdminReply) {}

// ChannelAdminReplySink fans every reply out to a buffered channel, letting
// a caller block on NextInvocation()'s token until the matching reply
// arrives.
type ChannelAdminReplySink struct {
	ch chan fsm.AdminReply
}

// NewChannelAdminReplySink returns a sink backed by a channel of the given
// buffer size.
func NewChannelAdminReplySink(buffer int) *ChannelAdminReplySink {
	return &ChannelAdminReplySink{ch: make(chan fsm.AdminReply, buffer)}
}

func (s *ChannelAdminReplySink) Reply(reply fsm.AdminReply) {
	s.ch <- reply
}

// Replies returns the channel every AdminReply is published on.
func (s *ChannelAdminReplySink) Replies() <-chan fsm.AdminReply {
	return s.ch
}

// invocationAllocator hands out strictly increasing, process-unique
// invocation tokens for administrative operations; zero is
// reserved to mean "no invocation outstanding" (model.ServiceGroup's
// PendingAdminInvocation field), so allocation starts at 1.
type invocationAllocator struct {
	counter uint64
}

func newInvocationAllocator() *invocationAllocator {
	return &invocationAllocator{}
}

func (a *invocationAllocator) next() uint64 {
	return atomic.AddUint64(&a.counter, 1)
}
