package messaging

import (
	"context"
	"sync"
	"time"

	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/mathi-naickan/opensaf-sub000/pkg/logging"
)

const subsystem = "Messaging"

// nodeMailbox is one destination's ordered order queue and its dedicated
// delivery goroutine; routing orders through a per-node channel is what
// gives InProcTransport its FIFO-per-destination guarantee.
type nodeMailbox struct {
	orders chan Order
}

// InProcTransport is a channel-based Transport used by `amfd serve` and by
// tests in place of a real MDS connection. A synthetic node-agent stub acks
// ASSIGN/MODIFY/DELETE immediately unless instructed to drop or delay a
// reply, letting tests exercise lost or late replies and NODE_FAIL without
// a real cluster. A dropped order is logged, not counted as message loss.
type InProcTransport struct {
	mu      sync.Mutex
	nodes   map[model.NodeName]*nodeMailbox
	replies chan Reply
	drop    map[model.NodeName]int
	delay   map[model.NodeName]time.Duration
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewInProcTransport constructs a transport with one mailbox per node.
func NewInProcTransport(nodes []model.NodeName) *InProcTransport {
	t := &InProcTransport{
		nodes:   make(map[model.NodeName]*nodeMailbox, len(nodes)),
		replies: make(chan Reply, 256),
		drop:    make(map[model.NodeName]int),
		delay:   make(map[model.NodeName]time.Duration),
		done:    make(chan struct{}),
	}
	for _, n := range nodes {
		t.nodes[n] = &nodeMailbox{orders: make(chan Order, 256)}
	}
	return t
}

// Start launches one delivery goroutine per node mailbox. Stop must be
// called to release them.
func (t *InProcTransport) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for node, mb := range t.nodes {
		t.wg.Add(1)
		go t.deliver(node, mb)
	}
}

// Stop closes every node mailbox and waits for delivery goroutines to exit.
func (t *InProcTransport) Stop() {
	close(t.done)
	t.mu.Lock()
	for _, mb := range t.nodes {
		close(mb.orders)
	}
	t.mu.Unlock()
	t.wg.Wait()
}

// Send enqueues order for dest. The call returns as soon as the order is
// buffered; delivery and the synthetic ack happen on the node's own
// goroutine, never blocking the engine loop.
func (t *InProcTransport) Send(ctx context.Context, dest model.NodeName, order Order) error {
	t.mu.Lock()
	mb, ok := t.nodes[dest]
	t.mu.Unlock()
	if !ok {
		logging.Warn(subsystem, "send to unknown node %s dropped: %s", dest, order.Kind)
		return nil
	}
	order.Node = dest
	select {
	case mb.orders <- order:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns the channel replies are posted on.
func (t *InProcTransport) Subscribe() <-chan Reply {
	return t.replies
}

// DropNext instructs the stub to silently discard the next n orders sent to
// dest instead of acking them, simulating message loss for a test.
func (t *InProcTransport) DropNext(dest model.NodeName, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.drop[dest] = n
}

// DelayNext arms a one-shot delay applied to the ack of the next order sent
// to dest.
func (t *InProcTransport) DelayNext(dest model.NodeName, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delay[dest] = d
}

func (t *InProcTransport) deliver(node model.NodeName, mb *nodeMailbox) {
	defer t.wg.Done()
	for order := range mb.orders {
		if t.shouldDrop(node) {
			logging.Warn(subsystem, "order %s su=%s si=%s to %s dropped by test stub", order.Kind, order.SU, order.SI, node)
			continue
		}
		if d := t.takeDelay(node); d > 0 {
			select {
			case <-time.After(d):
			case <-t.done:
				return
			}
		}
		reply := Reply{Kind: order.Kind, Node: node, SU: order.SU, SI: order.SI, HA: order.HA, Result: ReplyOK}
		select {
		case t.replies <- reply:
		case <-t.done:
			return
		}
	}
}

func (t *InProcTransport) shouldDrop(node model.NodeName) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.drop[node] > 0 {
		t.drop[node]--
		return true
	}
	return false
}

func (t *InProcTransport) takeDelay(node model.NodeName) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.delay[node]
	delete(t.delay, node)
	return d
}
