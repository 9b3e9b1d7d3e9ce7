// Package messaging is the engine's view of the node-agent transport. The
// real inter-node messaging fabric — with its fragmentation and
// reassembly — lives outside this module entirely. This package defines the
// narrow Transport interface the engine depends on and ships one concrete,
// in-process implementation so the rest of the module is runnable without a
// real cluster.
//
// # Ordering Guarantee
//
// Transport delivers orders to a single destination node in FIFO order;
// the engine relies on this to issue MODIFY-then-DELETE for a single SUSI
// without the DELETE overtaking the MODIFY on the wire.
//
// # Fire-and-forget vs acknowledged
//
// ASSIGN/MODIFY/DELETE orders are acknowledged: the destination node agent
// eventually produces a Reply that the engine turns into SUSI_SUCCESS or
// SUSI_FAIL. Checkpoint and notification sends (internal/engine) are
// fire-and-forget and never flow through Transport.
package messaging
