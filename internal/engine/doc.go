// Package engine runs the single-threaded event loop that owns every
// service group's state: a mailbox serializes configuration changes,
// messaging-layer replies, and timer firings into one stream of fsm.Event
// values, so internal/fsm never has to reason about concurrent access. One
// Engine is constructed per process; collaborators reach it only through
// Post and Snapshot, never by sharing its registries directly.
package engine
