package dependency

import (
	"time"

	"github.com/mathi-naickan/opensaf-sub000/internal/model"
)

// TimerKind distinguishes the three timer classes the dependency tracker and
// FSM rely on: toleration runs per sponsor/dependent edge while a sponsor
// recovers, awaitActive runs per SI while its first ACTIVE assignment is
// outstanding, and quiesced bounds how long an SG will wait for an
// admin-initiated swap or lock to settle.
type TimerKind int

const (
	TimerToleration TimerKind = iota
	TimerAwaitActive
	TimerQuiesced
)

// TimerFired is posted back onto the engine mailbox when a Timer callback
// elapses.
type TimerFired struct {
	Kind TimerKind
	SG   model.SGName
	SI   model.SIName
}

// Post enqueues an event; Timers only ever calls Post, never touches engine
// or model state directly, keeping every state mutation on the engine loop.
type Post func(TimerFired)

// Timers schedules and cancels the toleration/awaitActive/quiesced timers on
// behalf of the engine loop, using time.AfterFunc the way the rest of the
// runtime posts timer callbacks back onto a single dispatch loop instead of
// mutating shared state from the timer goroutine.
type Timers struct {
	post    Post
	pending map[timerKey]*time.Timer
}

type timerKey struct {
	kind TimerKind
	sg   model.SGName
	si   model.SIName
}

// NewTimers constructs a Timers service that invokes post on expiry.
func NewTimers(post Post) *Timers {
	return &Timers{
		post:    post,
		pending: make(map[timerKey]*time.Timer),
	}
}

// Start schedules (or reschedules) a timer of the given kind for sg/si.
func (t *Timers) Start(kind TimerKind, sg model.SGName, si model.SIName, d time.Duration) {
	key := timerKey{kind, sg, si}
	if existing, ok := t.pending[key]; ok {
		existing.Stop()
	}
	t.pending[key] = time.AfterFunc(d, func() {
		t.post(TimerFired{Kind: kind, SG: sg, SI: si})
	})
}

// Cancel stops a pending timer of the given kind for sg/si, if any.
func (t *Timers) Cancel(kind TimerKind, sg model.SGName, si model.SIName) {
	key := timerKey{kind, sg, si}
	if existing, ok := t.pending[key]; ok {
		existing.Stop()
		delete(t.pending, key)
	}
}

// CancelAll stops every pending timer, used on engine shutdown.
func (t *Timers) CancelAll() {
	for key, timer := range t.pending {
		timer.Stop()
		delete(t.pending, key)
	}
}
