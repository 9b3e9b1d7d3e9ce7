package orchestrator

import "errors"

// ErrCapacityExhausted is returned by chooseSU when no eligible SU has
// spare capacity for the requested HA state.
var ErrCapacityExhausted = errors.New("no su with spare capacity")
