package engine

import "fmt"

// BadOperationError reports an administrative operation the target SG's
// redundancy model or current state cannot perform, e.g.
// SI_SWAP against an N+M or N-Way service group.
type BadOperationError struct {
	Op     string
	Reason string
}

func (e *BadOperationError) Error() string {
	return fmt.Sprintf("bad operation %s: %s", e.Op, e.Reason)
}

// ConfigurationError reports a configuration object the engine refuses to
// load: a dependency graph with a cycle, or a reference to an unknown SG/SU/SI.
type ConfigurationError struct {
	Object string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Object, e.Reason)
}

// CapacityExhaustedError reports that no eligible SU had spare capacity for
// a requested assignment; the SI is left unassigned rather
// than the engine treating this as fatal.
type CapacityExhaustedError struct {
	SI string
	HA string
}

func (e *CapacityExhaustedError) Error() string {
	return fmt.Sprintf("no capacity to assign si %s as %s", e.SI, e.HA)
}
