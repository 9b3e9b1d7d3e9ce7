// Package orchestrator implements the candidate-choice rules that turn an
// SG-FSM decision into concrete SU-SI assignment actions: which SU a new
// assignment binds to, how an existing assignment is modified in place, and
// how an assignment is torn down. The SG-FSM packages call into this one;
// orchestrator never calls back into fsm.
package orchestrator
