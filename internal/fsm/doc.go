// Package fsm implements the per-service-group state machine: the Mealy
// machine that turns external events (faults, admin operations, topology
// changes) into assignment orders and drives a service group through
// STABLE, SG_REALIGN, SU_OPER, SI_OPER, and SG_ADMIN.
//
// Three redundancy models share the same event dispatch and SUSI
// sub-machine but differ in how they choose candidates and react to loss:
// TwoN (fsm_2n.go), NPlusM (fsm_npm.go), NWay (fsm_nway.go). NODE_FAIL
// (nodefail.go) is handled once, independently of model, since a node loss
// destroys every SU on it the same way regardless of redundancy model.
//
// Dispatch never blocks and never owns goroutines: it is called once per
// event by internal/engine's single-threaded loop and returns after
// mutating the SG/SU/SI maps in Context and issuing any orders through
// Context.Transport.
package fsm
