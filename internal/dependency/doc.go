// Package dependency tracks sponsor/dependent relationships between service
// instances within a cluster.
//
// # Core Concepts
//
// Graph: the sponsor -> dependent edge index for every SI-SI dependency
// configured in the cluster. Unlike a generic DAG, every edge also carries
// the HA state the sponsor must reach before the dependent is eligible for
// assignment, and the toleration window granted to the dependent once the
// sponsor drops below that state.
//
// # Rules
//
//  1. No circular dependencies allowed; Load rejects a cyclic edge set and
//     the caller must keep the owning service group in implicit LOCKED.
//  2. A dependent SI is not assigned until ScreenSponsorState reports all
//     of its sponsors have reached their required HA state.
//  3. When a sponsor drops out of its required HA state, SponsorLost names
//     the dependents that must start their toleration timer; if the sponsor
//     has not recovered when the timer fires, the dependent's bindings are
//     torn down and it is blocked.
//  4. RoleFailoverOrder gives the order in which a chain of dependents must
//     be quiesced: a dependent is never ordered down before its sponsor.
//
// # Thread Safety
//
// Graph is not thread-safe. The engine event loop is the only caller and
// serializes every mutation and query through its own dispatch loop.
package dependency
