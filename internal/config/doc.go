// Package config provides configuration loading for the redundancy engine.
//
// Configuration is loaded from a single directory containing config.yaml
// (cluster topology and engine tuning) plus type-specific subdirectories for
// the four configuration object kinds the reconciler watches.
//
// # Configuration Layout
//
//	<config-dir>/config.yaml           cluster nodes, engine, metrics
//	<config-dir>/servicegroups/*.yaml
//	<config-dir>/serviceunits/*.yaml
//	<config-dir>/serviceinstances/*.yaml
//	<config-dir>/dependencyedges/*.yaml
//
// config.yaml example:
//
//	nodes:
//	  - name: node-1
//	    member: true
//	  - name: node-2
//	    member: true
//	engine:
//	  mailboxSize: 1024
//	  adminReplyTimeoutMS: 30000
//	metrics:
//	  enabled: true
//	  addr: "0.0.0.0:9090"
//
// A servicegroups/payments-sg.yaml example:
//
//	redundancyModel: 2N
//	preferredActiveSUs: 1
//	preferredStandbySUs: 1
//	autoAdjust: true
//	adminState: UNLOCKED
//
// # Entity Storage
//
// Storage provides generic YAML-based persistence for the four configuration
// object kinds, used by the filesystem change detector and by cmd/check and
// cmd/get for reading snapshots without going through the engine.
//
// # Kubernetes Mode
//
// In Kubernetes mode the same four object kinds are read from the CRDs in
// pkg/apis/redundancy/v1alpha1 instead of YAML files; config.yaml (cluster
// nodes, engine tuning) is still read from the filesystem regardless of
// watch mode, since cluster topology is not itself reconciled as a CRD.
package config
