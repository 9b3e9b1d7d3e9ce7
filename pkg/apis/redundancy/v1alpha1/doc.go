// Package v1alpha1 contains API Schema definitions for the redundancy
// v1alpha1 API group: the CRD-shaped representation of service groups,
// service units, service instances, and SI-SI dependency edges used when
// the reconciler runs in Kubernetes mode.
//
// +kubebuilder:object:generate=true
// +groupName=redundancy.opensaf-sub000.io
package v1alpha1
