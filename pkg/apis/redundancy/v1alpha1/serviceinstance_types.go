package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ServiceInstanceSpec defines the desired configuration of a service instance.
type ServiceInstanceSpec struct {
	// ServiceGroup names the owning service group.
	// +kubebuilder:validation:Required
	ServiceGroup string `json:"serviceGroup" yaml:"serviceGroup"`

	// Rank is the fill order among the group's instances.
	Rank int `json:"rank" yaml:"rank"`

	// PreferredSUOrder optionally overrides the group's SU rank order for
	// this instance only.
	PreferredSUOrder []string `json:"preferredSUOrder,omitempty" yaml:"preferredSUOrder,omitempty"`

	// AdminState is the administrative state requested for this instance.
	// +kubebuilder:validation:Enum=UNLOCKED;LOCKED;LOCKED_INSTANTIATION;SHUTTING_DOWN
	// +kubebuilder:default=UNLOCKED
	AdminState string `json:"adminState,omitempty" yaml:"adminState,omitempty"`
}

// ServiceInstanceStatus is the observed runtime state of a service instance.
type ServiceInstanceStatus struct {
	// Assignment summarizes how much of the instance's required HA roles
	// are currently bound.
	Assignment string `json:"assignment,omitempty" yaml:"assignment,omitempty"`

	// DepState reflects the instance's standing with respect to its sponsors.
	DepState string `json:"depState,omitempty" yaml:"depState,omitempty"`

	Conditions []metav1.Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=si
// +kubebuilder:printcolumn:name="Group",type="string",JSONPath=".spec.serviceGroup"
// +kubebuilder:printcolumn:name="Assignment",type="string",JSONPath=".status.assignment"

// ServiceInstance is the Schema for the serviceinstances API.
type ServiceInstance struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ServiceInstanceSpec   `json:"spec,omitempty"`
	Status ServiceInstanceStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ServiceInstanceList contains a list of ServiceInstance.
type ServiceInstanceList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ServiceInstance `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ServiceInstance{}, &ServiceInstanceList{})
}
