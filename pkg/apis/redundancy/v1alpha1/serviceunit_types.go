package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ServiceUnitSpec defines the desired configuration of a service unit.
type ServiceUnitSpec struct {
	// ServiceGroup names the owning service group.
	// +kubebuilder:validation:Required
	ServiceGroup string `json:"serviceGroup" yaml:"serviceGroup"`

	// Node names the cluster node this unit is hosted on.
	// +kubebuilder:validation:Required
	Node string `json:"node" yaml:"node"`

	// Rank is the fill order among the group's units; lower ranks are
	// preferred for new assignments.
	Rank int `json:"rank" yaml:"rank"`

	// MaxActiveAssignments bounds concurrent ACTIVE SUSIs on this unit.
	// +kubebuilder:validation:Minimum=0
	MaxActiveAssignments int `json:"maxActiveAssignments" yaml:"maxActiveAssignments"`

	// MaxStandbyAssignments bounds concurrent STANDBY SUSIs on this unit.
	// +kubebuilder:validation:Minimum=0
	MaxStandbyAssignments int `json:"maxStandbyAssignments" yaml:"maxStandbyAssignments"`

	// AdminState is the administrative state requested for this unit.
	// +kubebuilder:validation:Enum=UNLOCKED;LOCKED;LOCKED_INSTANTIATION;SHUTTING_DOWN
	// +kubebuilder:default=UNLOCKED
	AdminState string `json:"adminState,omitempty" yaml:"adminState,omitempty"`
}

// ServiceUnitStatus is the observed runtime state of a service unit.
type ServiceUnitStatus struct {
	// Readiness mirrors the unit's current readiness state.
	Readiness string `json:"readiness,omitempty" yaml:"readiness,omitempty"`

	// CurrentActive is the number of ACTIVE SUSIs presently held.
	CurrentActive int `json:"currentActive,omitempty" yaml:"currentActive,omitempty"`

	// CurrentStandby is the number of STANDBY SUSIs presently held.
	CurrentStandby int `json:"currentStandby,omitempty" yaml:"currentStandby,omitempty"`

	Conditions []metav1.Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=su
// +kubebuilder:printcolumn:name="Group",type="string",JSONPath=".spec.serviceGroup"
// +kubebuilder:printcolumn:name="Node",type="string",JSONPath=".spec.node"
// +kubebuilder:printcolumn:name="Readiness",type="string",JSONPath=".status.readiness"

// ServiceUnit is the Schema for the serviceunits API.
type ServiceUnit struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ServiceUnitSpec   `json:"spec,omitempty"`
	Status ServiceUnitStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ServiceUnitList contains a list of ServiceUnit.
type ServiceUnitList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ServiceUnit `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ServiceUnit{}, &ServiceUnitList{})
}
