package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ServiceGroupSpec defines the desired configuration of a redundancy domain.
type ServiceGroupSpec struct {
	// RedundancyModel selects which SG-FSM rule set governs this group.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:Enum=2N;NPM;NWAY
	RedundancyModel string `json:"redundancyModel" yaml:"redundancyModel"`

	// PreferredActiveSUs is the number of SUs the group tries to keep ACTIVE.
	// +kubebuilder:validation:Minimum=1
	PreferredActiveSUs int `json:"preferredActiveSUs" yaml:"preferredActiveSUs"`

	// PreferredStandbySUs is the number of SUs the group tries to keep STANDBY.
	// +kubebuilder:validation:Minimum=0
	PreferredStandbySUs int `json:"preferredStandbySUs" yaml:"preferredStandbySUs"`

	// AutoAdjust enables automatic redistribution when SU eligibility changes.
	// +kubebuilder:default=true
	AutoAdjust bool `json:"autoAdjust,omitempty" yaml:"autoAdjust,omitempty"`

	// EqualRankedSUs treats all member SUs as interchangeable for
	// redistribution purposes, skipping rank-based ordering on entry.
	EqualRankedSUs bool `json:"equalRankedSUs,omitempty" yaml:"equalRankedSUs,omitempty"`

	// AdminState is the administrative state requested for this group.
	// +kubebuilder:validation:Enum=UNLOCKED;LOCKED;LOCKED_INSTANTIATION;SHUTTING_DOWN
	// +kubebuilder:default=UNLOCKED
	AdminState string `json:"adminState,omitempty" yaml:"adminState,omitempty"`
}

// ServiceGroupStatus is the observed runtime state of a service group.
type ServiceGroupStatus struct {
	// FSMState is the current coarse-grained SG-FSM state.
	FSMState string `json:"fsmState,omitempty" yaml:"fsmState,omitempty"`

	// SUOperList names the SUs with an outstanding order against this group.
	SUOperList []string `json:"suOperList,omitempty" yaml:"suOperList,omitempty"`

	// AdminSI names the SI under an in-progress admin operation, if any.
	AdminSI string `json:"adminSI,omitempty" yaml:"adminSI,omitempty"`

	Conditions []metav1.Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=sg
// +kubebuilder:printcolumn:name="Model",type="string",JSONPath=".spec.redundancyModel"
// +kubebuilder:printcolumn:name="State",type="string",JSONPath=".status.fsmState"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// ServiceGroup is the Schema for the servicegroups API.
type ServiceGroup struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ServiceGroupSpec   `json:"spec,omitempty"`
	Status ServiceGroupStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ServiceGroupList contains a list of ServiceGroup.
type ServiceGroupList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ServiceGroup `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ServiceGroup{}, &ServiceGroupList{})
}
