package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// DependencyEdgeSpec defines a sponsor -> dependent relationship between two
// service instances.
type DependencyEdgeSpec struct {
	// ServiceGroup names the owning service group; both sponsor and
	// dependent must belong to it.
	// +kubebuilder:validation:Required
	ServiceGroup string `json:"serviceGroup" yaml:"serviceGroup"`

	// Sponsor names the SI the dependent relies on.
	// +kubebuilder:validation:Required
	Sponsor string `json:"sponsor" yaml:"sponsor"`

	// Dependent names the SI that requires the sponsor.
	// +kubebuilder:validation:Required
	Dependent string `json:"dependent" yaml:"dependent"`

	// RequiredHA is the HA state the sponsor must reach before the
	// dependent is eligible for assignment.
	// +kubebuilder:validation:Enum=ACTIVE;STANDBY
	// +kubebuilder:default=ACTIVE
	RequiredHA string `json:"requiredHA,omitempty" yaml:"requiredHA,omitempty"`

	// ToleranceMS is how long the dependent tolerates a sponsor state
	// violation before failing over, in milliseconds.
	// +kubebuilder:validation:Minimum=0
	ToleranceMS int64 `json:"toleranceMS,omitempty" yaml:"toleranceMS,omitempty"`
}

// DependencyEdgeStatus is the observed state of a dependency edge.
type DependencyEdgeStatus struct {
	// Satisfied reports whether the sponsor currently meets RequiredHA.
	Satisfied bool `json:"satisfied,omitempty" yaml:"satisfied,omitempty"`

	Conditions []metav1.Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=dep
// +kubebuilder:printcolumn:name="Sponsor",type="string",JSONPath=".spec.sponsor"
// +kubebuilder:printcolumn:name="Dependent",type="string",JSONPath=".spec.dependent"

// DependencyEdge is the Schema for the dependencyedges API.
type DependencyEdge struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   DependencyEdgeSpec   `json:"spec,omitempty"`
	Status DependencyEdgeStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// DependencyEdgeList contains a list of DependencyEdge.
type DependencyEdgeList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []DependencyEdge `json:"items"`
}

func init() {
	SchemeBuilder.Register(&DependencyEdge{}, &DependencyEdgeList{})
}
