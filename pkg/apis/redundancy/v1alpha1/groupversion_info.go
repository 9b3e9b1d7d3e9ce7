package v1alpha1

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/scheme"
)

// GroupVersion is the API group and version used for every type in this package.
var GroupVersion = schema.GroupVersion{Group: "redundancy.opensaf-sub000.io", Version: "v1alpha1"}

// SchemeBuilder collects the types registered by each *_types.go file's init().
var SchemeBuilder = &scheme.Builder{GroupVersion: GroupVersion}

// AddToScheme adds all registered types to a scheme.
var AddToScheme = SchemeBuilder.AddToScheme
