package reconciler

import (
	"fmt"

	"github.com/mathi-naickan/opensaf-sub000/internal/model"
)

// parseRedundancyModel maps a ServiceGroupSpec.RedundancyModel string onto
// the engine's internal enum, rejecting anything the CRD/YAML schema did
// not already constrain to 2N/NPM/NWAY.
func parseRedundancyModel(s string) (model.RedundancyModel, error) {
	switch s {
	case "2N":
		return model.TwoN, nil
	case "NPM":
		return model.NPlusM, nil
	case "NWAY":
		return model.NWay, nil
	default:
		return 0, fmt.Errorf("unknown redundancy model %q", s)
	}
}

// parseAdminState maps a Spec.AdminState string onto model.AdminState,
// defaulting to UNLOCKED for an empty field the same way the CRD's
// kubebuilder default does.
func parseAdminState(s string) (model.AdminState, error) {
	switch s {
	case "", "UNLOCKED":
		return model.AdminUnlocked, nil
	case "LOCKED":
		return model.AdminLocked, nil
	case "LOCKED_INSTANTIATION":
		return model.AdminLockedInstantiation, nil
	case "SHUTTING_DOWN":
		return model.AdminShuttingDown, nil
	default:
		return 0, fmt.Errorf("unknown admin state %q", s)
	}
}

// parseHAState maps a DependencyEdgeSpec.RequiredHA string onto
// model.HAState; only ACTIVE/STANDBY are valid sponsor requirements.
func parseHAState(s string) (model.HAState, error) {
	switch s {
	case "", "ACTIVE":
		return model.HAActive, nil
	case "STANDBY":
		return model.HAStandby, nil
	default:
		return 0, fmt.Errorf("unknown required HA state %q", s)
	}
}

func suNames(in []string) []model.SUName {
	out := make([]model.SUName, len(in))
	for i, s := range in {
		out[i] = model.SUName(s)
	}
	return out
}
