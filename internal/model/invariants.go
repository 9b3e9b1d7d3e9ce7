package model

import "fmt"

// CheckInvariants verifies the cross-cutting properties that must hold for
// every reachable configuration of a service group: an SU is never assigned
// beyond its capacity, an SI never holds two ACTIVE SUSIs, and the SUSI
// index held by the SU and by the SI agree.
func CheckInvariants(sg *ServiceGroup, sus map[SUName]*ServiceUnit, sis map[SIName]*ServiceInstance) error {
	for suName, su := range sus {
		if su.SG != sg.Name {
			continue
		}
		var active, standby int
		for siName, susi := range su.SUSIs {
			si, ok := sis[siName]
			if !ok {
				return fmt.Errorf("su %q references unknown si %q", suName, siName)
			}
			peer, ok := si.SISUs[suName]
			if !ok || peer.HA != susi.HA || peer.FSM != susi.FSM {
				return fmt.Errorf("susi index mismatch for su %q si %q", suName, siName)
			}
			switch susi.HA {
			case HAActive:
				active++
			case HAStandby, HAQuiescing, HAQuiesced:
				standby++
			}
		}
		if active > su.MaxActive {
			return fmt.Errorf("su %q exceeds active capacity: %d > %d", suName, active, su.MaxActive)
		}
		if standby > su.MaxStandby {
			return fmt.Errorf("su %q exceeds standby capacity: %d > %d", suName, standby, su.MaxStandby)
		}
	}

	for siName, si := range sis {
		if si.SG != sg.Name {
			continue
		}
		activeCount := 0
		for _, susi := range si.SISUs {
			if susi.HA == HAActive {
				activeCount++
			}
		}
		if activeCount > 1 {
			return fmt.Errorf("si %q has %d active assignments, redundancy model %s allows at most 1", siName, activeCount, sg.Model)
		}
	}
	return nil
}

// IsStable reports whether sg has no in-flight SUSI and an empty oper list,
// the precondition for accepting a new administrative or fault event.
func IsStable(sg *ServiceGroup, sus map[SUName]*ServiceUnit) bool {
	if sg.FSMState != SGStable {
		return false
	}
	if !sg.OperListEmpty() {
		return false
	}
	for _, su := range sus {
		if su.SG != sg.Name {
			continue
		}
		for _, susi := range su.SUSIs {
			if susi.FSM != SUSIAssigned && susi.FSM != SUSIUnassigned {
				return false
			}
		}
	}
	return true
}
