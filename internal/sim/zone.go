package sim

import "math"

// Classify places (fxi, delta) into a stability zone. It depends on its
// arguments only.
//
// Both range ends are inclusive: fxi == FXIMin or fxi == FXIMax and
// |delta| == DeltaMax are nominal.
func Classify(fxi, delta float64, th Thresholds) Zone {
	if _, breached := DetectBreach(fxi, delta, th); breached {
		return ZoneBreach
	}

	w := th.Zones.WatchRatio
	if math.Abs(delta) > w*th.DeltaMax {
		return ZoneWatch
	}
	if fxi > Equilibrium && fxi-Equilibrium > w*(th.FXIMax-Equilibrium) {
		return ZoneWatch
	}
	if fxi < Equilibrium && Equilibrium-fxi > w*(Equilibrium-th.FXIMin) {
		return ZoneWatch
	}
	return ZoneStable
}

// DetectBreach reports which threshold (fxi, delta) crosses. Delta is
// checked before fxi, so a step crossing both reports BreachDeltaExceeded.
// NaN values always breach.
func DetectBreach(fxi, delta float64, th Thresholds) (BreachType, bool) {
	if math.IsNaN(delta) || math.Abs(delta) > th.DeltaMax {
		return BreachDeltaExceeded, true
	}
	if math.IsNaN(fxi) || fxi < th.FXIMin || fxi > th.FXIMax {
		return BreachFXIOutOfRange, true
	}
	return BreachNone, false
}
