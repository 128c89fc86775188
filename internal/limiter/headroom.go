package limiter

const (
	// SafetyMargin is added to the summed per-note level before deciding
	// whether the mix could clip.
	SafetyMargin = 0.1
	// HeadroomTimeConstant smooths headroom gain changes.
	HeadroomTimeConstant = 0.05
)

// SafeGain returns the master gain that keeps active voices of perNote
// amplitude each from summing past full scale.
func SafeGain(active int, perNote float64) float64 {
	potential := float64(active)*perNote + SafetyMargin
	if potential <= 1 {
		return UnityGain
	}
	return 1 / potential
}
