// Package limiter holds the master-bus gain controllers: a closed-loop
// limiter driven by the meter, and open-loop headroom compensation driven by
// polyphony.
package limiter

import (
	"fmt"
	"math"
)

// Detector selects which level the limiter reacts to.
type Detector int

const (
	// DetectPeak reacts to the buffer's maximum absolute sample.
	DetectPeak Detector = iota
	// DetectRMS reacts to the boosted RMS shown on the meter.
	DetectRMS
)

func (d Detector) String() string {
	switch d {
	case DetectPeak:
		return "peak"
	case DetectRMS:
		return "rms"
	default:
		return fmt.Sprintf("detector(%d)", int(d))
	}
}

func ParseDetector(name string) (Detector, error) {
	switch name {
	case "peak":
		return DetectPeak, nil
	case "rms":
		return DetectRMS, nil
	default:
		return 0, fmt.Errorf("invalid detector %q (expected peak|rms)", name)
	}
}

const (
	// HysteresisMargin is how far below the threshold the level must fall
	// before an engaged limiter lets go.
	HysteresisMargin = 0.05
	// ReleaseTimeConstant is the slow recovery towards unity gain.
	ReleaseTimeConstant = 0.5
	UnityGain           = 1.0

	PeakThreshold = 0.2
	PeakCeiling   = 0.4
	PeakAttack    = 0.005

	RMSThreshold = 0.5
	RMSCeiling   = 0.6
	RMSAttack    = 0.02
)

type Config struct {
	Detector  Detector
	Threshold float64
	Ceiling   float64
	// Attack is the time constant of gain reduction, in seconds.
	Attack float64
}

func DefaultConfig(d Detector) Config {
	if d == DetectRMS {
		return Config{Detector: DetectRMS, Threshold: RMSThreshold, Ceiling: RMSCeiling, Attack: RMSAttack}
	}
	return Config{Detector: DetectPeak, Threshold: PeakThreshold, Ceiling: PeakCeiling, Attack: PeakAttack}
}

type Action int

const (
	// Hold leaves whatever ramp is already running alone.
	Hold Action = iota
	// Reduce ramps the gain down to Target with the attack time constant.
	Reduce
	// Release ramps the gain back to unity with the release time constant.
	Release
)

func (a Action) String() string {
	switch a {
	case Hold:
		return "hold"
	case Reduce:
		return "reduce"
	case Release:
		return "release"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

type Decision struct {
	Action       Action
	Target       float64
	TimeConstant float64
}

// Limiter is the Relaxed/Engaged state machine. Threshold and ceiling are
// taken as given; a ceiling below the threshold is the caller's problem.
type Limiter struct {
	threshold float64
	ceiling   float64
	attack    float64
	engaged   bool
}

func New(cfg Config) *Limiter {
	return &Limiter{threshold: cfg.Threshold, ceiling: cfg.Ceiling, attack: cfg.Attack}
}

func (l *Limiter) SetThreshold(v float64) { l.threshold = v }
func (l *Limiter) SetCeiling(v float64)   { l.ceiling = v }
func (l *Limiter) Threshold() float64     { return l.threshold }
func (l *Limiter) Ceiling() float64       { return l.ceiling }
func (l *Limiter) Engaged() bool          { return l.engaged }

// Step runs one meter tick. Above the threshold the gain target is
// recomputed every tick and only ever lowered; an engaged limiter releases
// once the level drops below threshold minus the hysteresis margin.
func (l *Limiter) Step(level, currentGain float64) Decision {
	if level > l.threshold {
		l.engaged = true
		return Decision{Action: Reduce, Target: ReduceTarget(level, currentGain, l.ceiling), TimeConstant: l.attack}
	}
	if l.engaged && level < l.threshold-HysteresisMargin {
		l.engaged = false
		return Decision{Action: Release, Target: UnityGain, TimeConstant: ReleaseTimeConstant}
	}
	return Decision{Action: Hold}
}

// ReduceTarget scales currentGain by ceiling/level but never raises it.
func ReduceTarget(level, currentGain, ceiling float64) float64 {
	if level <= 0 {
		return currentGain
	}
	return math.Min(currentGain, currentGain*(ceiling/level))
}
