package graph

import "fmt"

type Shape int

const (
	// ShapeSet jumps to Value at At.
	ShapeSet Shape = iota
	// ShapeExponential ramps exponentially from the previous event so that
	// Value is reached exactly at At.
	ShapeExponential
	// ShapeTarget starts at At and approaches Value with TimeConstant.
	ShapeTarget
)

func (s Shape) String() string {
	switch s {
	case ShapeSet:
		return "set"
	case ShapeExponential:
		return "exponential"
	case ShapeTarget:
		return "target"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// Ramp is one automation request against a Param.
type Ramp struct {
	Shape        Shape
	Value        float64
	At           float64 // seconds on the engine clock
	TimeConstant float64 // seconds, ShapeTarget only
}

func SetValue(value, at float64) Ramp {
	return Ramp{Shape: ShapeSet, Value: value, At: at}
}

func ExponentialRamp(value, end float64) Ramp {
	return Ramp{Shape: ShapeExponential, Value: value, At: end}
}

func TargetAt(value, at, timeConstant float64) Ramp {
	return Ramp{Shape: ShapeTarget, Value: value, At: at, TimeConstant: timeConstant}
}

// Retarget cancels anything pending on p from at onwards before scheduling r,
// so a newer ramp never competes with a stale one.
func Retarget(p Param, at float64, r Ramp) {
	p.Cancel(at)
	p.Schedule(r)
}
