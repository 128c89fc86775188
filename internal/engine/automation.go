package engine

import (
	"math"
	"sort"

	"github.com/cbegin/keysynth-go/internal/graph"
)

// automation is the event timeline behind a native Param. It is not
// goroutine safe; the owning Context serializes access.
type automation struct {
	initial float64
	events  []graph.Ramp // sorted by At, insertion order kept for ties
}

func newAutomation(initial float64) *automation {
	return &automation{initial: initial}
}

func (a *automation) schedule(r graph.Ramp) {
	i := sort.Search(len(a.events), func(i int) bool { return a.events[i].At > r.At })
	a.events = append(a.events, graph.Ramp{})
	copy(a.events[i+1:], a.events[i:])
	a.events[i] = r
}

// scheduleAt inserts r as seen at time now. An exponential ramp that
// follows a running target starts from the value the target has reached at
// now; one that follows a target still in the future replaces it.
func (a *automation) scheduleAt(r graph.Ramp, now float64) {
	if r.Shape == graph.ShapeExponential && now < r.At {
		i := sort.Search(len(a.events), func(i int) bool { return a.events[i].At > r.At })
		if i > 0 {
			if prev := a.events[i-1]; prev.Shape == graph.ShapeTarget && prev.At < now {
				a.schedule(graph.SetValue(a.valueAt(now), now))
			}
		}
	}
	a.schedule(r)
}

// cancel removes events at or after at and holds the value reached there.
func (a *automation) cancel(at float64) {
	hold := a.valueAt(at)
	i := sort.Search(len(a.events), func(i int) bool { return a.events[i].At >= at })
	a.events = append(a.events[:i], graph.SetValue(hold, at))
}

// prune drops events that can no longer affect values at or after t. A set
// event fully determines everything that follows it.
func (a *automation) prune(t float64) {
	last := -1
	for i, e := range a.events {
		if e.At > t {
			break
		}
		if e.Shape == graph.ShapeSet {
			last = i
		}
	}
	if last <= 0 {
		return
	}
	a.initial = a.events[last].Value
	a.events = append(a.events[:0], a.events[last:]...)
}

func (a *automation) valueAt(t float64) float64 {
	v, vt := a.initial, 0.0
	for i, e := range a.events {
		if e.At > t {
			if e.Shape == graph.ShapeExponential {
				return expInterp(v, vt, e.Value, e.At, t)
			}
			return v
		}
		switch e.Shape {
		case graph.ShapeTarget:
			end := t
			if i+1 < len(a.events) {
				next := a.events[i+1]
				if next.Shape == graph.ShapeExponential {
					// A ramp after a target that had not started replaces it.
					vt = e.At
					continue
				}
				if next.At < end {
					end = next.At
				}
			}
			v = approach(v, e.Value, end-e.At, e.TimeConstant)
			vt = end
		default:
			v, vt = e.Value, e.At
		}
	}
	return v
}

func expInterp(v0, t0, v1, t1, t float64) float64 {
	if t1 <= t0 || v0 == 0 || (v0 > 0) != (v1 > 0) {
		return v0
	}
	return v0 * math.Pow(v1/v0, (t-t0)/(t1-t0))
}

func approach(from, target, dt, timeConstant float64) float64 {
	if timeConstant <= 0 {
		return target
	}
	return target + (from-target)*math.Exp(-dt/timeConstant)
}
