package engine

import (
	"math"

	"github.com/cbegin/keysynth-go/internal/graph"
)

const twoPi = math.Pi * 2

type Oscillator struct {
	ctx     *Context
	shape   graph.Waveform
	freq    float64
	phase   float64
	startAt float64
	stopAt  float64
	started bool
	out     *Gain
}

func (o *Oscillator) Connect(dst graph.Gain) {
	g, ok := dst.(*Gain)
	if !ok {
		panic("engine: oscillator connected to a node from another backend")
	}
	o.ctx.mu.Lock()
	o.out = g
	o.ctx.mu.Unlock()
}

// Start registers the oscillator with the render loop. Calling Start twice
// is ignored.
func (o *Oscillator) Start(at float64) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	if o.started {
		return
	}
	o.started = true
	o.startAt = at
	o.ctx.sources = append(o.ctx.sources, o)
}

func (o *Oscillator) Stop(at float64) {
	o.ctx.mu.Lock()
	if at < o.stopAt {
		o.stopAt = at
	}
	o.ctx.mu.Unlock()
}

// render advances one sample. dt is the phase increment for this sample.
func (o *Oscillator) render(dt float64) float64 {
	o.phase += dt
	if o.phase >= 1 {
		o.phase -= 1
	}
	switch o.shape {
	case graph.Square:
		out := -1.0
		if o.phase < 0.5 {
			out = 1
		}
		out += polyBLEP(o.phase, dt)
		out -= polyBLEP(math.Mod(o.phase+0.5, 1), dt)
		return out
	case graph.Sawtooth:
		return 2*o.phase - 1 - polyBLEP(o.phase, dt)
	case graph.Triangle:
		switch {
		case o.phase < 0.25:
			return 4 * o.phase
		case o.phase < 0.75:
			return 2 - 4*o.phase
		default:
			return 4*o.phase - 4
		}
	default:
		return math.Sin(twoPi * o.phase)
	}
}

// polyBLEP reduces aliasing at waveform discontinuities.
// t is the phase position [0,1), dt is the phase increment per sample.
func polyBLEP(t, dt float64) float64 {
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}
