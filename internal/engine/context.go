// Package engine is a native audio rendering engine with the node model of
// Web Audio: oscillators feed gain nodes, gain nodes feed the master gain,
// and the master bus passes through an analyser on its way to the output.
// Parameters follow a sample-accurate automation timeline, so callers issue
// ramps and return immediately.
package engine

import (
	"errors"
	"math"
	"sync"

	"github.com/cbegin/keysynth-go/internal/graph"
)

type Option func(*config)

type config struct {
	analyserSize int
}

// WithAnalyserSize sets the analyser window in samples (power of two).
func WithAnalyserSize(size int) Option {
	return func(cfg *config) {
		cfg.analyserSize = size
	}
}

// Context owns the graph and its clock. The clock only advances as Process
// renders frames, which makes offline rendering deterministic.
type Context struct {
	mu         sync.Mutex
	sampleRate float64
	frames     int64
	sources    []*Oscillator
	master     *Gain
	analyser   *Analyser
	mix        []float64
}

func NewContext(sampleRate int, opts ...Option) (*Context, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := config{analyserSize: DefaultAnalyserSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	an, err := newAnalyser(cfg.analyserSize)
	if err != nil {
		return nil, err
	}
	c := &Context{
		sampleRate: float64(sampleRate),
		analyser:   an,
	}
	c.master = c.newGain()
	return c, nil
}

func (c *Context) SampleRate() int { return int(c.sampleRate) }

func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

func (c *Context) now() float64 {
	return float64(c.frames) / c.sampleRate
}

func (c *Context) NewOscillator(shape graph.Waveform, freqHz float64) graph.Oscillator {
	return &Oscillator{ctx: c, shape: shape, freq: freqHz, stopAt: math.Inf(1)}
}

func (c *Context) NewGain() graph.Gain { return c.newGain() }

func (c *Context) newGain() *Gain {
	return &Gain{ctx: c, param: &Param{ctx: c, auto: newAutomation(1)}}
}

func (c *Context) Master() graph.Gain { return c.master }

func (c *Context) Analyser() graph.Analyser { return c.analyser }

// ActiveSources reports oscillators that are started and not yet finished.
func (c *Context) ActiveSources() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sources)
}

// Process renders len(dst)/2 interleaved stereo frames. It satisfies the
// output stream's sample source.
func (c *Context) Process(dst []float32) {
	frames := len(dst) / 2
	if frames == 0 {
		return
	}
	c.mu.Lock()
	if cap(c.mix) < frames {
		c.mix = make([]float64, frames)
	}
	c.mix = c.mix[:frames]

	t0 := c.now()
	c.master.param.auto.prune(t0)
	for _, src := range c.sources {
		for g := src.out; g != nil && g != c.master; g = g.out {
			g.param.auto.prune(t0)
		}
	}

	for i := 0; i < frames; i++ {
		t := float64(c.frames+int64(i)) / c.sampleRate
		var sum float64
		for _, src := range c.sources {
			if t < src.startAt || t >= src.stopAt {
				continue
			}
			s := src.render(src.freq / c.sampleRate)
			g := src.out
			for g != nil && g != c.master {
				s *= g.param.auto.valueAt(t)
				g = g.out
			}
			if g == c.master {
				sum += s
			}
		}
		sum *= c.master.param.auto.valueAt(t)
		c.mix[i] = sum
		out := float32(clamp(sum, -1, 1))
		dst[2*i] = out
		dst[2*i+1] = out
	}
	c.frames += int64(frames)

	end := c.now()
	live := c.sources[:0]
	for _, src := range c.sources {
		if src.stopAt > end {
			live = append(live, src)
		}
	}
	clear(c.sources[len(live):])
	c.sources = live
	c.analyser.writeBlock(c.mix)
	c.mu.Unlock()
}
