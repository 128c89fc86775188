//go:build js

// Package webaudio implements the graph backend on the browser's Web Audio
// API through GopherJS.
package webaudio

import (
	"errors"

	"github.com/gopherjs/gopherjs/js"

	"github.com/cbegin/keysynth-go/internal/graph"
)

// Context wraps an AudioContext with the fixed master chain
// master gain -> analyser -> destination.
type Context struct {
	ctx      *js.Object
	master   *Gain
	analyser *Analyser
}

// New creates the AudioContext. fftSize is the analyser window in samples.
func New(fftSize int) (*Context, error) {
	ctor := js.Global.Get("AudioContext")
	if ctor == nil || ctor == js.Undefined {
		ctor = js.Global.Get("webkitAudioContext")
	}
	if ctor == nil || ctor == js.Undefined {
		return nil, errors.New("web audio is not available")
	}
	ctx := ctor.New()
	an := ctx.Call("createAnalyser")
	an.Set("fftSize", fftSize)
	master := &Gain{node: ctx.Call("createGain")}
	master.node.Call("connect", an)
	an.Call("connect", ctx.Get("destination"))
	return &Context{
		ctx:      ctx,
		master:   master,
		analyser: &Analyser{node: an, buf: js.Global.Get("Uint8Array").New(fftSize)},
	}, nil
}

func (c *Context) CurrentTime() float64 { return c.ctx.Get("currentTime").Float() }

// Resume starts a context the browser created suspended; it must be called
// from a user gesture handler.
func (c *Context) Resume() {
	if c.ctx.Get("state").String() == "suspended" {
		c.ctx.Call("resume")
	}
}

func (c *Context) NewOscillator(shape graph.Waveform, freqHz float64) graph.Oscillator {
	osc := c.ctx.Call("createOscillator")
	osc.Set("type", string(shape))
	osc.Get("frequency").Set("value", freqHz)
	return &Oscillator{node: osc}
}

func (c *Context) NewGain() graph.Gain { return &Gain{node: c.ctx.Call("createGain")} }

func (c *Context) Master() graph.Gain { return c.master }

func (c *Context) Analyser() graph.Analyser { return c.analyser }

type Oscillator struct {
	node *js.Object
}

func (o *Oscillator) Connect(dst graph.Gain) { o.node.Call("connect", dst.(*Gain).node) }
func (o *Oscillator) Start(at float64)       { o.node.Call("start", at) }
func (o *Oscillator) Stop(at float64)        { o.node.Call("stop", at) }

type Gain struct {
	node *js.Object
}

func (g *Gain) Gain() graph.Param      { return &Param{p: g.node.Get("gain")} }
func (g *Gain) Connect(dst graph.Gain) { g.node.Call("connect", dst.(*Gain).node) }

// Param wraps an AudioParam.
type Param struct {
	p *js.Object
}

func (p *Param) Value() float64 { return p.p.Get("value").Float() }

// Cancel holds the value reached at at. Browsers without
// cancelAndHoldAtTime get cancelScheduledValues plus an explicit hold.
func (p *Param) Cancel(at float64) {
	if fn := p.p.Get("cancelAndHoldAtTime"); fn != nil && fn != js.Undefined {
		p.p.Call("cancelAndHoldAtTime", at)
		return
	}
	v := p.Value()
	p.p.Call("cancelScheduledValues", at)
	p.p.Call("setValueAtTime", v, at)
}

func (p *Param) Schedule(r graph.Ramp) {
	switch r.Shape {
	case graph.ShapeExponential:
		p.p.Call("exponentialRampToValueAtTime", r.Value, r.At)
	case graph.ShapeTarget:
		p.p.Call("setTargetAtTime", r.Value, r.At, r.TimeConstant)
	default:
		p.p.Call("setValueAtTime", r.Value, r.At)
	}
}

type Analyser struct {
	node *js.Object
	buf  *js.Object // Uint8Array of fftSize bytes
}

func (a *Analyser) Size() int { return a.node.Get("fftSize").Int() }

func (a *Analyser) ByteTimeDomainData(dst []byte) {
	a.node.Call("getByteTimeDomainData", a.buf)
	a.copyOut(dst, a.Size())
}

func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.node.Call("getByteFrequencyData", a.buf)
	a.copyOut(dst, a.node.Get("frequencyBinCount").Int())
}

func (a *Analyser) copyOut(dst []byte, n int) {
	n = min(n, len(dst))
	for i := 0; i < n; i++ {
		dst[i] = byte(a.buf.Index(i).Int())
	}
}
