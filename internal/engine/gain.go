package engine

import "github.com/cbegin/keysynth-go/internal/graph"

type Gain struct {
	ctx   *Context
	param *Param
	out   *Gain
}

func (g *Gain) Gain() graph.Param { return g.param }

func (g *Gain) Connect(dst graph.Gain) {
	next, ok := dst.(*Gain)
	if !ok {
		panic("engine: gain connected to a node from another backend")
	}
	g.ctx.mu.Lock()
	g.out = next
	g.ctx.mu.Unlock()
}

// Param is a native graph.Param evaluated per sample by the render loop.
type Param struct {
	ctx  *Context
	auto *automation
}

func (p *Param) Value() float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.auto.valueAt(p.ctx.now())
}

func (p *Param) Cancel(at float64) {
	p.ctx.mu.Lock()
	p.auto.cancel(at)
	p.ctx.mu.Unlock()
}

func (p *Param) Schedule(r graph.Ramp) {
	p.ctx.mu.Lock()
	p.auto.scheduleAt(r, p.ctx.now())
	p.ctx.mu.Unlock()
}
