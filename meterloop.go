package keysynth

import (
	"context"
	"time"

	"github.com/cbegin/keysynth-go/internal/graph"
	"github.com/cbegin/keysynth-go/internal/limiter"
	"github.com/cbegin/keysynth-go/internal/meter"
)

// FrameInterval is the meter loop period when nothing else drives it.
const FrameInterval = time.Second / 60

// Tick runs one meter frame: measure the master bus, step the limiter, then
// update the readout and the bar.
func (k *Keyboard) Tick() meter.Reading {
	k.mu.Lock()
	defer k.mu.Unlock()

	an := k.backend.Analyser()
	if n := an.Size(); len(k.buf) != n {
		k.buf = make([]byte, n)
	}
	an.ByteTimeDomainData(k.buf)
	r := k.levels.Measure(k.buf)
	k.last = r

	level := r.Peak
	if k.detector == limiter.DetectRMS {
		level = r.Visual
	}
	master := k.backend.Master().Gain()
	wasEngaged := k.limiter.Engaged()
	d := k.limiter.Step(level, master.Value())
	if d.Action != limiter.Hold {
		now := k.backend.CurrentTime()
		graph.Retarget(master, now, graph.TargetAt(d.Target, now, d.TimeConstant))
	}
	switch {
	case d.Action == limiter.Reduce && !wasEngaged:
		k.logger.Debug("limiter engaged", "level", level, "target", d.Target)
	case d.Action == limiter.Release:
		k.logger.Debug("limiter released", "level", level)
	}

	if k.readout != nil {
		k.readout(meter.Readout(r.RMS))
	}
	meter.Render(k.surface, r.Visual)
	return r
}

// Run ticks every interval until ctx is done. Ticks that fall behind are
// dropped rather than queued.
func (k *Keyboard) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = FrameInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			k.Tick()
		}
	}
}
