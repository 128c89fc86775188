package keysynth

import "github.com/cbegin/keysynth-go/internal/graph"

const (
	// NoteLevel is the sustained envelope gain of one voice.
	NoteLevel = 0.3
	// EnvelopeFloor stands in for silence; exponential ramps cannot reach 0.
	EnvelopeFloor = 0.001
	AttackTime    = 0.05
	// ReleaseTimeConstant shapes the fade after key-up.
	ReleaseTimeConstant = 0.1
	// StopDelay is how long after key-up the oscillator is stopped, long
	// enough for the release to be inaudible.
	StopDelay = 0.3
)

// Voice is one sounding note: an oscillator feeding its own envelope gain.
// Voices are single-use; a released voice is never restarted.
type Voice struct {
	osc graph.Oscillator
	env graph.Gain
}

func startVoice(b graph.Backend, shape graph.Waveform, freq, now float64) *Voice {
	osc := b.NewOscillator(shape, freq)
	env := b.NewGain()
	p := env.Gain()
	p.Schedule(graph.SetValue(EnvelopeFloor, now))
	p.Schedule(graph.ExponentialRamp(NoteLevel, now+AttackTime))
	osc.Connect(env)
	env.Connect(b.Master())
	osc.Start(now)
	return &Voice{osc: osc, env: env}
}

// release fades the envelope out from wherever the attack has got to and
// schedules the oscillator stop.
func (v *Voice) release(now float64) {
	graph.Retarget(v.env.Gain(), now, graph.TargetAt(EnvelopeFloor, now, ReleaseTimeConstant))
	v.osc.Stop(now + StopDelay)
}
