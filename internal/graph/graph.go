// Package graph describes the audio rendering engine the keyboard drives:
// oscillator and gain nodes, an analyser, and clock-driven parameters that
// accept declarative ramp requests. Both the native engine and the browser
// backend implement these interfaces.
package graph

import "fmt"

// Waveform is an oscillator shape, named the way Web Audio names them.
type Waveform string

const (
	Sine     Waveform = "sine"
	Square   Waveform = "square"
	Sawtooth Waveform = "sawtooth"
	Triangle Waveform = "triangle"
)

// Waveforms lists the supported shapes in UI cycling order.
var Waveforms = []Waveform{Sine, Square, Sawtooth, Triangle}

func ParseWaveform(name string) (Waveform, error) {
	for _, w := range Waveforms {
		if string(w) == name {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown waveform %q (expected sine|square|sawtooth|triangle)", name)
}

// Param is a clock-driven scalar such as a gain. Schedule and Cancel never
// block; they only record automation against the engine clock.
type Param interface {
	// Value returns the parameter's value at the engine's current time.
	Value() float64
	// Cancel drops every ramp scheduled at or after at, holding the value
	// the parameter has reached at that time.
	Cancel(at float64)
	Schedule(r Ramp)
}

type Gain interface {
	Gain() Param
	Connect(dst Gain)
}

// Oscillator is a single-use tone source. Once stopped it cannot be restarted.
type Oscillator interface {
	Connect(dst Gain)
	Start(at float64)
	Stop(at float64)
}

type Analyser interface {
	// Size is the number of samples in the time-domain window.
	Size() int
	// ByteTimeDomainData copies the most recent samples as unsigned bytes
	// centred on 128.
	ByteTimeDomainData(dst []byte)
	// ByteFrequencyData copies Size()/2 magnitude bins scaled to 0..255.
	ByteFrequencyData(dst []byte)
}

// Backend is the fixed graph: voices connect to Master, which feeds the
// Analyser and then the output device.
type Backend interface {
	CurrentTime() float64
	NewOscillator(shape Waveform, freqHz float64) Oscillator
	NewGain() Gain
	Master() Gain
	Analyser() Analyser
}
