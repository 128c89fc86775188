// Package meter turns an analyser's byte time-domain buffer into level
// readings and draws the level bar.
package meter

import (
	"fmt"
	"math"

	timestats "github.com/cwbudde/algo-dsp/stats/time"
)

const (
	// BufferSize is the number of time-domain bytes read per tick.
	BufferSize = 2048
	// Midpoint is the byte value of a zero sample.
	Midpoint = 128
	// VisualBoost scales RMS for display before clamping to 1.
	VisualBoost = 1.6
	// SilenceFloor is the RMS at or below which the dB readout shows -∞.
	SilenceFloor = 1e-6
)

// Reading is one tick's worth of level measurements.
type Reading struct {
	RMS    float64
	Peak   float64
	Visual float64
}

// Normalize maps a raw byte sample onto [-1, 1).
func Normalize(sample byte) float64 {
	return (float64(sample) - Midpoint) / Midpoint
}

// Meter measures byte buffers, reusing its sample scratch between calls.
// The zero value is ready to use. A Meter is not safe for concurrent use.
type Meter struct {
	samples []float64
}

func (m *Meter) Measure(buf []byte) Reading {
	if len(buf) == 0 {
		return Reading{}
	}
	if cap(m.samples) < len(buf) {
		m.samples = make([]float64, len(buf))
	}
	samples := m.samples[:len(buf)]
	for i, b := range buf {
		samples[i] = Normalize(b)
	}
	rms := timestats.RMS(samples)
	return Reading{RMS: rms, Peak: timestats.Peak(samples), Visual: VisualLevel(rms)}
}

// Measure is a one-off Meter.Measure.
func Measure(buf []byte) Reading {
	var m Meter
	return m.Measure(buf)
}

func VisualLevel(rms float64) float64 {
	return math.Min(1, rms*VisualBoost)
}

// Decibels returns 20·log10(rms), or false when rms is at the silence floor.
func Decibels(rms float64) (float64, bool) {
	if rms <= SilenceFloor {
		return math.Inf(-1), false
	}
	return 20 * math.Log10(rms), true
}

// Readout formats the numeric display, e.g. "0.212 (-13.5 dB)".
func Readout(rms float64) string {
	db, ok := Decibels(rms)
	if !ok {
		return fmt.Sprintf("%.3f (-∞ dB)", rms)
	}
	return fmt.Sprintf("%.3f (%.1f dB)", rms, db)
}
