//go:build !js

package keysynth

import (
	"encoding/binary"
	"math"
	"testing"
)

const testRate = 48000

func latePeak(t *testing.T, events []NoteEvent, opts ...Option) float64 {
	t.Helper()
	out, err := RenderPerformance(events, testRate, 2, opts...)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(out) != 2*2*testRate {
		t.Fatalf("rendered %d samples, want %d", len(out), 2*2*testRate)
	}
	return PeakAbs(out[int(1.5*testRate)*2:])
}

func TestRenderPerformanceLimitsSingleNote(t *testing.T) {
	note := []NoteEvent{{At: 0, Key: "78", Down: true}}
	open := latePeak(t, note, WithLimits(1, 1))
	if open < 0.28 || open > 0.31 {
		t.Fatalf("unlimited note peak = %v, want about %v", open, NoteLevel)
	}
	limited := latePeak(t, note, WithLimits(0.1, 0.15))
	if limited < 0.02 || limited > 0.16 {
		t.Fatalf("limited note peak = %v, want near the 0.15 ceiling", limited)
	}
}

func TestRenderPerformanceLimitsChord(t *testing.T) {
	var chord []NoteEvent
	for _, key := range []string{"90", "67", "66", "81"} {
		chord = append(chord, NoteEvent{At: 0, Key: key, Down: true})
	}
	open := latePeak(t, chord, WithLimits(1, 1))
	limited := latePeak(t, chord)
	if open < 0.7 {
		t.Fatalf("unlimited chord peak = %v, want > 0.7", open)
	}
	if limited > 0.5 || limited >= open {
		t.Fatalf("limited chord peak = %v (unlimited %v)", limited, open)
	}
}

func TestRenderPerformanceReleasesNotes(t *testing.T) {
	events := []NoteEvent{
		{At: 0.5, Key: "90", Down: false},
		{At: 0, Key: "90", Down: true},
	}
	out, err := RenderPerformance(events, testRate, 2)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if peak := PeakAbs(out[testRate*2 : 2*testRate*2]); peak > 1e-3 {
		t.Fatalf("tail after release peaks at %v, want silence", peak)
	}
	if peak := PeakAbs(out[int(0.2*testRate)*2 : int(0.4*testRate)*2]); peak < 0.2 {
		t.Fatalf("held note peaks at %v", peak)
	}
}

func TestRenderPerformanceRejectsBadRate(t *testing.T) {
	if _, err := RenderPerformance(nil, 0, 1); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
}

func TestRenderPerformanceRejectsBadDuration(t *testing.T) {
	for _, seconds := range []float64{-1, 0, math.NaN(), math.Inf(1)} {
		if _, err := RenderPerformance(nil, testRate, seconds); err == nil {
			t.Fatalf("expected error for duration %v", seconds)
		}
	}
}

func TestEncodeWAVFloat32LEHeader(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1}
	wav := EncodeWAVFloat32LE(samples, testRate, 2)
	if len(wav) != 44+16 {
		t.Fatalf("wav size = %d", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Fatalf("bad chunk ids")
	}
	if got := binary.LittleEndian.Uint16(wav[20:]); got != 3 {
		t.Fatalf("format = %d, want IEEE float", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:]); got != testRate {
		t.Fatalf("sample rate = %d", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(wav[48:])); got != 0.5 {
		t.Fatalf("second sample = %v", got)
	}
}
