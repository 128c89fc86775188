//go:build !js

package keysynth

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/cbegin/keysynth-go/internal/engine"
)

// NoteEvent is one scripted key transition for offline rendering.
type NoteEvent struct {
	At   float64 // seconds
	Key  string
	Down bool
}

// TickRate is the number of meter frames per second in offline renders.
const TickRate = 60

// RenderPerformance plays events through the native engine with a manual
// clock and returns interleaved stereo samples. The meter loop ticks at
// TickRate; events land on the first tick boundary at or after their time.
func RenderPerformance(events []NoteEvent, sampleRate int, seconds float64, opts ...Option) ([]float32, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return nil, fmt.Errorf("render duration %v must be positive", seconds)
	}
	ctx, err := engine.NewContext(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	kb, err := New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	script := append([]NoteEvent(nil), events...)
	sort.SliceStable(script, func(i, j int) bool { return script[i].At < script[j].At })

	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames*2)
	block := max(1, sampleRate/TickRate)
	next := 0
	for pos := 0; pos < frames; {
		now := float64(pos) / float64(sampleRate)
		for next < len(script) && script[next].At <= now {
			if ev := script[next]; ev.Down {
				kb.KeyDown(ev.Key)
			} else {
				kb.KeyUp(ev.Key)
			}
			next++
		}
		n := min(block, frames-pos)
		ctx.Process(out[pos*2 : (pos+n)*2])
		pos += n
		kb.Tick()
	}
	return out, nil
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}

// PeakAbs returns the largest absolute sample value.
func PeakAbs(samples []float32) float64 {
	var peak float64
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	return peak
}
