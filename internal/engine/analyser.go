package engine

import (
	"fmt"
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-dsp/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// DefaultAnalyserSize matches the Web Audio fftSize the meter reads.
	DefaultAnalyserSize = 2048

	minDecibels       = -100.0
	maxDecibels       = -30.0
	spectrumSmoothing = 0.8
	byteMidpoint      = 128.0
)

// Analyser keeps the most recent master-bus samples and exposes them the way
// a Web Audio AnalyserNode does.
type Analyser struct {
	mu   sync.Mutex
	ring []float64
	pos  int

	window   []float64
	plan     *algofft.Plan[complex128]
	frame    []float64
	in       []complex128
	spec     []complex128
	re, im   []float64
	mag      []float64
	smoothed []float64
}

func newAnalyser(size int) (*Analyser, error) {
	if size < 32 || size&(size-1) != 0 {
		return nil, fmt.Errorf("analyser size %d must be a power of two >= 32", size)
	}
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("analyser: failed to create FFT plan: %w", err)
	}
	bins := size / 2
	a := &Analyser{
		ring:     make([]float64, size),
		window:   window.Generate(window.TypeBlackman, size, window.WithPeriodic()),
		plan:     plan,
		frame:    make([]float64, size),
		in:       make([]complex128, size),
		spec:     make([]complex128, size),
		re:       make([]float64, bins),
		im:       make([]float64, bins),
		mag:      make([]float64, bins),
		smoothed: make([]float64, bins),
	}
	return a, nil
}

func (a *Analyser) Size() int { return len(a.ring) }

func (a *Analyser) writeBlock(samples []float64) {
	a.mu.Lock()
	for _, s := range samples {
		a.ring[a.pos] = s
		a.pos = (a.pos + 1) % len(a.ring)
	}
	a.mu.Unlock()
}

// snapshot copies the newest len(dst) samples, oldest first. Caller holds mu.
func (a *Analyser) snapshot(dst []float64) {
	n := len(a.ring)
	start := (a.pos - len(dst) + n) % n
	for i := range dst {
		dst[i] = a.ring[(start+i)%n]
	}
}

func (a *Analyser) ByteTimeDomainData(dst []byte) {
	n := min(len(dst), len(a.ring))
	a.mu.Lock()
	a.snapshot(a.frame[:n])
	for i := 0; i < n; i++ {
		v := math.Floor(byteMidpoint * (1 + a.frame[i]))
		dst[i] = byte(clamp(v, 0, 255))
	}
	a.mu.Unlock()
}

func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.snapshot(a.frame)
	vecmath.MulBlockInPlace(a.frame, a.window)
	for i, x := range a.frame {
		a.in[i] = complex(x, 0)
	}
	if err := a.plan.Forward(a.spec, a.in); err != nil {
		return
	}
	size := float64(len(a.ring))
	for k := range a.re {
		a.re[k] = real(a.spec[k]) / size
		a.im[k] = imag(a.spec[k]) / size
	}
	vecmath.Magnitude(a.mag, a.re, a.im)

	n := min(len(dst), len(a.mag))
	for k := range a.mag {
		a.smoothed[k] = spectrumSmoothing*a.smoothed[k] + (1-spectrumSmoothing)*a.mag[k]
		if k >= n {
			continue
		}
		db := math.Inf(-1)
		if a.smoothed[k] > 0 {
			db = 20 * math.Log10(a.smoothed[k])
		}
		scaled := 255 * (db - minDecibels) / (maxDecibels - minDecibels)
		dst[k] = byte(clamp(scaled, 0, 255))
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
