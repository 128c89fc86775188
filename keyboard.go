// Package keysynth is a polyphonic virtual keyboard with a metered, limited
// master bus. Key presses start oscillator voices; a per-frame meter loop
// reads the master analyser and drives a peak or RMS limiter on the master
// gain.
package keysynth

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cbegin/keysynth-go/internal/graph"
	"github.com/cbegin/keysynth-go/internal/keymap"
	"github.com/cbegin/keysynth-go/internal/limiter"
	"github.com/cbegin/keysynth-go/internal/meter"
)

type Option func(*config)

type config struct {
	detector    limiter.Detector
	headroom    bool
	headroomSet bool
	threshold   float64
	ceiling     float64
	limitsSet   bool
	waveform    graph.Waveform
	keys        *keymap.Map
	logger      *slog.Logger
	surface     meter.Surface
	readout     func(string)
	bufferSize  time.Duration
}

func defaultConfig() config {
	return config{
		detector: limiter.DetectPeak,
		waveform: graph.Sine,
	}
}

// WithDetector picks the limiter variant. The variant sets the default
// threshold, ceiling, attack and headroom behaviour.
func WithDetector(d limiter.Detector) Option {
	return func(cfg *config) {
		cfg.detector = d
	}
}

// WithHeadroom overrides the variant's polyphony compensation default.
func WithHeadroom(enabled bool) Option {
	return func(cfg *config) {
		cfg.headroom = enabled
		cfg.headroomSet = true
	}
}

// WithLimits overrides the variant's initial threshold and ceiling.
func WithLimits(threshold, ceiling float64) Option {
	return func(cfg *config) {
		cfg.threshold = threshold
		cfg.ceiling = ceiling
		cfg.limitsSet = true
	}
}

func WithWaveform(w graph.Waveform) Option {
	return func(cfg *config) {
		cfg.waveform = w
	}
}

func WithKeyMap(m keymap.Map) Option {
	return func(cfg *config) {
		cfg.keys = &m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// WithSurface sets where the meter bar is drawn. Without one the meter
// loop still measures and limits.
func WithSurface(s meter.Surface) Option {
	return func(cfg *config) {
		cfg.surface = s
	}
}

// WithReadout installs a sink for the per-tick level text.
func WithReadout(fn func(string)) Option {
	return func(cfg *config) {
		cfg.readout = fn
	}
}

// WithBufferSize sets the output device buffer used by Open. Zero keeps
// the output stream's default.
func WithBufferSize(d time.Duration) Option {
	return func(cfg *config) {
		cfg.bufferSize = d
	}
}

// Keyboard is the single context object tying key input, voices, the master
// bus controllers and the meter together.
type Keyboard struct {
	mu       sync.Mutex
	backend  graph.Backend
	keys     keymap.Map
	notes    *NoteRegistry
	limiter  *limiter.Limiter
	detector limiter.Detector
	headroom bool
	waveform graph.Waveform
	surface  meter.Surface
	readout  func(string)
	logger   *slog.Logger
	buf      []byte
	levels   meter.Meter
	last     meter.Reading
	output   io.Closer
}

// New builds a keyboard on an existing backend.
func New(backend graph.Backend, opts ...Option) (*Keyboard, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if _, err := graph.ParseWaveform(string(cfg.waveform)); err != nil {
		return nil, err
	}
	lcfg := limiter.DefaultConfig(cfg.detector)
	if cfg.limitsSet {
		lcfg.Threshold = cfg.threshold
		lcfg.Ceiling = cfg.ceiling
	}
	headroom := cfg.detector == limiter.DetectPeak
	if cfg.headroomSet {
		headroom = cfg.headroom
	}
	keys := keymap.Default()
	if cfg.keys != nil {
		keys = *cfg.keys
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Keyboard{
		backend:  backend,
		keys:     keys,
		notes:    NewNoteRegistry(),
		limiter:  limiter.New(lcfg),
		detector: cfg.detector,
		headroom: headroom,
		waveform: cfg.waveform,
		surface:  cfg.surface,
		readout:  cfg.readout,
		logger:   logger,
	}, nil
}

// KeyDown starts a voice for a mapped key that is not already sounding.
func (k *Keyboard) KeyDown(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.notes.Has(key) {
		return
	}
	freq, ok := k.keys.Lookup(key)
	if !ok {
		return
	}
	now := k.backend.CurrentTime()
	k.notes.Add(key, startVoice(k.backend, k.waveform, freq, now))
	k.logger.Debug("voice start", "key", key, "freq", freq, "waveform", k.waveform, "active", k.notes.Len())
	k.compensate(now)
}

// KeyUp releases the key's voice. The registry entry goes away at once; the
// oscillator keeps running until the fade has finished.
func (k *Keyboard) KeyUp(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.notes.Remove(key)
	if !ok {
		return
	}
	now := k.backend.CurrentTime()
	v.release(now)
	k.logger.Debug("voice release", "key", key, "active", k.notes.Len())
	k.compensate(now)
}

// compensate lowers the master gain ahead of clipping as polyphony grows.
func (k *Keyboard) compensate(now float64) {
	if !k.headroom {
		return
	}
	safe := limiter.SafeGain(k.notes.Len(), NoteLevel)
	graph.Retarget(k.backend.Master().Gain(), now, graph.TargetAt(safe, now, limiter.HeadroomTimeConstant))
}

// SetWaveform selects the shape for voices started from now on.
func (k *Keyboard) SetWaveform(name string) error {
	w, err := graph.ParseWaveform(name)
	if err != nil {
		return err
	}
	k.mu.Lock()
	k.waveform = w
	k.mu.Unlock()
	return nil
}

func (k *Keyboard) Waveform() graph.Waveform {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.waveform
}

func (k *Keyboard) SetThreshold(v float64) {
	k.mu.Lock()
	k.limiter.SetThreshold(v)
	k.mu.Unlock()
}

func (k *Keyboard) SetCeiling(v float64) {
	k.mu.Lock()
	k.limiter.SetCeiling(v)
	k.mu.Unlock()
}

func (k *Keyboard) Threshold() float64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.limiter.Threshold()
}

func (k *Keyboard) Ceiling() float64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.limiter.Ceiling()
}

func (k *Keyboard) Detector() limiter.Detector { return k.detector }

func (k *Keyboard) Headroom() bool { return k.headroom }

func (k *Keyboard) Engaged() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.limiter.Engaged()
}

func (k *Keyboard) ActiveNotes() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.notes.Len()
}

// Held returns the keys currently sounding.
func (k *Keyboard) Held() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.notes.Keys()
}

func (k *Keyboard) KeyMap() keymap.Map { return k.keys }

// Backend exposes the graph, e.g. for drawing the analyser spectrum.
func (k *Keyboard) Backend() graph.Backend { return k.backend }

// Reading is the result of the most recent meter tick.
func (k *Keyboard) Reading() meter.Reading {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.last
}

// Close releases every held note and stops audio output if Open started it.
func (k *Keyboard) Close() error {
	k.mu.Lock()
	now := k.backend.CurrentTime()
	for _, key := range k.notes.Keys() {
		v, _ := k.notes.Remove(key)
		v.release(now)
	}
	out := k.output
	k.output = nil
	k.mu.Unlock()
	if out == nil {
		return nil
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close audio output: %w", err)
	}
	return nil
}
