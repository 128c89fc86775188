//go:build !js

package keysynth

import (
	"fmt"

	intaudio "github.com/cbegin/keysynth-go/internal/audio"
	"github.com/cbegin/keysynth-go/internal/engine"
)

// Open builds a keyboard on the native engine and starts audio output.
func Open(sampleRate int, opts ...Option) (*Keyboard, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx, err := engine.NewContext(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	kb, err := New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	out, err := intaudio.NewOutput(ctx.SampleRate(), ctx, cfg.bufferSize)
	if err != nil {
		return nil, fmt.Errorf("open audio output: %w", err)
	}
	out.Play()
	kb.output = out
	kb.logger.Info("audio output started", "sample_rate", ctx.SampleRate(), "detector", kb.detector, "headroom", kb.headroom)
	return kb, nil
}
