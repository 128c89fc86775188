package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/cbegin/keysynth-go"
	"github.com/cbegin/keysynth-go/internal/graph"
	"github.com/cbegin/keysynth-go/internal/keymap"
	"github.com/cbegin/keysynth-go/internal/limiter"
	"github.com/cbegin/keysynth-go/internal/midiin"
)

// demoPhrase is rendered by -render when no -keys are given: a rising
// C major arpeggio that ends in a held four-note chord.
const demoPhrase = "90 67 66 81 90+67+66+81"

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		detector   = flag.String("detector", "peak", "limiter detector: peak|rms")
		headroom   = flag.String("headroom", "auto", "polyphony headroom: auto|on|off")
		threshold  = flag.Float64("threshold", -1, "limiter threshold (default per detector)")
		ceiling    = flag.Float64("ceiling", -1, "limiter ceiling (default per detector)")
		waveform   = flag.String("waveform", "sine", "waveform: sine|square|sawtooth|triangle")
		midiPort   = flag.String("midi-port", "", "MIDI input port name")
		listMIDI   = flag.Bool("list-midi", false, "list MIDI input ports and exit")
		tick       = flag.Duration("tick", keysynth.FrameInterval, "meter loop interval")
		render     = flag.String("render", "", "render -keys offline to this WAV file instead of playing live")
		keys       = flag.String("keys", demoPhrase, "space separated steps for -render; join simultaneous keys with +")
		step       = flag.Duration("step", 400*time.Millisecond, "duration of one -keys step")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level, AddSource: *debug}))
	slog.SetDefault(logger)

	if *listMIDI {
		defer midi.CloseDriver()
		for _, name := range midiin.Ports() {
			fmt.Println(name)
		}
		return
	}

	opts, err := buildOptions(*detector, *headroom, *waveform, *threshold, *ceiling)
	if err != nil {
		log.Fatal(err)
	}
	opts = append(opts, keysynth.WithLogger(logger))

	if *render != "" {
		if err := renderWAV(*render, *keys, *step, *sampleRate, opts); err != nil {
			log.Fatal(err)
		}
		logger.Info("rendered", "file", *render)
		return
	}

	var lastReadout string
	opts = append(opts, keysynth.WithReadout(func(s string) {
		if s != lastReadout {
			logger.Debug("meter", "level", s)
			lastReadout = s
		}
	}))
	kb, err := keysynth.Open(*sampleRate, opts...)
	if err != nil {
		log.Fatal(err)
	}
	defer kb.Close()

	if *midiPort != "" {
		defer midi.CloseDriver()
		router := midiin.NewRouter(kb.KeyMap(), midiin.BaseNote, kb, logger)
		stop, err := router.Listen(*midiPort)
		if err != nil {
			log.Fatal(err)
		}
		defer stop()
	} else {
		logger.Warn("no -midi-port given; nothing will play", "ports", strings.Join(midiin.Ports(), ", "))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := kb.Run(ctx, *tick); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
	logger.Info("stopped")
}

func buildOptions(detector, headroom, waveform string, threshold, ceiling float64) ([]keysynth.Option, error) {
	det, err := limiter.ParseDetector(detector)
	if err != nil {
		return nil, fmt.Errorf("invalid -detector: %w", err)
	}
	wave, err := graph.ParseWaveform(waveform)
	if err != nil {
		return nil, fmt.Errorf("invalid -waveform: %w", err)
	}
	opts := []keysynth.Option{keysynth.WithDetector(det), keysynth.WithWaveform(wave)}
	switch strings.ToLower(strings.TrimSpace(headroom)) {
	case "auto":
	case "on":
		opts = append(opts, keysynth.WithHeadroom(true))
	case "off":
		opts = append(opts, keysynth.WithHeadroom(false))
	default:
		return nil, fmt.Errorf("invalid -headroom %q (expected auto|on|off)", headroom)
	}
	if threshold >= 0 || ceiling >= 0 {
		def := limiter.DefaultConfig(det)
		if threshold < 0 {
			threshold = def.Threshold
		}
		if ceiling < 0 {
			ceiling = def.Ceiling
		}
		opts = append(opts, keysynth.WithLimits(threshold, ceiling))
	}
	return opts, nil
}

// parseSteps turns "90 67+66" into key events: each step presses its keys
// and releases them when the next step starts. The last step is held for
// two steps.
func parseSteps(text string, step time.Duration) ([]keysynth.NoteEvent, float64, error) {
	m := keymap.Default()
	var events []keysynth.NoteEvent
	at := 0.0
	dur := step.Seconds()
	fields := strings.Fields(text)
	for i, f := range fields {
		hold := dur
		if i == len(fields)-1 {
			hold = 2 * dur
		}
		for _, key := range strings.Split(f, "+") {
			if _, ok := m.Lookup(key); !ok {
				return nil, 0, fmt.Errorf("unmapped key %q in -keys", key)
			}
			events = append(events,
				keysynth.NoteEvent{At: at, Key: key, Down: true},
				keysynth.NoteEvent{At: at + hold, Key: key, Down: false},
			)
		}
		at += hold
	}
	return events, at, nil
}

func renderWAV(path, keys string, step time.Duration, sampleRate int, opts []keysynth.Option) error {
	events, end, err := parseSteps(keys, step)
	if err != nil {
		return err
	}
	samples, err := keysynth.RenderPerformance(events, sampleRate, end+keysynth.StopDelay+0.2, opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, keysynth.EncodeWAVFloat32LE(samples, sampleRate, 2), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
