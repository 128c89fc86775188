// Package midiin turns MIDI note messages into keyboard key events.
package midiin

import (
	"fmt"
	"log/slog"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cbegin/keysynth-go/internal/keymap"
)

// BaseNote is the MIDI note played by the lowest key of the map (middle C).
const BaseNote = 60

// Sink receives key transitions; *keysynth.Keyboard satisfies it.
type Sink interface {
	KeyDown(key string)
	KeyUp(key string)
}

// Router maps MIDI notes onto the key map's keys in ascending pitch order,
// starting at a base note. Notes beyond either end are ignored.
type Router struct {
	keys   []string
	base   uint8
	sink   Sink
	logger *slog.Logger
}

func NewRouter(m keymap.Map, base uint8, sink Sink, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{keys: m.Keys(), base: base, sink: sink, logger: logger}
}

// Key returns the key identifier a MIDI note plays.
func (r *Router) Key(note uint8) (string, bool) {
	if note < r.base {
		return "", false
	}
	i := int(note - r.base)
	if i >= len(r.keys) {
		return "", false
	}
	return r.keys[i], true
}

// Handle dispatches one message. Note-on with zero velocity counts as
// note-off; everything else is ignored.
func (r *Router) Handle(msg midi.Message) {
	var ch, note, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &note, &vel):
		if key, ok := r.Key(note); ok {
			r.logger.Debug("midi note on", "ch", ch, "note", note, "vel", vel, "key", key)
			r.sink.KeyDown(key)
		}
	case msg.GetNoteEnd(&ch, &note):
		if key, ok := r.Key(note); ok {
			r.logger.Debug("midi note off", "ch", ch, "note", note, "key", key)
			r.sink.KeyUp(key)
		}
	}
}

// Ports lists the input port names of the registered MIDI driver.
func Ports() []string {
	var names []string
	for _, in := range midi.GetInPorts() {
		names = append(names, in.String())
	}
	return names
}

// Listen opens the named input port and routes its messages until stop is
// called. A driver must be registered, e.g. by importing rtmididrv.
func (r *Router) Listen(portName string) (stop func(), err error) {
	in, err := midi.FindInPort(portName)
	if err != nil {
		return nil, fmt.Errorf("find MIDI input %q: %w", portName, err)
	}
	stop, err = midi.ListenTo(in, func(msg midi.Message, _ int32) {
		r.Handle(msg)
	}, midi.HandleError(func(listenErr error) {
		r.logger.Warn("MIDI listener error", "port", portName, "err", listenErr)
	}))
	if err != nil {
		return nil, fmt.Errorf("listen on MIDI input %q: %w", portName, err)
	}
	r.logger.Info("MIDI input connected", "port", portName)
	return stop, nil
}
