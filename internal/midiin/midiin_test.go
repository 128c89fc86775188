package midiin

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cbegin/keysynth-go/internal/keymap"
)

type recordingSink struct {
	events []string
}

func (s *recordingSink) KeyDown(key string) { s.events = append(s.events, "down "+key) }
func (s *recordingSink) KeyUp(key string)   { s.events = append(s.events, "up "+key) }

func TestRouterMapsNotesToKeys(t *testing.T) {
	sink := &recordingSink{}
	r := NewRouter(keymap.Default(), BaseNote, sink, nil)
	msgs := []midi.Message{
		midi.NoteOn(0, 60, 100), // C4 -> Z
		midi.NoteOn(0, 69, 90),  // A4 -> N
		midi.NoteOff(0, 60),
		midi.NoteOn(0, 69, 0), // zero velocity releases
		midi.NoteOn(0, 88, 1), // E6 -> P
		midi.NoteOn(0, 59, 100),
		midi.NoteOn(0, 89, 100),
		midi.ControlChange(0, 64, 127),
	}
	for _, m := range msgs {
		r.Handle(m)
	}
	want := []string{"down 90", "down 78", "up 90", "up 78", "down 80"}
	if len(sink.events) != len(want) {
		t.Fatalf("events = %v, want %v", sink.events, want)
	}
	for i := range want {
		if sink.events[i] != want[i] {
			t.Fatalf("event %d = %q, want %q", i, sink.events[i], want[i])
		}
	}
}

func TestRouterKeyRange(t *testing.T) {
	r := NewRouter(keymap.Default(), BaseNote, &recordingSink{}, nil)
	for _, tc := range []struct {
		note uint8
		key  string
		ok   bool
	}{
		{0, "", false},
		{59, "", false},
		{60, "90", true},
		{61, "83", true},
		{72, "81", true},
		{88, "80", true},
		{89, "", false},
		{127, "", false},
	} {
		key, ok := r.Key(tc.note)
		if key != tc.key || ok != tc.ok {
			t.Fatalf("Key(%d) = %q, %v; want %q, %v", tc.note, key, ok, tc.key, tc.ok)
		}
	}
}
