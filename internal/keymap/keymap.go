// Package keymap holds the immutable table from input key identifiers to
// pitch frequencies.
package keymap

import "sort"

// Map is read-only after construction; it is safe to share.
type Map struct {
	freqs map[string]float64
	order []string
}

// New copies entries, so later changes to the argument do not leak in.
// Entries with a non-positive frequency are dropped.
func New(entries map[string]float64) Map {
	m := Map{freqs: make(map[string]float64, len(entries))}
	for k, f := range entries {
		if f <= 0 {
			continue
		}
		m.freqs[k] = f
		m.order = append(m.order, k)
	}
	sort.Slice(m.order, func(i, j int) bool {
		fi, fj := m.freqs[m.order[i]], m.freqs[m.order[j]]
		if fi != fj {
			return fi < fj
		}
		return m.order[i] < m.order[j]
	})
	return m
}

// Default is the two-row computer keyboard layout: Z..M and Q..P carry the
// naturals, the row above each carries the sharps, from C4 up to E6.
func Default() Map {
	return New(defaultFrequencies)
}

func (m Map) Lookup(key string) (float64, bool) {
	f, ok := m.freqs[key]
	return f, ok
}

func (m Map) Len() int { return len(m.order) }

// Keys returns the key identifiers ordered from lowest to highest pitch.
func (m Map) Keys() []string {
	return append([]string(nil), m.order...)
}

var defaultFrequencies = map[string]float64{
	"90": 261.625565300598634, // Z  C4
	"83": 277.182630976872096, // S  C#4
	"88": 293.664767917407560, // X  D4
	"68": 311.126983722080910, // D  D#4
	"67": 329.627556912869929, // C  E4
	"86": 349.228231433003884, // V  F4
	"71": 369.994422711634398, // G  F#4
	"66": 391.995435981749294, // B  G4
	"72": 415.304697579945138, // H  G#4
	"78": 440.000000000000000, // N  A4
	"74": 466.163761518089916, // J  A#4
	"77": 493.883301256124111, // M  B4
	"81": 523.251130601197269, // Q  C5
	"50": 554.365261953744192, // 2  C#5
	"87": 587.329535834815120, // W  D5
	"51": 622.253967444161821, // 3  D#5
	"69": 659.255113825739859, // E  E5
	"82": 698.456462866007768, // R  F5
	"53": 739.988845423268797, // 5  F#5
	"84": 783.990871963498588, // T  G5
	"54": 830.609395159890277, // 6  G#5
	"89": 880.000000000000000, // Y  A5
	"55": 932.327523036179832, // 7  A#5
	"85": 987.766602512248223, // U  B5
	"73": 1046.502261170122,   // I  C6
	"56": 1108.730516992571,   // 8  C#6
	"79": 1174.659153037467,   // O  D6
	"57": 1244.508131081553,   // 9  D#6
	"80": 1318.510330255652,   // P  E6
}
