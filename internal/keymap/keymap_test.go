package keymap

import (
	"math"
	"testing"
)

func TestDefaultLookup(t *testing.T) {
	m := Default()
	if m.Len() != 29 {
		t.Fatalf("default map has %d keys, want 29", m.Len())
	}
	for _, tc := range []struct {
		key  string
		want float64
	}{
		{"90", 261.625565300598634},
		{"78", 440},
		{"89", 880},
		{"80", 1318.510330255652},
	} {
		got, ok := m.Lookup(tc.key)
		if !ok || math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Lookup(%q) = %v, %v; want %v", tc.key, got, ok, tc.want)
		}
	}
	if _, ok := m.Lookup("65"); ok {
		t.Fatalf("key 65 (A) should be unmapped")
	}
}

func TestKeysAscendBySemitone(t *testing.T) {
	keys := Default().Keys()
	m := Default()
	prev := 0.0
	for i, k := range keys {
		f, _ := m.Lookup(k)
		if f <= prev {
			t.Fatalf("key %d (%s) frequency %v not above %v", i, k, f, prev)
		}
		if i > 0 {
			ratio := f / prev
			if math.Abs(ratio-math.Pow(2, 1.0/12)) > 1e-6 {
				t.Fatalf("step %d ratio %v is not a semitone", i, ratio)
			}
		}
		prev = f
	}
}

func TestNewCopiesEntries(t *testing.T) {
	src := map[string]float64{"1": 100, "2": -5}
	m := New(src)
	src["1"] = 999
	if f, _ := m.Lookup("1"); f != 100 {
		t.Fatalf("map mutated through source, got %v", f)
	}
	if _, ok := m.Lookup("2"); ok {
		t.Fatalf("non-positive frequency should be dropped")
	}
	keys := m.Keys()
	keys[0] = "x"
	if m.Keys()[0] != "1" {
		t.Fatalf("Keys must return a copy")
	}
}
