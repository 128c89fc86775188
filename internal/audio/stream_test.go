package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

type rampSource struct {
	next float32
}

func (s *rampSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = s.next
		s.next += 0.25
	}
}

func TestStreamReaderEncodesFloat32LE(t *testing.T) {
	r := NewStreamReader(&rampSource{})
	p := make([]byte, 20) // two whole frames plus a partial one
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 16 {
		t.Fatalf("read %d bytes, want 16", n)
	}
	want := []float32{0, 0.25, 0.5, 0.75}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if got != w {
			t.Fatalf("sample %d = %v, want %v", i, got, w)
		}
	}
}

func TestStreamReaderShortBuffer(t *testing.T) {
	r := NewStreamReader(&rampSource{})
	n, err := r.Read(make([]byte, 7))
	if n != 0 || err != nil {
		t.Fatalf("short read = (%d, %v), want (0, nil)", n, err)
	}
}
