package meter

import (
	"image/color"
	"math"
	"testing"
)

func TestMeasureMidpointIsSilent(t *testing.T) {
	buf := make([]byte, BufferSize)
	for i := range buf {
		buf[i] = Midpoint
	}
	r := Measure(buf)
	if r.RMS != 0 || r.Peak != 0 || r.Visual != 0 {
		t.Fatalf("reading = %+v, want zeros", r)
	}
	if _, ok := Decibels(r.RMS); ok {
		t.Fatalf("silence should not produce a finite dB value")
	}
	if got, want := Readout(r.RMS), "0.000 (-∞ dB)"; got != want {
		t.Fatalf("readout = %q, want %q", got, want)
	}
}

func TestMeasureFullSwing(t *testing.T) {
	buf := make([]byte, BufferSize)
	for i := range buf {
		if i%2 == 0 {
			buf[i] = 0
		} else {
			buf[i] = 255
		}
	}
	r := Measure(buf)
	if math.Abs(r.RMS-1) > 0.01 {
		t.Fatalf("rms = %v, want ~1", r.RMS)
	}
	if r.Peak != 1 {
		t.Fatalf("peak = %v, want 1", r.Peak)
	}
	if r.Visual != 1 {
		t.Fatalf("visual = %v, want clamp to 1", r.Visual)
	}
}

func TestMeterReusesScratchAcrossSizes(t *testing.T) {
	var m Meter
	long := make([]byte, BufferSize)
	for i := range long {
		long[i] = 255
	}
	if r := m.Measure(long); r.Peak < 0.99 {
		t.Fatalf("long peak = %v, want ~1", r.Peak)
	}

	short := []byte{Midpoint + 64, Midpoint - 64, Midpoint, Midpoint}
	got := m.Measure(short)
	want := Reading{RMS: math.Sqrt(0.125), Peak: 0.5, Visual: VisualLevel(math.Sqrt(0.125))}
	if math.Abs(got.RMS-want.RMS) > 1e-12 || got.Peak != want.Peak || math.Abs(got.Visual-want.Visual) > 1e-12 {
		t.Fatalf("short reading = %+v, want %+v", got, want)
	}
	if fresh := Measure(short); fresh != got {
		t.Fatalf("reused meter = %+v, fresh = %+v", got, fresh)
	}
}

func TestMeasureEmpty(t *testing.T) {
	if r := Measure(nil); r != (Reading{}) {
		t.Fatalf("empty reading = %+v", r)
	}
}

func TestReadoutFormatting(t *testing.T) {
	for _, tc := range []struct {
		rms  float64
		want string
	}{
		{1, "1.000 (0.0 dB)"},
		{0.1, "0.100 (-20.0 dB)"},
		{0.5, "0.500 (-6.0 dB)"},
		{1e-6, "0.000 (-∞ dB)"},
		{2e-6, "0.000 (-114.0 dB)"},
	} {
		if got := Readout(tc.rms); got != tc.want {
			t.Fatalf("Readout(%v) = %q, want %q", tc.rms, got, tc.want)
		}
	}
}

func TestVisualLevelBoost(t *testing.T) {
	if got := VisualLevel(0.25); math.Abs(got-0.4) > 1e-12 {
		t.Fatalf("visual(0.25) = %v, want 0.4", got)
	}
	if got := VisualLevel(0.9); got != 1 {
		t.Fatalf("visual(0.9) = %v, want 1", got)
	}
}

type rect struct {
	x, y, w, h int
	c          color.Color
}

type recordingSurface struct {
	w, h  int
	rects []rect
}

func (s *recordingSurface) Size() (int, int) { return s.w, s.h }

func (s *recordingSurface) FillRect(x, y, w, h int, c color.Color) {
	s.rects = append(s.rects, rect{x, y, w, h, c})
}

func TestRenderBar(t *testing.T) {
	s := &recordingSurface{w: 301, h: 20}
	Render(s, 0.5)
	if len(s.rects) != 1+150 {
		t.Fatalf("drew %d rects, want background plus 150 columns", len(s.rects))
	}
	if s.rects[0].c != Background || s.rects[0].w != 301 {
		t.Fatalf("first rect should clear the bar, got %+v", s.rects[0])
	}
	if s.rects[1].c != Gradient[0].Color {
		t.Fatalf("first column should be green, got %v", s.rects[1].c)
	}
	// Column 149 sits at ~0.5 of the full width: green fading into yellow.
	got := s.rects[150].c.(color.RGBA)
	if got.G != 0xff || got.R < 0xc0 || got.R == 0xff {
		t.Fatalf("column at half width = %v, want mostly yellow", got)
	}
}

func TestRenderNilSurface(t *testing.T) {
	Render(nil, 1)
}

func TestColorAtStops(t *testing.T) {
	for _, st := range Gradient {
		if got := ColorAt(st.Offset); got != st.Color {
			t.Fatalf("ColorAt(%v) = %v, want %v", st.Offset, got, st.Color)
		}
	}
	if got := ColorAt(0.8); got.R != 0xff || got.G < 0x7f || got.G > 0x80 {
		t.Fatalf("ColorAt(0.8) = %v, want orange", got)
	}
}
