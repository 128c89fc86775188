package meter

import "image/color"

// Surface is a fixed-size 2D target the bar is drawn on.
type Surface interface {
	Size() (w, h int)
	FillRect(x, y, w, h int, c color.Color)
}

// Stop is one colour stop of the bar gradient, Offset in [0, 1].
type Stop struct {
	Offset float64
	Color  color.RGBA
}

var (
	Background = color.RGBA{0x22, 0x22, 0x22, 0xff}

	// Gradient spans the full bar width no matter how much of it is lit.
	Gradient = []Stop{
		{0, color.RGBA{0x00, 0xff, 0x00, 0xff}},
		{0.6, color.RGBA{0xff, 0xff, 0x00, 0xff}},
		{1, color.RGBA{0xff, 0x00, 0x00, 0xff}},
	}
)

// ColorAt interpolates Gradient at x in [0, 1].
func ColorAt(x float64) color.RGBA {
	if x <= Gradient[0].Offset {
		return Gradient[0].Color
	}
	for i := 1; i < len(Gradient); i++ {
		lo, hi := Gradient[i-1], Gradient[i]
		if x > hi.Offset {
			continue
		}
		f := (x - lo.Offset) / (hi.Offset - lo.Offset)
		return color.RGBA{
			R: lerp8(lo.Color.R, hi.Color.R, f),
			G: lerp8(lo.Color.G, hi.Color.G, f),
			B: lerp8(lo.Color.B, hi.Color.B, f),
			A: 0xff,
		}
	}
	return Gradient[len(Gradient)-1].Color
}

func lerp8(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*f + 0.5)
}

// FillWidth is the number of lit pixels for a visual level.
func FillWidth(width int, visual float64) int {
	if visual <= 0 || width <= 0 {
		return 0
	}
	if visual >= 1 {
		return width
	}
	return int(float64(width) * visual)
}

// Render clears s and draws the lit part of the bar one column at a time so
// each column takes its colour from the full-width gradient.
func Render(s Surface, visual float64) {
	if s == nil {
		return
	}
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}
	s.FillRect(0, 0, w, h, Background)
	lit := FillWidth(w, visual)
	for x := 0; x < lit; x++ {
		s.FillRect(x, 0, 1, h, ColorAt(float64(x)/float64(max(1, w-1))))
	}
}
