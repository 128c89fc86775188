package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

var (
	bgColor    = color.RGBA{192, 192, 192, 255}
	insetColor = color.RGBA{24, 24, 32, 255}
	lightEdge  = color.RGBA{255, 255, 255, 255}
	darkEdge   = color.RGBA{64, 64, 64, 255}
	trackColor = color.RGBA{0, 0, 128, 255}

	waveColor    = color.RGBA{120, 230, 160, 255}
	keyIdleColor = color.RGBA{220, 220, 228, 255}
	keyHeldColor = color.RGBA{255, 190, 60, 255}
)

// Slider track geometry inside a slider rect.
const (
	sliderLabelW = 150
	sliderMargin = 16
)

func fillRect(dst *ebiten.Image, r image.Rectangle, c color.Color) {
	ebitenutil.DrawRect(dst, float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()), c)
}

// bevel outlines r with a one pixel edge: light on top and left when raised,
// the other way round when inset.
func bevel(dst *ebiten.Image, r image.Rectangle, raised bool) {
	top, bottom := lightEdge, darkEdge
	if !raised {
		top, bottom = darkEdge, lightEdge
	}
	x, y := float64(r.Min.X), float64(r.Min.Y)
	w, h := float64(r.Dx()), float64(r.Dy())
	ebitenutil.DrawRect(dst, x, y, w-1, 1, top)
	ebitenutil.DrawRect(dst, x, y, 1, h-1, top)
	ebitenutil.DrawRect(dst, x, y+h-1, w, 1, bottom)
	ebitenutil.DrawRect(dst, x+w-1, y, 1, h, bottom)
}

func (g *game) drawPanel(screen *ebiten.Image, rect image.Rectangle) {
	fillRect(screen, rect, bgColor)
	bevel(screen, rect, true)
}

func (g *game) drawInset(screen *ebiten.Image, rect image.Rectangle, fill color.Color) {
	fillRect(screen, rect, fill)
	bevel(screen, rect, false)
}

func (g *game) drawButton(screen *ebiten.Image, rect image.Rectangle, label string) {
	g.drawPanel(screen, rect)
	x := rect.Min.X + (rect.Dx()-len([]rune(label))*charW)/2
	y := rect.Min.Y + (rect.Dy()-lineH)/2
	g.drawText(screen, label, x, y)
}

// drawSlider shows value in [0, 1] as a filled track with a knob.
func (g *game) drawSlider(screen *ebiten.Image, rect image.Rectangle, name string, value float64) {
	g.drawPanel(screen, rect)
	g.drawText(screen, fmt.Sprintf("%s %.2f", name, value), rect.Min.X+8, rect.Min.Y+8)

	track := sliderTrack(rect)
	if track.Dx() < 20 {
		return
	}
	g.drawInset(screen, track, darkEdge)
	lit := int(float64(track.Dx()) * clamp(value, 0, 1))
	if lit > 2 {
		fillRect(screen, image.Rect(track.Min.X+1, track.Min.Y+1, track.Min.X+lit, track.Max.Y-1), trackColor)
	}
	knobX := min(max(track.Min.X+lit-5, track.Min.X-5), track.Max.X-5)
	g.drawPanel(screen, image.Rect(knobX, track.Min.Y-4, knobX+10, track.Max.Y+4))
}

func sliderTrack(rect image.Rectangle) image.Rectangle {
	x := rect.Min.X + sliderLabelW
	y := rect.Min.Y + rect.Dy()/2 - 4
	return image.Rect(x, y, rect.Max.X-sliderMargin, y+8)
}

// sliderValue maps a cursor x onto 0..1 along the slider track.
func sliderValue(mx int, rect image.Rectangle) float64 {
	track := sliderTrack(rect)
	if track.Dx() <= 0 {
		return 0
	}
	return clamp(float64(mx-track.Min.X)/float64(track.Dx()), 0, 1)
}

func (g *game) drawStatus(screen *ebiten.Image, rect image.Rectangle) {
	msg := g.status
	if g.statusErr {
		msg = "error: " + msg
	}
	if n := max(8, (rect.Dx()-16)/charW); len([]rune(msg)) > n {
		msg = string([]rune(msg)[:n-3]) + "..."
	}
	g.drawText(screen, msg, rect.Min.X+8, rect.Min.Y+6)
}

func (g *game) setError(msg string) {
	g.status, g.statusErr = msg, true
}

func (g *game) setStatus(msg string) {
	g.status, g.statusErr = msg, false
}

// drawText renders msg with a drop shadow. Rendered strings are cached until
// the cache grows past a few thousand entries.
func (g *game) drawText(screen *ebiten.Image, msg string, x, y int) {
	if msg == "" {
		return
	}
	img, ok := g.textCache[msg]
	if !ok {
		img = ebiten.NewImage(max(1, len([]rune(msg))*7), 14)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		if len(g.textCache) > 3000 {
			clear(g.textCache)
		}
		g.textCache[msg] = img
	}
	for _, pass := range []struct {
		dx, dy float64
		shadow bool
	}{{2, 2, true}, {0, 0, false}} {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(textScale, textScale)
		op.GeoM.Translate(float64(x)+pass.dx, float64(y)+pass.dy)
		if pass.shadow {
			op.ColorScale.Scale(0, 0, 0, 1)
		}
		screen.DrawImage(img, op)
	}
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return image.Pt(x, y).In(rect)
}
