//go:build js

// Command keysynth_web runs the keyboard in a browser page. Build it with
// GopherJS and load it from index.html.
package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"strconv"

	"github.com/gopherjs/gopherjs/js"

	"github.com/cbegin/keysynth-go"
	"github.com/cbegin/keysynth-go/internal/graph"
	"github.com/cbegin/keysynth-go/internal/meter"
	"github.com/cbegin/keysynth-go/internal/webaudio"
)

// canvasSurface draws the meter bar on a 2D canvas context.
type canvasSurface struct {
	ctx  *js.Object
	w, h int
}

func (s *canvasSurface) Size() (int, int) { return s.w, s.h }

func (s *canvasSurface) FillRect(x, y, w, h int, c color.Color) {
	r, g, b, a := c.RGBA()
	s.ctx.Set("fillStyle", fmt.Sprintf("rgba(%d,%d,%d,%.3f)", r>>8, g>>8, b>>8, float64(a)/0xffff))
	s.ctx.Call("fillRect", x, y, w, h)
}

func byID(id string) *js.Object {
	el := js.Global.Get("document").Call("getElementById", id)
	if el == nil || el == js.Undefined {
		return nil
	}
	return el
}

// eventKey mirrors the page's key identifiers: a synthetic event's detail,
// otherwise the legacy which code.
func eventKey(event *js.Object) string {
	if d := event.Get("detail"); d != js.Undefined && d != nil && d.Int() != 0 {
		return strconv.Itoa(d.Int())
	}
	return strconv.Itoa(event.Get("which").Int())
}

func main() {
	js.Global.Get("document").Call("addEventListener", "DOMContentLoaded", func(*js.Object) {
		if err := start(); err != nil {
			slog.Error("keysynth failed to start", "err", err)
		}
	})
}

func start() error {
	backend, err := webaudio.New(meter.BufferSize)
	if err != nil {
		return err
	}

	opts := []keysynth.Option{}
	if canvas := byID("meter"); canvas != nil {
		opts = append(opts, keysynth.WithSurface(&canvasSurface{
			ctx: canvas.Call("getContext", "2d"),
			w:   canvas.Get("width").Int(),
			h:   canvas.Get("height").Int(),
		}))
	}
	if el := byID("meterValue"); el != nil {
		opts = append(opts, keysynth.WithReadout(func(text string) { el.Set("textContent", text) }))
	}
	kb, err := keysynth.New(backend, opts...)
	if err != nil {
		return err
	}

	if sel := byID("waveform"); sel != nil {
		sel.Call("addEventListener", "change", func(*js.Object) {
			if err := kb.SetWaveform(sel.Get("value").String()); err != nil {
				slog.Warn("waveform rejected", "err", err)
			}
		})
		sel.Set("value", string(graph.Sine))
	}
	bindSlider("threshold", "thresholdValue", kb.Threshold(), kb.SetThreshold)
	bindSlider("ceiling", "ceilingValue", kb.Ceiling(), kb.SetCeiling)

	win := js.Global.Get("window")
	win.Call("addEventListener", "keydown", func(event *js.Object) {
		backend.Resume()
		kb.KeyDown(eventKey(event))
	}, false)
	win.Call("addEventListener", "keyup", func(event *js.Object) {
		kb.KeyUp(eventKey(event))
	}, false)

	var frame func(float64)
	frame = func(float64) {
		js.Global.Call("requestAnimationFrame", frame)
		kb.Tick()
	}
	frame(0)
	return nil
}

func bindSlider(inputID, labelID string, initial float64, set func(float64)) {
	input, label := byID(inputID), byID(labelID)
	if input == nil {
		return
	}
	input.Set("value", initial)
	if label != nil {
		label.Set("textContent", strconv.FormatFloat(initial, 'f', 2, 64))
	}
	input.Call("addEventListener", "input", func(*js.Object) {
		v, err := strconv.ParseFloat(input.Get("value").String(), 64)
		if err != nil {
			return
		}
		set(v)
		if label != nil {
			label.Set("textContent", strconv.FormatFloat(v, 'f', 2, 64))
		}
	})
}
