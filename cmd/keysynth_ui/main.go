package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cbegin/keysynth-go"
	"github.com/cbegin/keysynth-go/internal/graph"
	"github.com/cbegin/keysynth-go/internal/limiter"
	"github.com/cbegin/keysynth-go/internal/meter"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	windowW    = 980
	windowH    = 600
	minWindowW = 900
	minWindowH = 560

	textScale = 2
	charW     = 7 * textScale
	lineH     = 14 * textScale

	meterW = 300
	meterH = 20
)

// imageSurface draws the meter bar on an offscreen image during Update;
// Draw blits it.
type imageSurface struct {
	img *ebiten.Image
}

func (s *imageSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *imageSurface) FillRect(x, y, w, h int, c color.Color) {
	ebitenutil.DrawRect(s.img, float64(x), float64(y), float64(w), float64(h), c)
}

const (
	dragNone = iota
	dragThreshold
	dragCeiling
)

type game struct {
	kb      *keysynth.Keyboard
	meter   *imageSurface
	readout string

	specBuf  []byte
	waveBuf  []byte
	specImg  *ebiten.Image
	specW    int
	specH    int
	keysBuf  []ebiten.Key
	dragging int

	status    string
	statusErr bool

	textCache map[string]*ebiten.Image
	viewW     int
	viewH     int
}

func newGame(sampleRate int, opts ...keysynth.Option) (*game, error) {
	g := &game{
		meter:     &imageSurface{img: ebiten.NewImage(meterW, meterH)},
		readout:   "0.000 (-∞ dB)",
		status:    "Ready: play with Z..M / Q..P",
		textCache: make(map[string]*ebiten.Image, 256),
		viewW:     windowW,
		viewH:     windowH,
	}
	opts = append(opts,
		keysynth.WithSurface(g.meter),
		keysynth.WithReadout(func(s string) { g.readout = s }),
	)
	kb, err := keysynth.Open(sampleRate, opts...)
	if err != nil {
		return nil, err
	}
	g.kb = kb
	return g, nil
}

func (g *game) Update() error {
	g.handleKeys()
	g.handleMouse()
	g.kb.Tick()
	return nil
}

// handleKeys feeds key transitions to the keyboard using the legacy DOM
// key codes the key map is written in.
func (g *game) handleKeys() {
	g.keysBuf = inpututil.AppendJustPressedKeys(g.keysBuf[:0])
	for _, k := range g.keysBuf {
		if code, ok := legacyKeyCode(k); ok {
			g.kb.KeyDown(code)
		}
	}
	g.keysBuf = inpututil.AppendJustReleasedKeys(g.keysBuf[:0])
	for _, k := range g.keysBuf {
		if code, ok := legacyKeyCode(k); ok {
			g.kb.KeyUp(code)
		}
	}
}

// legacyKeyCode maps letter and digit keys to their DOM keyCode.
func legacyKeyCode(k ebiten.Key) (string, bool) {
	name := k.String()
	if len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z' {
		return strconv.Itoa(int(name[0])), true
	}
	if d, ok := strings.CutPrefix(name, "Digit"); ok && len(d) == 1 {
		return strconv.Itoa(int(d[0])), true
	}
	return "", false
}

func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	l := g.layoutRects()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		switch {
		case pointInRect(mx, my, l.waveform):
			g.cycleWaveform()
			return
		case pointInRect(mx, my, l.threshold):
			g.dragging = dragThreshold
		case pointInRect(mx, my, l.ceiling):
			g.dragging = dragCeiling
		}
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.dragging = dragNone
	}
	switch g.dragging {
	case dragThreshold:
		v := sliderValue(mx, l.threshold)
		g.kb.SetThreshold(v)
		g.setStatus(fmt.Sprintf("Threshold: %.2f", v))
	case dragCeiling:
		v := sliderValue(mx, l.ceiling)
		g.kb.SetCeiling(v)
		g.setStatus(fmt.Sprintf("Ceiling: %.2f", v))
	}
}

func (g *game) cycleWaveform() {
	cur := g.kb.Waveform()
	next := graph.Waveforms[0]
	for i, w := range graph.Waveforms {
		if w == cur {
			next = graph.Waveforms[(i+1)%len(graph.Waveforms)]
		}
	}
	if err := g.kb.SetWaveform(string(next)); err != nil {
		g.setError(err.Error())
		return
	}
	g.setStatus("Waveform: " + string(next))
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	l := g.layoutRects()

	g.drawButton(screen, l.waveform, "Wave: "+string(g.kb.Waveform()))
	g.drawSlider(screen, l.threshold, "Thr", g.kb.Threshold())
	g.drawSlider(screen, l.ceiling, "Ceil", g.kb.Ceiling())

	g.drawPanel(screen, l.meter)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(l.meter.Min.X+10), float64(l.meter.Min.Y+10))
	screen.DrawImage(g.meter.img, op)
	g.drawText(screen, g.readout, l.meter.Min.X+meterW+24, l.meter.Min.Y+4)
	engaged := "relaxed"
	if g.kb.Engaged() {
		engaged = "LIMITING"
	}
	g.drawText(screen, fmt.Sprintf("%s %s", g.kb.Detector(), engaged), l.meter.Min.X+10, l.meter.Min.Y+meterH+16)

	g.drawInset(screen, l.spectrum, color.Black)
	g.drawSpectrum(screen, l.spectrum)

	g.drawInset(screen, l.piano, insetColor)
	g.drawPiano(screen, l.piano)

	g.drawInset(screen, l.status, insetColor)
	g.drawStatus(screen, l.status)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	outsideW = max(outsideW, minWindowW)
	outsideH = max(outsideH, minWindowH)
	g.viewW = outsideW
	g.viewH = outsideH
	return outsideW, outsideH
}

type uiLayout struct {
	waveform, threshold, ceiling image.Rectangle
	meter, spectrum, piano       image.Rectangle
	status                       image.Rectangle
}

func (g *game) layoutRects() uiLayout {
	w := max(g.viewW, minWindowW)
	h := max(g.viewH, minWindowH)

	pad := 20
	rowH := 44
	statusH := 40

	statusTop := h - pad - statusH
	pianoH := 120
	pianoTop := statusTop - 12 - pianoH
	meterTop := pad + rowH + 12
	meterRect := image.Rect(pad, meterTop, w-pad, meterTop+meterH+50)
	spectrumRect := image.Rect(pad, meterRect.Max.Y+12, w-pad, pianoTop-12)

	sliderW := (w - 2*pad - 260 - 24) / 2
	return uiLayout{
		waveform:  image.Rect(pad, pad, pad+260, pad+rowH),
		threshold: image.Rect(pad+272, pad, pad+272+sliderW, pad+rowH),
		ceiling:   image.Rect(pad+284+sliderW, pad, w-pad, pad+rowH),
		meter:     meterRect,
		spectrum:  spectrumRect,
		piano:     image.Rect(pad, pianoTop, w-pad, pianoTop+pianoH),
		status:    image.Rect(pad, statusTop, w-pad, statusTop+statusH),
	}
}

// drawSpectrum draws the master bus waveform above its spectrum.
func (g *game) drawSpectrum(screen *ebiten.Image, rect image.Rectangle) {
	inner := image.Rect(rect.Min.X+8, rect.Min.Y+8, rect.Max.X-8, rect.Max.Y-8)
	width, height := inner.Dx(), inner.Dy()
	if width <= 4 || height <= 4 {
		return
	}
	if g.specImg == nil || g.specW != width || g.specH != height {
		g.specW, g.specH = width, height
		g.specImg = ebiten.NewImage(width, height)
	}
	g.specImg.Fill(color.RGBA{14, 16, 22, 255})

	an := g.kb.Backend().Analyser()
	if len(g.waveBuf) != an.Size() {
		g.waveBuf = make([]byte, an.Size())
		g.specBuf = make([]byte, an.Size()/2)
	}
	an.ByteTimeDomainData(g.waveBuf)
	an.ByteFrequencyData(g.specBuf)

	waveH := int(float64(height) * 0.4)
	mid := float64(waveH) / 2
	step := float64(len(g.waveBuf)) / float64(width)
	prevY := mid
	for x := 0; x < width; x++ {
		v := (float64(g.waveBuf[int(float64(x)*step)]) - 128) / 128
		y := mid - v*mid
		ebitenutil.DrawLine(g.specImg, float64(x), prevY, float64(x+1), y, waveColor)
		prevY = y
	}
	ebitenutil.DrawRect(g.specImg, 0, float64(waveH), float64(width), 1, color.RGBA{50, 54, 68, 180})

	specY := waveH + 1
	specH := height - specY
	numBars := min(256, max(16, width/3))
	logMin := 0.0
	logMax := math.Log(float64(len(g.specBuf)))
	barW := float64(width) / float64(numBars)
	for i := 0; i < numBars; i++ {
		b0 := int(math.Exp(logMin + float64(i)/float64(numBars)*(logMax-logMin)))
		b1 := max(b0+1, int(math.Exp(logMin+float64(i+1)/float64(numBars)*(logMax-logMin))))
		b1 = min(b1, len(g.specBuf))
		peak := 0
		for b := b0; b < b1; b++ {
			peak = max(peak, int(g.specBuf[b]))
		}
		v := float64(peak) / 255
		barH := max(1, v*float64(specH-4))
		c := meter.ColorAt(v)
		c.A = 220
		ebitenutil.DrawRect(g.specImg, float64(i)*barW+1, float64(specY+specH-2)-barH, barW-1, barH, c)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(inner.Min.X), float64(inner.Min.Y))
	screen.DrawImage(g.specImg, op)
}

// drawPiano draws one key per map entry in pitch order, lit while held.
func (g *game) drawPiano(screen *ebiten.Image, rect image.Rectangle) {
	keys := g.kb.KeyMap().Keys()
	if len(keys) == 0 {
		return
	}
	held := make(map[string]bool)
	for _, k := range g.kb.Held() {
		held[k] = true
	}
	inner := image.Rect(rect.Min.X+8, rect.Min.Y+8, rect.Max.X-8, rect.Max.Y-8)
	keyW := float64(inner.Dx()) / float64(len(keys))
	for i, k := range keys {
		fill := keyIdleColor
		if held[k] {
			fill = keyHeldColor
		}
		x := float64(inner.Min.X) + float64(i)*keyW
		ebitenutil.DrawRect(screen, x+1, float64(inner.Min.Y), keyW-2, float64(inner.Dy()), fill)
		if code, err := strconv.Atoi(k); err == nil && code >= '0' && code <= 'Z' {
			g.drawText(screen, string(rune(code)), int(x+keyW/2)-charW/2, inner.Max.Y-lineH-4)
		}
	}
}

func (g *game) Close() {
	if err := g.kb.Close(); err != nil {
		slog.Error("close keyboard", "err", err)
	}
}

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		detector   = flag.String("detector", "peak", "limiter detector: peak|rms")
		waveform   = flag.String("waveform", "sine", "initial waveform: sine|square|sawtooth|triangle")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	det, err := limiter.ParseDetector(*detector)
	if err != nil {
		log.Fatal(err)
	}
	wave, err := graph.ParseWaveform(*waveform)
	if err != nil {
		log.Fatal(err)
	}
	g, err := newGame(*sampleRate, keysynth.WithDetector(det), keysynth.WithWaveform(wave), keysynth.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
	ebiten.SetWindowTitle("keysynth")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
