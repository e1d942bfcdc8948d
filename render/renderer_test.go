package render

import (
	"errors"
	"image/color"
	"strings"
	"testing"

	"micscope/capture"
	"micscope/hal"

	"tinygo.org/x/drivers/touch"
)

type textOp struct {
	x, y  int16
	line  int
	s     string
	fg    color.RGBA
	align Align
}

type rectOp struct {
	x, y, w, h int16
	c          color.RGBA
}

type pixelOp struct {
	x, y int16
}

type recordingSurface struct {
	w, h     int16
	fg       color.RGBA
	texts    []textOp
	cleared  []int
	rects    []rectOp
	pixels   []pixelOp
	presents int
}

func newRecordingSurface(w, h int16) *recordingSurface {
	return &recordingSurface{w: w, h: h}
}

func (s *recordingSurface) Size() (int16, int16)       { return s.w, s.h }
func (s *recordingSurface) LineHeight() int16          { return 16 }
func (s *recordingSurface) SetForeground(c color.RGBA) { s.fg = c }

func (s *recordingSurface) DrawText(x, y int16, str string, align Align) {
	s.texts = append(s.texts, textOp{x: x, y: y, line: -1, s: str, fg: s.fg, align: align})
}

func (s *recordingSurface) DrawTextLine(line int, str string) {
	s.texts = append(s.texts, textOp{y: int16(line) * 16, line: line, s: str, fg: s.fg})
}

func (s *recordingSurface) ClearLine(line int) { s.cleared = append(s.cleared, line) }

func (s *recordingSurface) FillRect(x, y, w, h int16, c color.RGBA) {
	s.rects = append(s.rects, rectOp{x, y, w, h, c})
}

func (s *recordingSurface) DrawPixel(x, y int16, c color.RGBA) {
	s.pixels = append(s.pixels, pixelOp{x, y})
}

func (s *recordingSurface) Present() error {
	s.presents++
	return nil
}

func (s *recordingSurface) reset() {
	s.texts = nil
	s.cleared = nil
	s.rects = nil
	s.pixels = nil
}

func (s *recordingSurface) linesText(line int) []string {
	var out []string
	for _, t := range s.texts {
		if t.line == line {
			out = append(out, t.s)
		}
	}
	return out
}

type scriptedTouch struct {
	frames [][]touch.Point
	n      int
}

func (t *scriptedTouch) ReadTouch(dst []touch.Point) int {
	if t.n >= len(t.frames) {
		return 0
	}
	pts := t.frames[t.n]
	t.n++
	return copy(dst, pts)
}

type fakeClock struct{ ms uint64 }

func (c *fakeClock) Millis() uint64 { return c.ms }

// scriptDevice fills each capture from src and records the buffer it was lent.
type scriptDevice struct {
	src   []int16
	fail  error
	calls int
	buf   []int16
}

func (d *scriptDevice) BeginCapture(buf []int16) error {
	d.calls++
	if d.fail != nil {
		return d.fail
	}
	copy(buf, d.src)
	d.buf = buf
	return nil
}

type countingLED struct {
	on      bool
	toggles int
}

func (l *countingLED) High() { l.on = true; l.toggles++ }
func (l *countingLED) Low()  { l.on = false; l.toggles++ }

type lineLog struct{ lines []string }

func (l *lineLog) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *lineLog) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

var _ hal.Logger = (*lineLog)(nil)

type rig struct {
	surf  *recordingSurface
	touch *scriptedTouch
	clock *fakeClock
	dev   *scriptDevice
	m     *capture.Machine
	led   *countingLED
	log   *lineLog
	r     *Renderer
}

func newRig(t *testing.T, w, h int16, samples int) *rig {
	t.Helper()

	g := &rig{
		surf:  newRecordingSurface(w, h),
		touch: &scriptedTouch{},
		clock: &fakeClock{},
		dev:   &scriptDevice{},
		led:   &countingLED{},
		log:   &lineLog{},
	}
	m, err := capture.New(g.dev, capture.Config{StoreSamples: samples, CaptureSamples: samples})
	if err != nil {
		t.Fatalf("capture.New: %v", err)
	}
	g.m = m

	r, err := New(Options{
		Surface: g.surf,
		Touch:   g.touch,
		Time:    g.clock,
		Capture: m,
		LED:     g.led,
		Logger:  g.log,
		Layout:  DefaultLayout(),
		Palette: DefaultPalette(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g.r = r
	return g
}

func TestFormatTouch(t *testing.T) {
	got := FormatTouch(touch.Point{X: 12, Y: 240, Z: 37})
	if got != "x 12, y 240, wt 37" {
		t.Fatalf("FormatTouch=%q", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	for _, tc := range []struct {
		ms   uint64
		want string
	}{
		{0, "0.000 seconds"},
		{7, "0.007 seconds"},
		{1234, "1.234 seconds"},
		{60000, "60.000 seconds"},
	} {
		if got := FormatElapsed(tc.ms); got != tc.want {
			t.Fatalf("FormatElapsed(%d)=%q want %q", tc.ms, got, tc.want)
		}
	}
}

func TestSamplePointMapping(t *testing.T) {
	l := DefaultLayout()
	for _, tc := range []struct {
		i    int
		v    int16
		x, y int16
	}{
		{0, 0, 0, 210},
		{4, 1000, 1, 208},
		{8, -1000, 2, 212},
		{12, 499, 3, 210},
		{16, -499, 4, 210},
		{20, 32767, 5, 145},
		{24, -32768, 6, 275},
	} {
		x, y := l.SamplePoint(tc.i, tc.v)
		if x != tc.x || y != tc.y {
			t.Fatalf("SamplePoint(%d,%d)=(%d,%d) want (%d,%d)", tc.i, tc.v, x, y, tc.x, tc.y)
		}
	}
}

func TestStepRequestsWhenIdle(t *testing.T) {
	g := newRig(t, 480, 272, 64)

	if err := g.r.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if g.dev.calls != 1 {
		t.Fatalf("BeginCapture calls=%d want 1", g.dev.calls)
	}
	if g.m.State() != capture.InFlight {
		t.Fatalf("state=%s want in-flight", g.m.State())
	}
	if len(g.surf.pixels) != 0 {
		t.Fatalf("plotted %d pixels with nothing complete", len(g.surf.pixels))
	}

	// Still InFlight: no second request.
	_ = g.r.Step()
	if g.dev.calls != 1 {
		t.Fatalf("BeginCapture calls=%d want 1", g.dev.calls)
	}
	if g.surf.presents != 2 {
		t.Fatalf("presents=%d want 2", g.surf.presents)
	}
}

func TestStepPlotsAndRearmsSameIteration(t *testing.T) {
	g := newRig(t, 480, 272, 64)
	g.dev.src = make([]int16, 64)
	for i := range g.dev.src {
		g.dev.src[i] = int16(i * 100)
	}

	_ = g.r.Step()
	g.m.OnCaptureComplete()
	g.surf.reset()

	_ = g.r.Step()

	if g.dev.calls != 2 {
		t.Fatalf("BeginCapture calls=%d want 2", g.dev.calls)
	}
	if g.m.State() != capture.InFlight {
		t.Fatalf("state=%s want in-flight after re-arm", g.m.State())
	}
	if g.led.toggles != 1 || !g.led.on {
		t.Fatalf("led toggles=%d on=%v", g.led.toggles, g.led.on)
	}

	fill := false
	for _, rc := range g.surf.rects {
		// 140+140 overruns a 272-row panel; the fill is clipped.
		if rc == (rectOp{0, 140, 480, 132, DefaultPalette().PlotFill}) {
			fill = true
		}
	}
	if !fill {
		t.Fatalf("plot region not filled: %+v", g.surf.rects)
	}

	if len(g.surf.pixels) != 16 {
		t.Fatalf("pixels=%d want 16", len(g.surf.pixels))
	}
	for n, p := range g.surf.pixels {
		i := n * 4
		wantY := int16(210 - (i*100)/500)
		if p.x != int16(n) || p.y != wantY {
			t.Fatalf("pixel %d=(%d,%d) want (%d,%d)", n, p.x, p.y, n, wantY)
		}
	}
}

func TestStepPlotWidthBound(t *testing.T) {
	g := newRig(t, 480, 272, capture.DefaultCaptureSamples*2)
	_ = g.r.Step()
	g.m.OnCaptureComplete()
	g.surf.reset()
	_ = g.r.Step()

	// 4096 samples decimate to 1024 columns; only 480 fit.
	if len(g.surf.pixels) != 480 {
		t.Fatalf("pixels=%d want 480", len(g.surf.pixels))
	}
	for _, p := range g.surf.pixels {
		if p.x < 0 || p.x >= 480 {
			t.Fatalf("pixel column %d outside plot", p.x)
		}
	}
}

func TestStepClipsPlotToSmallDisplay(t *testing.T) {
	g := newRig(t, 320, 320, 2048)
	g.dev.src = make([]int16, 2048)
	for i := range g.dev.src {
		g.dev.src[i] = 32767
	}
	_ = g.r.Step()
	g.m.OnCaptureComplete()
	g.dev.src[0] = -32768 // row 275, inside 140..280; lands in the next capture
	g.surf.reset()
	_ = g.r.Step()

	// Row 145 is inside the plot; every column up to the screen edge is drawn.
	if len(g.surf.pixels) != 320 || g.surf.pixels[0].y != 145 {
		t.Fatalf("pixels=%d want 320", len(g.surf.pixels))
	}

	g.m.OnCaptureComplete()
	g.surf.reset()
	_ = g.r.Step()
	if len(g.surf.pixels) != 320 || g.surf.pixels[0].y != 275 {
		t.Fatalf("pixels=%d first=%+v", len(g.surf.pixels), g.surf.pixels[0])
	}
}

func TestStepDropsPointsOutsidePlot(t *testing.T) {
	g := newRig(t, 480, 272, 8)
	g.dev.src = []int16{0, 0, 0, 0, 32767, 0, 0, 0}

	l := DefaultLayout()
	l.Baseline = 150 // 32767 maps to row 85, above the plot
	g.r.layout = l

	_ = g.r.Step()
	g.m.OnCaptureComplete()
	g.surf.reset()
	_ = g.r.Step()

	if len(g.surf.pixels) != 1 {
		t.Fatalf("pixels=%d want 1: %+v", len(g.surf.pixels), g.surf.pixels)
	}
	if g.surf.pixels[0] != (pixelOp{0, 150}) {
		t.Fatalf("pixel=%+v", g.surf.pixels[0])
	}
}

func TestStepTouchLine(t *testing.T) {
	g := newRig(t, 480, 272, 8)
	g.touch.frames = [][]touch.Point{
		{{X: 10, Y: 20, Z: 30}, {X: 99, Y: 99, Z: 99}},
		nil,
	}

	_ = g.r.Step()
	lines := g.surf.linesText(3)
	if len(lines) != 1 || lines[0] != "x 10, y 20, wt 30" {
		t.Fatalf("touch line=%q", lines)
	}
	if !containsInt(g.surf.cleared, 3) {
		t.Fatalf("touch line not cleared before draw")
	}
	for _, tx := range g.surf.texts {
		if tx.line == 3 && tx.fg != DefaultPalette().Touch {
			t.Fatalf("touch line color=%v", tx.fg)
		}
	}

	g.surf.reset()
	_ = g.r.Step()
	if lines := g.surf.linesText(3); len(lines) != 0 {
		t.Fatalf("touch line drawn without touch: %q", lines)
	}
	if !containsInt(g.surf.cleared, 3) {
		t.Fatalf("touch line not cleared")
	}
}

func TestStepElapsedNonDecreasing(t *testing.T) {
	g := newRig(t, 480, 272, 8)
	var shown []string
	for _, ms := range []uint64{0, 5, 5, 1000, 1999, 2000} {
		g.clock.ms = ms
		g.surf.reset()
		_ = g.r.Step()
		for _, tx := range g.surf.texts {
			if tx.line == -1 && tx.y == 70 {
				if tx.align != AlignCenter {
					t.Fatalf("header not centered")
				}
				shown = append(shown, tx.s)
			}
		}
	}
	want := []string{"0.000 seconds", "0.005 seconds", "0.005 seconds", "1.000 seconds", "1.999 seconds", "2.000 seconds"}
	if strings.Join(shown, "|") != strings.Join(want, "|") {
		t.Fatalf("shown=%q", shown)
	}
}

func TestStepRequestErrorShownOnceAndCleared(t *testing.T) {
	g := newRig(t, 480, 272, 8)
	g.dev.fail = hal.ErrDeviceNotReady

	_ = g.r.Step()
	_ = g.r.Step()
	_ = g.r.Step()

	if g.dev.calls != 3 {
		t.Fatalf("BeginCapture calls=%d want a retry each step", g.dev.calls)
	}
	if g.m.State() != capture.Idle {
		t.Fatalf("state=%s want idle", g.m.State())
	}
	errLines := g.surf.linesText(2)
	if len(errLines) != 1 {
		t.Fatalf("error drawn %d times, want once: %q", len(errLines), errLines)
	}
	if !strings.Contains(errLines[0], hal.ErrDeviceNotReady.Error()) {
		t.Fatalf("error line=%q", errLines[0])
	}
	if len(g.log.lines) != 1 {
		t.Fatalf("logged %d lines, want 1: %q", len(g.log.lines), g.log.lines)
	}
	if g.r.Error() == "" {
		t.Fatalf("Error() empty while failing")
	}

	g.dev.fail = nil
	g.surf.reset()
	_ = g.r.Step()
	if g.r.Error() != "" {
		t.Fatalf("Error()=%q after recovery", g.r.Error())
	}
	if !containsInt(g.surf.cleared, 2) {
		t.Fatalf("error line not cleared after recovery")
	}
	if g.m.State() != capture.InFlight {
		t.Fatalf("state=%s want in-flight", g.m.State())
	}
}

func TestStepReportsSpuriousCompletion(t *testing.T) {
	g := newRig(t, 480, 272, 8)
	g.m.OnCaptureComplete() // Idle: spurious

	_ = g.r.Step()

	found := false
	for _, l := range g.log.lines {
		if strings.Contains(l, "spurious completion #1 while idle") {
			found = true
		}
	}
	if !found {
		t.Fatalf("spurious completion not logged: %q", g.log.lines)
	}
	if g.led.toggles != 0 {
		t.Fatalf("led toggled on spurious completion")
	}
}

func TestStepLEDTogglesPerCapture(t *testing.T) {
	g := newRig(t, 480, 272, 8)
	for i := 0; i < 4; i++ {
		_ = g.r.Step()
		g.m.OnCaptureComplete()
	}
	_ = g.r.Step()
	if g.led.toggles != 4 || g.led.on {
		t.Fatalf("toggles=%d on=%v", g.led.toggles, g.led.on)
	}
	if st := g.m.Stats(); st.Consumed != 4 {
		t.Fatalf("consumed=%d", st.Consumed)
	}
}

func TestStepWithoutCapture(t *testing.T) {
	surf := newRecordingSurface(480, 272)
	r, err := New(Options{Surface: surf, Time: &fakeClock{}, Layout: DefaultLayout(), Palette: DefaultPalette()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.ShowError("audio init failed")
	if err := r.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if r.Error() != "audio init failed" {
		t.Fatalf("error cleared without a capture device")
	}
}

func TestNewRequiresSurfaceAndTime(t *testing.T) {
	if _, err := New(Options{Time: &fakeClock{}}); err == nil {
		t.Fatalf("nil surface accepted")
	}
	if _, err := New(Options{Surface: newRecordingSurface(1, 1)}); err == nil {
		t.Fatalf("nil time accepted")
	}
}

func TestDrawBanner(t *testing.T) {
	g := newRig(t, 480, 272, 8)
	g.r.ShowError("stale")
	g.surf.reset()

	if err := g.r.DrawBanner("title", "sub"); err != nil {
		t.Fatalf("DrawBanner: %v", err)
	}
	if len(g.surf.rects) == 0 || g.surf.rects[0] != (rectOp{0, 0, 480, 272, DefaultPalette().Background}) {
		t.Fatalf("screen not cleared: %+v", g.surf.rects)
	}
	if len(g.surf.texts) != 2 || g.surf.texts[0].y != 0 || g.surf.texts[1].y != 40 {
		t.Fatalf("texts=%+v", g.surf.texts)
	}
	if g.surf.texts[0].fg != DefaultPalette().Title {
		t.Fatalf("title color=%v", g.surf.texts[0].fg)
	}
	if g.r.Error() != "" {
		t.Fatalf("banner kept stale error")
	}
}

func TestDrawBannerLightOnBlack(t *testing.T) {
	g := newRig(t, 480, 272, 8)
	if err := g.r.DrawBanner("title", "sub"); err != nil {
		t.Fatalf("DrawBanner: %v", err)
	}
	if len(g.surf.rects) == 0 || g.surf.rects[0].c != colorBlack {
		t.Fatalf("background not black: %+v", g.surf.rects)
	}
	if len(g.surf.texts) != 2 || g.surf.texts[1].fg != colorWhite {
		t.Fatalf("subtitle not white: %+v", g.surf.texts)
	}

	g.surf.reset()
	if err := g.r.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	for _, tx := range g.surf.texts {
		if tx.fg == colorBlack {
			t.Fatalf("text drawn in background color: %+v", tx)
		}
	}
}

var errBoom = errors.New("boom")

func TestShowErrorReplacesMessage(t *testing.T) {
	g := newRig(t, 480, 272, 8)
	g.r.ShowError(errBoom.Error())
	g.r.ShowError(errBoom.Error())
	g.r.ShowError("other")
	if got := g.surf.linesText(2); strings.Join(got, "|") != "boom|other" {
		t.Fatalf("error lines=%q", got)
	}
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
