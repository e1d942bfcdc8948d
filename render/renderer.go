package render

import (
	"errors"
	"fmt"

	"micscope/capture"
	"micscope/hal"

	"tinygo.org/x/drivers/touch"
)

// Options wires a Renderer to its collaborators. Capture, LED and Logger may be
// nil; without a capture machine the plot is never drawn.
type Options struct {
	Surface Surface
	Touch   hal.TouchPanel
	Time    hal.Time
	Capture *capture.Machine
	LED     hal.LED
	Logger  hal.Logger

	Layout  Layout
	Palette Palette
}

// Renderer draws one frame per Step and keeps the capture machine busy.
type Renderer struct {
	surf  Surface
	touch hal.TouchPanel
	clock hal.Time
	m     *capture.Machine
	led   hal.LED
	log   hal.Logger

	layout Layout
	pal    Palette
	plot   Rect

	pts [hal.MaxTouchPoints]touch.Point

	// errMsg is the text on the error line, empty when clear.
	errMsg  string
	ledOn   bool
	dropped uint64
	frames  uint64
}

func New(opts Options) (*Renderer, error) {
	if opts.Surface == nil {
		return nil, errors.New("render: nil surface")
	}
	if opts.Time == nil {
		return nil, errors.New("render: nil time source")
	}

	r := &Renderer{
		surf:   opts.Surface,
		touch:  opts.Touch,
		clock:  opts.Time,
		m:      opts.Capture,
		led:    opts.LED,
		log:    opts.Logger,
		layout: opts.Layout.normalize(),
		pal:    opts.Palette,
	}
	w, h := r.surf.Size()
	r.plot = r.layout.Plot.clip(w, h)
	return r, nil
}

// Frames returns the number of completed Steps.
func (r *Renderer) Frames() uint64 { return r.frames }

// DrawBanner clears the screen and draws the title block.
func (r *Renderer) DrawBanner(title, subtitle string) error {
	w, h := r.surf.Size()
	r.surf.FillRect(0, 0, w, h, r.pal.Background)
	r.errMsg = ""

	r.surf.SetForeground(r.pal.Title)
	r.surf.DrawText(0, r.layout.TitleY, title, AlignCenter)
	if subtitle != "" {
		r.surf.SetForeground(r.pal.Subtitle)
		r.surf.DrawText(0, r.layout.SubtitleY, subtitle, AlignCenter)
	}
	return r.surf.Present()
}

// ShowError puts msg on the error line. Repeating the current message is a no-op.
func (r *Renderer) ShowError(msg string) {
	if msg == r.errMsg {
		return
	}
	r.surf.ClearLine(r.layout.ErrorLine)
	r.errMsg = msg
	if msg == "" {
		return
	}
	r.surf.SetForeground(r.pal.Error)
	r.surf.DrawTextLine(r.layout.ErrorLine, msg)
}

// Error returns the text on the error line.
func (r *Renderer) Error() string { return r.errMsg }

// Step draws the touch line, the elapsed time, and a completed capture if
// there is one, then re-arms the capture and presents.
func (r *Renderer) Step() error {
	r.drawTouch()
	r.drawElapsed()

	if r.m != nil {
		if r.m.Consume(r.drawSamples) {
			r.toggleLED()
		}
		if r.m.State() == capture.Idle {
			r.request()
		}
		r.reportEvents()
	}

	r.frames++
	return r.surf.Present()
}

func (r *Renderer) drawTouch() {
	n := 0
	if r.touch != nil {
		n = r.touch.ReadTouch(r.pts[:])
	}
	r.surf.ClearLine(r.layout.TouchLine)
	if n <= 0 {
		return
	}
	r.surf.SetForeground(r.pal.Touch)
	r.surf.DrawTextLine(r.layout.TouchLine, FormatTouch(r.pts[0]))
}

func (r *Renderer) drawElapsed() {
	w, _ := r.surf.Size()
	r.surf.FillRect(0, r.layout.HeaderY, w, r.layout.LineHeight, r.pal.Background)
	r.surf.SetForeground(r.pal.Header)
	r.surf.DrawText(0, r.layout.HeaderY, FormatElapsed(r.clock.Millis()), AlignCenter)
}

func (r *Renderer) drawSamples(s capture.Samples) {
	p := r.plot
	if p.W <= 0 || p.H <= 0 {
		return
	}
	r.surf.FillRect(p.X, p.Y, p.W, p.H, r.pal.PlotFill)

	// Columns are counted from the layout's plot origin.
	width := p.W + p.X - r.layout.Plot.X
	r.layout.Trace(s, width, func(x, y int16) {
		if p.contains(x, y) {
			r.surf.DrawPixel(x, y, r.pal.Trace)
		}
	})
}

func (r *Renderer) request() {
	err := r.m.RequestCapture()
	switch {
	case err == nil:
		if r.errMsg != "" {
			r.logf("capture: recovered")
		}
		r.ShowError("")
	case errors.Is(err, capture.ErrNotIdle):
	default:
		msg := err.Error()
		if msg != r.errMsg {
			r.logf("%s", msg)
		}
		r.ShowError(msg)
	}
}

func (r *Renderer) reportEvents() {
	r.m.DrainEvents(func(ev capture.Event) {
		r.logf("capture: %s", ev)
	})
	if d := r.m.DroppedEvents(); d != r.dropped {
		r.logf("capture: %d events dropped", d-r.dropped)
		r.dropped = d
	}
}

func (r *Renderer) toggleLED() {
	if r.led == nil {
		return
	}
	r.ledOn = !r.ledOn
	if r.ledOn {
		r.led.High()
	} else {
		r.led.Low()
	}
}

func (r *Renderer) logf(format string, args ...any) {
	if r.log == nil {
		return
	}
	r.log.WriteLineString(fmt.Sprintf(format, args...))
}
