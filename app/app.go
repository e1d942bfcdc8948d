package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"micscope/capture"
	"micscope/hal"
	"micscope/internal/buildinfo"
	"micscope/render"
)

// Config is the application configuration. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	Title    string
	Subtitle string

	Capture capture.Config
	Layout  render.Layout
	Palette render.Palette
}

func DefaultConfig() Config {
	return Config{
		Title:    "micscope",
		Subtitle: "build " + buildinfo.Short(),
		Capture:  capture.DefaultConfig(),
		Layout:   render.DefaultLayout(),
		Palette:  render.DefaultPalette(),
	}
}

// New wires the capture machine to the microphone and the renderer to the
// display, draws the boot banner, and returns the per-iteration step.
//
// A microphone that fails to open is not fatal: the failure stays on the error
// line and the rest of the screen keeps updating.
func New(h hal.HAL, cfg Config) (func() error, error) {
	if h == nil {
		return nil, errors.New("app: nil hal")
	}
	logger := h.Logger()

	var fb hal.Framebuffer
	if d := h.Display(); d != nil {
		fb = d.Framebuffer()
	}
	if fb == nil {
		return nil, errors.New("app: no framebuffer")
	}
	surf := render.NewFramebufferSurface(fb, cfg.Layout.LineHeight, cfg.Palette.Background)

	var m *capture.Machine
	mic, micErr := h.Microphone()
	if micErr == nil {
		var err error
		m, err = capture.New(mic, cfg.Capture)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		mic.SetCompletion(m.OnCaptureComplete)
	}

	r, err := render.New(render.Options{
		Surface: surf,
		Touch:   h.Touch(),
		Time:    h.Time(),
		Capture: m,
		LED:     h.LED(),
		Logger:  logger,
		Layout:  cfg.Layout,
		Palette: cfg.Palette,
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	if err := r.DrawBanner(cfg.Title, cfg.Subtitle); err != nil {
		logf(logger, "app: banner: %v", err)
	}

	if micErr != nil {
		logf(logger, "app: audio init failed: %v", micErr)
		r.ShowError("audio init failed")
	} else {
		logf(logger, "app: %s %dx%d, %d of %d samples at %d Hz",
			buildinfo.Long(), fb.Width(), fb.Height(),
			cfg.Capture.CaptureSamples, cfg.Capture.StoreSamples, mic.SampleRate())
	}

	return guard(h, r.Step), nil
}

// Run starts the application and never returns (TinyGo entrypoint).
func Run(h hal.HAL) {
	step, err := New(h, DefaultConfig())
	if err != nil {
		logf(h.Logger(), "%v", err)
		select {}
	}

	loop := Loop{Step: step, Yield: runtime.Gosched}
	if err := loop.Run(context.Background()); err != nil {
		logf(h.Logger(), "app: halted: %v", err)
	}
	select {}
}

func logf(l hal.Logger, format string, args ...any) {
	if l == nil {
		return
	}
	l.WriteLineString(fmt.Sprintf(format, args...))
}
