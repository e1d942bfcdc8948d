package hal

import (
	"errors"

	"tinygo.org/x/drivers/touch"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

var (
	ErrNotImplemented = errors.New("not implemented")

	// ErrDeviceNotReady is returned by BeginCapture before the device is usable.
	ErrDeviceNotReady = errors.New("device not ready")

	// ErrCaptureBusy is returned by BeginCapture while a capture is still running.
	ErrCaptureBusy = errors.New("capture already running")
)

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// MaxTouchPoints is the largest number of simultaneous contacts reported by a panel.
const MaxTouchPoints = 5

// TouchPanel reports the latest known contacts.
//
// ReadTouch fills dst with up to len(dst) points (X, Y in display pixels, Z the
// pressure/weight) and returns how many were written. It never blocks.
type TouchPanel interface {
	ReadTouch(dst []touch.Point) int
}

// Microphone captures signed 16-bit mono samples into caller-owned buffers.
//
// BeginCapture starts filling buf and returns immediately. For every accepted call
// the registered completion func is invoked exactly once, from the device's own
// context (interrupt, audio thread or sampling goroutine), after buf is full.
// The device must not touch buf after calling the completion func.
type Microphone interface {
	SetCompletion(fn func())
	BeginCapture(buf []int16) error
	SampleRate() uint32
}

// Time provides the monotonic millisecond timebase.
type Time interface {
	Millis() uint64
}

// HAL provides the only contact point between the firmware and the outside world.
type HAL interface {
	Logger() Logger
	LED() LED
	Display() Display
	Touch() TouchPanel
	Microphone() (Microphone, error)
	Time() Time
}
