//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// MicSource selects the host Audio Capture Device.
type MicSource string

const (
	// MicSynth generates a deterministic test tone at the configured sample rate.
	MicSynth MicSource = "synth"
	// MicDevice opens the default system capture device.
	MicDevice MicSource = "device"
	// MicWAV replays HostConfig.WAVPath in a loop.
	MicWAV MicSource = "wav"
)

// HostConfig describes the desktop stand-in for the board.
type HostConfig struct {
	Width  int
	Height int

	Mic        MicSource
	SampleRate uint32
	ToneHz     float64
	ToneAmp    int16
	WAVPath    string

	// LogFile, if set, receives a copy of the log with size-based rotation.
	LogFile string
}

// DefaultHostConfig matches the 480x272 panel and a 44.1kHz digital microphone.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		Width:      480,
		Height:     272,
		Mic:        MicSynth,
		SampleRate: 44100,
		ToneHz:     440,
		ToneAmp:    20000,
	}
}

func (c *HostConfig) normalize() {
	def := DefaultHostConfig()
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.Mic == "" {
		c.Mic = def.Mic
	}
	if c.SampleRate == 0 {
		c.SampleRate = def.SampleRate
	}
	if c.ToneHz <= 0 {
		c.ToneHz = def.ToneHz
	}
	if c.ToneAmp == 0 {
		c.ToneAmp = def.ToneAmp
	}
}

type hostHAL struct {
	cfg HostConfig

	logger *hostLogger
	led    *hostLED
	fb     *hostFramebuffer
	touch  *hostTouch
	t      *hostTime

	micOnce sync.Once
	mic     Microphone
	micErr  error
}

// New returns a host HAL implementation with the default configuration.
func New() HAL {
	return NewHost(DefaultHostConfig())
}

// NewHost returns a host HAL implementation.
func NewHost(cfg HostConfig) HAL {
	return newHostHAL(cfg)
}

func newHostHAL(cfg HostConfig) *hostHAL {
	cfg.normalize()
	logger := newHostLogger(cfg.LogFile)
	return &hostHAL{
		cfg:    cfg,
		logger: logger,
		led:    &hostLED{},
		fb:     newHostFramebuffer(cfg.Width, cfg.Height),
		touch:  newHostTouch(),
		t:      newHostTime(),
	}
}

func (h *hostHAL) Logger() Logger    { return h.logger }
func (h *hostHAL) LED() LED          { return h.led }
func (h *hostHAL) Display() Display  { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Touch() TouchPanel { return h.touch }
func (h *hostHAL) Time() Time        { return h.t }

// Microphone opens the configured capture source once and caches the result.
func (h *hostHAL) Microphone() (Microphone, error) {
	h.micOnce.Do(func() {
		switch h.cfg.Mic {
		case MicSynth:
			h.mic = newSynthMic(h.cfg.SampleRate, h.cfg.ToneHz, h.cfg.ToneAmp)
		case MicDevice:
			h.mic, h.micErr = openDeviceMic(h.cfg.SampleRate, h.logger)
		case MicWAV:
			var m *timedMic
			if m, h.micErr = openWAVMic(h.cfg.WAVPath); h.micErr == nil {
				h.mic = m
			}
		default:
			h.micErr = fmt.Errorf("mic: unknown source %q", h.cfg.Mic)
		}
	})
	return h.mic, h.micErr
}

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func newHostLogger(path string) *hostLogger {
	if path == "" {
		return &hostLogger{w: os.Stdout}
	}
	return &hostLogger{w: io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1,
		MaxBackups: 3,
	})}
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// hostLED only records its level; the activity LED toggles on every capture.
type hostLED struct {
	mu sync.Mutex
	on bool
}

func (l *hostLED) High() {
	l.mu.Lock()
	l.on = true
	l.mu.Unlock()
}

func (l *hostLED) Low() {
	l.mu.Lock()
	l.on = false
	l.mu.Unlock()
}

func (l *hostLED) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}
