//go:build !tinygo && cgo

package hal

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// deviceMic captures from the default system input through miniaudio.
//
// The device streams continuously; BeginCapture arms a target buffer and the
// audio thread fills it from incoming frames, then signals completion from
// that thread.
type deviceMic struct {
	ctx  *malgo.AllocatedContext
	dev  *malgo.Device
	rate uint32

	done atomic.Pointer[func()]

	mu  sync.Mutex
	buf []int16
	n   int
}

func openDeviceMic(rate uint32, log Logger) (Microphone, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		if log != nil {
			log.WriteLineString("mic: " + strings.TrimSpace(message))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("mic: init context: %w", err)
	}

	m := &deviceMic{ctx: ctx, rate: rate}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.SampleRate = rate
	cfg.Alsa.NoMMap = 1

	dev, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{Data: m.onData})
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("mic: init device: %w", err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("mic: start device: %w", err)
	}
	m.dev = dev
	return m, nil
}

func (m *deviceMic) SampleRate() uint32 { return m.rate }

func (m *deviceMic) SetCompletion(fn func()) {
	if fn == nil {
		m.done.Store(nil)
		return
	}
	m.done.Store(&fn)
}

func (m *deviceMic) BeginCapture(buf []int16) error {
	if len(buf) == 0 {
		return fmt.Errorf("mic: empty capture buffer")
	}
	if m.dev == nil || !m.dev.IsStarted() {
		return ErrDeviceNotReady
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.buf != nil {
		return ErrCaptureBusy
	}
	m.buf = buf
	m.n = 0
	return nil
}

func (m *deviceMic) onData(_, in []byte, _ uint32) {
	m.mu.Lock()
	if m.buf == nil {
		m.mu.Unlock()
		return
	}
	for i := 0; i+1 < len(in) && m.n < len(m.buf); i += 2 {
		m.buf[m.n] = int16(binary.LittleEndian.Uint16(in[i:]))
		m.n++
	}
	full := m.n == len(m.buf)
	if full {
		m.buf = nil
		m.n = 0
	}
	m.mu.Unlock()

	if full {
		if fn := m.done.Load(); fn != nil {
			(*fn)()
		}
	}
}
