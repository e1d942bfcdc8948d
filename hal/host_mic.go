//go:build !tinygo

package hal

import (
	"errors"
	"math"
	"sync/atomic"
	"time"
)

// timedMic is a capture device whose samples come from a generator.
//
// Each accepted capture completes on a timer goroutine after the time the
// samples would take at the configured rate, which stands in for the DMA
// transfer-complete interrupt.
type timedMic struct {
	rate uint32

	done atomic.Pointer[func()]
	busy atomic.Bool

	// source is only called by the capture goroutine; captures never overlap.
	source func(buf []int16)
	after  func(d time.Duration, f func())
}

func newTimedMic(rate uint32, source func([]int16)) *timedMic {
	return &timedMic{
		rate:   rate,
		source: source,
		after:  func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// newSynthMic plays back a sine tone with a little noise.
func newSynthMic(rate uint32, hz float64, amp int16) *timedMic {
	t := &tone{
		step:  2 * math.Pi * hz / float64(rate),
		amp:   amp,
		noise: 0x1234567,
	}
	return newTimedMic(rate, t.fill)
}

func (m *timedMic) SampleRate() uint32 { return m.rate }

func (m *timedMic) SetCompletion(fn func()) {
	if fn == nil {
		m.done.Store(nil)
		return
	}
	m.done.Store(&fn)
}

func (m *timedMic) BeginCapture(buf []int16) error {
	if len(buf) == 0 {
		return errors.New("mic: empty capture buffer")
	}
	if m.rate == 0 {
		return ErrDeviceNotReady
	}
	if !m.busy.CompareAndSwap(false, true) {
		return ErrCaptureBusy
	}

	d := time.Duration(len(buf)) * time.Second / time.Duration(m.rate)
	m.after(d, func() {
		m.source(buf)
		m.busy.Store(false)
		if fn := m.done.Load(); fn != nil {
			(*fn)()
		}
	})
	return nil
}

type tone struct {
	step  float64
	amp   int16
	phase float64
	noise uint32
}

func (t *tone) fill(buf []int16) {
	noiseAmp := int32(t.amp / 16)
	for i := range buf {
		v := int32(float64(t.amp) * math.Sin(t.phase))
		if noiseAmp > 0 {
			t.noise = t.noise*1664525 + 1013904223
			v += int32(t.noise>>16)%(2*noiseAmp+1) - noiseAmp
		}
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		buf[i] = int16(v)

		t.phase += t.step
		if t.phase >= 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
	}
}
