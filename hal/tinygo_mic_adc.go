//go:build tinygo && baremetal

package hal

import (
	"machine"
	"sync/atomic"
	"time"
)

// adcMicRate is what a Pico ADC can sustain from a goroutine without starving the loop.
const adcMicRate = 8000

// adcMic samples an analog MEMS microphone (biased at mid-rail) on an ADC pin.
//
// Each capture runs on its own goroutine; the completion func is called from
// that goroutine once the buffer is full, like a DMA-complete interrupt.
type adcMic struct {
	adc  machine.ADC
	rate uint32

	done atomic.Pointer[func()]
	busy atomic.Bool
}

func newADCMic(pin machine.Pin) *adcMic {
	machine.InitADC()
	adc := machine.ADC{Pin: pin}
	adc.Configure(machine.ADCConfig{
		Resolution: 12,
		Samples:    1,
	})
	return &adcMic{adc: adc, rate: adcMicRate}
}

func (m *adcMic) SampleRate() uint32 { return m.rate }

func (m *adcMic) SetCompletion(fn func()) {
	if fn == nil {
		m.done.Store(nil)
		return
	}
	m.done.Store(&fn)
}

func (m *adcMic) BeginCapture(buf []int16) error {
	if len(buf) == 0 || m.rate == 0 {
		return ErrDeviceNotReady
	}
	if !m.busy.CompareAndSwap(false, true) {
		return ErrCaptureBusy
	}
	go m.run(buf)
	return nil
}

func (m *adcMic) run(buf []int16) {
	period := time.Second / time.Duration(m.rate)
	next := time.Now()
	for i := range buf {
		// Get is scaled to 16 bits; re-center around zero.
		buf[i] = int16(int32(m.adc.Get()) - 0x8000)
		next = next.Add(period)
		if d := time.Until(next); d > 0 {
			time.Sleep(d)
		}
	}
	m.busy.Store(false)
	if fn := m.done.Load(); fn != nil {
		(*fn)()
	}
}
