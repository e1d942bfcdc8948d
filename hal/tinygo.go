//go:build tinygo && baremetal && !picocalc

package hal

import (
	"machine"

	"tinygo.org/x/drivers/touch"
	"tinygo.org/x/drivers/touch/resistive"
)

const (
	picoWidth  = 480
	picoHeight = 272
)

type tinyGoHAL struct {
	logger *uartLogger
	led    *pinLED
	fb     Framebuffer
	touch  TouchPanel
	t      *tinyGoTime

	mic *adcMic
}

// New returns a Pico 2 (RP2350) HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// Microphone: analog MEMS module on GP28 (ADC2).
// Touch: 4-wire resistive overlay, YP=GP26 XM=GP27 YM=GP20 XP=GP21.
func New() HAL {
	logger := newUARTLogger()
	machine.InitADC()

	fw := &resistive.FourWire{}
	fw.Configure(&resistive.FourWireConfig{
		YP: machine.GP26,
		XM: machine.GP27,
		YM: machine.GP20,
		XP: machine.GP21,
	})

	return &tinyGoHAL{
		logger: logger,
		led:    newPinLED(),
		fb:     newMemFramebuffer(picoWidth, picoHeight),
		touch: &resistiveTouch{
			fw: fw,
			cal: TouchCalibration{
				MinX: 0x1800, MaxX: 0xE800,
				MinY: 0x1800, MaxY: 0xE800,
				Threshold: 0x2000,
				Width:     picoWidth,
				Height:    picoHeight,
			},
		},
		t: newTinyGoTime(),
	}
}

func (h *tinyGoHAL) Logger() Logger    { return h.logger }
func (h *tinyGoHAL) LED() LED          { return h.led }
func (h *tinyGoHAL) Display() Display  { return tinyGoDisplay{fb: h.fb} }
func (h *tinyGoHAL) Touch() TouchPanel { return h.touch }
func (h *tinyGoHAL) Time() Time        { return h.t }

func (h *tinyGoHAL) Microphone() (Microphone, error) {
	if h.mic == nil {
		h.mic = newADCMic(machine.GP28)
	}
	return h.mic, nil
}

type resistiveTouch struct {
	fw  *resistive.FourWire
	cal TouchCalibration
}

func (t *resistiveTouch) ReadTouch(dst []touch.Point) int {
	if len(dst) == 0 {
		return 0
	}
	p, ok := t.cal.Apply(t.fw.ReadTouchPoint())
	if !ok {
		return 0
	}
	dst[0] = p
	return 1
}
