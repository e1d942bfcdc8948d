//go:build tinygo && baremetal && picocalc

package hal

import "machine"

const (
	picoCalcWidth  = 320
	picoCalcHeight = 320
)

type picoCalcHAL struct {
	logger *uartLogger
	led    *pinLED
	fb     Framebuffer
	t      *tinyGoTime

	mic *adcMic
}

// New returns a PicoCalc HAL implementation (Pico/Pico2 on the PicoCalc carrier).
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// Microphone: analog MEMS module on the GP28 header pin.
// The PicoCalc has no touch panel; Touch reports no contacts.
func New() HAL {
	logger := newUARTLogger()

	var fb Framebuffer
	if panel, err := newPicoCalcFramebuffer(); err == nil {
		fb = panel
	} else {
		logger.WriteLineString("display: " + err.Error())
		fb = newMemFramebuffer(picoCalcWidth, picoCalcHeight)
	}

	return &picoCalcHAL{
		logger: logger,
		led:    newPinLED(),
		fb:     fb,
		t:      newTinyGoTime(),
	}
}

func (h *picoCalcHAL) Logger() Logger    { return h.logger }
func (h *picoCalcHAL) LED() LED          { return h.led }
func (h *picoCalcHAL) Display() Display  { return tinyGoDisplay{fb: h.fb} }
func (h *picoCalcHAL) Touch() TouchPanel { return nullTouch{} }
func (h *picoCalcHAL) Time() Time        { return h.t }

func (h *picoCalcHAL) Microphone() (Microphone, error) {
	if h.mic == nil {
		h.mic = newADCMic(machine.GP28)
	}
	return h.mic, nil
}

// picoCalcFramebuffer keeps a little-endian RGB565 copy in RAM and blits it
// to the ILI9488 on Present.
type picoCalcFramebuffer struct {
	buf   []byte
	panel *ili9488
}

func newPicoCalcFramebuffer() (*picoCalcFramebuffer, error) {
	panel, err := initILI9488()
	if err != nil {
		return nil, err
	}
	return &picoCalcFramebuffer{
		buf:   make([]byte, picoCalcWidth*picoCalcHeight*2),
		panel: panel,
	}, nil
}

func (f *picoCalcFramebuffer) Width() int          { return picoCalcWidth }
func (f *picoCalcFramebuffer) Height() int         { return picoCalcHeight }
func (f *picoCalcFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *picoCalcFramebuffer) StrideBytes() int    { return picoCalcWidth * 2 }
func (f *picoCalcFramebuffer) Buffer() []byte      { return f.buf }

func (f *picoCalcFramebuffer) ClearRGB(r, g, b uint8) {
	fillRGB565(f.buf, RGB565(r, g, b))
}

func (f *picoCalcFramebuffer) Present() error {
	return f.panel.blit(f.buf, picoCalcWidth, picoCalcHeight)
}
