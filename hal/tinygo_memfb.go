//go:build tinygo && baremetal

package hal

// memFramebuffer is a RAM-only framebuffer for boards without a panel driver.
// Drawing works; Present has nowhere to send the pixels.
type memFramebuffer struct {
	w   int
	h   int
	buf []byte
}

func newMemFramebuffer(w, h int) *memFramebuffer {
	return &memFramebuffer{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (f *memFramebuffer) Width() int          { return f.w }
func (f *memFramebuffer) Height() int         { return f.h }
func (f *memFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *memFramebuffer) StrideBytes() int    { return f.w * 2 }
func (f *memFramebuffer) Buffer() []byte      { return f.buf }

func (f *memFramebuffer) ClearRGB(r, g, b uint8) {
	fillRGB565(f.buf, RGB565(r, g, b))
}

func (f *memFramebuffer) Present() error { return nil }
