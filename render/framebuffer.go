package render

import (
	"image/color"

	"micscope/hal"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var _ drivers.Displayer = (*FramebufferSurface)(nil)

// FramebufferSurface draws into an RGB565 hal.Framebuffer.
//
// It is also a drivers.Displayer, so tinyfont renders straight into the buffer.
type FramebufferSurface struct {
	fb   hal.Framebuffer
	font tinyfont.Fonter

	lineHeight int16
	// baseline is the glyph baseline offset from the top of a text line.
	baseline int16

	fg color.RGBA
	bg color.RGBA
}

// NewFramebufferSurface wraps fb. A lineHeight <= 0 selects 16 pixels.
func NewFramebufferSurface(fb hal.Framebuffer, lineHeight int16, bg color.RGBA) *FramebufferSurface {
	if lineHeight <= 0 {
		lineHeight = 16
	}
	return &FramebufferSurface{
		fb:         fb,
		font:       &proggy.TinySZ8pt7b,
		lineHeight: lineHeight,
		baseline:   lineHeight * 3 / 4,
		fg:         color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		bg:         bg,
	}
}

func (s *FramebufferSurface) Size() (x, y int16) {
	if s.fb == nil {
		return 0, 0
	}
	return int16(s.fb.Width()), int16(s.fb.Height())
}

func (s *FramebufferSurface) LineHeight() int16 { return s.lineHeight }

func (s *FramebufferSurface) SetForeground(c color.RGBA) { s.fg = c }

// SetPixel implements drivers.Displayer. Out-of-range pixels are dropped.
func (s *FramebufferSurface) SetPixel(x, y int16, c color.RGBA) {
	if s.fb == nil || s.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := s.fb.Buffer()
	if buf == nil {
		return
	}

	ix := int(x)
	iy := int(y)
	if ix < 0 || ix >= s.fb.Width() || iy < 0 || iy >= s.fb.Height() {
		return
	}

	pixel := hal.RGB565(c.R, c.G, c.B)
	off := iy*s.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

// Display implements drivers.Displayer.
func (s *FramebufferSurface) Display() error { return s.Present() }

func (s *FramebufferSurface) Present() error {
	if s.fb == nil {
		return nil
	}
	return s.fb.Present()
}

func (s *FramebufferSurface) DrawPixel(x, y int16, c color.RGBA) {
	s.SetPixel(x, y, c)
}

func (s *FramebufferSurface) FillRect(x, y, width, height int16, c color.RGBA) {
	if s.fb == nil || s.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := s.fb.Buffer()
	if buf == nil {
		return
	}

	w := s.fb.Width()
	h := s.fb.Height()
	x0 := clampInt(int(x), 0, w)
	y0 := clampInt(int(y), 0, h)
	x1 := clampInt(int(x)+int(width), 0, w)
	y1 := clampInt(int(y)+int(height), 0, h)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	pixel := hal.RGB565(c.R, c.G, c.B)
	lo := byte(pixel)
	hi := byte(pixel >> 8)

	stride := s.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := py * stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off+1 >= len(buf) {
				break
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
}

func (s *FramebufferSurface) DrawText(x, y int16, str string, align Align) {
	if str == "" {
		return
	}
	w, _ := s.Size()
	_, outbox := tinyfont.LineWidth(s.font, str)
	tw := int16(outbox)

	switch align {
	case AlignCenter:
		x += (w - tw) / 2
	case AlignRight:
		x += w - tw
	}
	tinyfont.WriteLine(s, s.font, x, y+s.baseline, str, s.fg)
}

func (s *FramebufferSurface) DrawTextLine(line int, str string) {
	s.DrawText(0, int16(line)*s.lineHeight, str, AlignLeft)
}

// ClearLine paints text line n with the background color.
func (s *FramebufferSurface) ClearLine(line int) {
	w, _ := s.Size()
	s.FillRect(0, int16(line)*s.lineHeight, w, s.lineHeight, s.bg)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
