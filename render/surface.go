package render

import "image/color"

// Align positions a text run horizontally.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Surface is the drawing contract the render step needs from a display.
//
// Text is drawn in the current foreground color on 16-pixel (by default) text
// lines; line n starts at y = n*LineHeight. All calls are synchronous. Nothing
// is guaranteed visible until Present.
type Surface interface {
	Size() (w, h int16)
	LineHeight() int16

	SetForeground(c color.RGBA)
	// DrawText draws s with its top edge at y. For AlignCenter and AlignRight
	// x is an offset from the centered or right-aligned position.
	DrawText(x, y int16, s string, align Align)
	DrawTextLine(line int, s string)
	ClearLine(line int)

	FillRect(x, y, w, h int16, c color.RGBA)
	DrawPixel(x, y int16, c color.RGBA)

	Present() error
}
