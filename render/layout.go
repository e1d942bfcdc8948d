package render

import "image/color"

// Rect is a screen rectangle in pixels.
type Rect struct {
	X, Y, W, H int16
}

// Layout places the status lines and the plot. Line numbers count text lines
// of LineHeight pixels from the top of the screen.
type Layout struct {
	LineHeight int16

	TitleY    int16
	SubtitleY int16
	ErrorLine int
	TouchLine int
	// HeaderY is the top of the centered elapsed-time text.
	HeaderY int16

	Plot Rect
	// Baseline is the row a zero sample maps to.
	Baseline int16
	// Decimation is the sample stride; every Decimation-th sample is one column.
	Decimation int
	// Divisor scales a sample to rows.
	Divisor int
}

// DefaultLayout matches a 480x272 panel.
func DefaultLayout() Layout {
	return Layout{
		LineHeight: 16,
		TitleY:     0,
		SubtitleY:  40,
		ErrorLine:  2,
		TouchLine:  3,
		HeaderY:    70,
		Plot:       Rect{X: 0, Y: 140, W: 480, H: 140},
		Baseline:   210,
		Decimation: 4,
		Divisor:    500,
	}
}

func (l Layout) normalize() Layout {
	d := DefaultLayout()
	if l.LineHeight <= 0 {
		l.LineHeight = d.LineHeight
	}
	if l.Decimation <= 0 {
		l.Decimation = d.Decimation
	}
	if l.Divisor == 0 {
		l.Divisor = d.Divisor
	}
	return l
}

// clip returns the part of the plot region that lies on a w x h screen.
func (r Rect) clip(w, h int16) Rect {
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.W, r.Y+r.H
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > w {
		x1 = w
	}
	if y1 > h {
		y1 = h
	}
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func (r Rect) contains(x, y int16) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Palette holds the colors of each screen element.
type Palette struct {
	Background color.RGBA
	Title      color.RGBA
	Subtitle   color.RGBA
	Header     color.RGBA
	Touch      color.RGBA
	Error      color.RGBA
	PlotFill   color.RGBA
	Trace      color.RGBA
}

var (
	colorBlack      = color.RGBA{A: 0xff}
	colorWhite      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorBlue       = color.RGBA{B: 0xff, A: 0xff}
	colorRed        = color.RGBA{R: 0xff, A: 0xff}
	colorDarkBlue   = color.RGBA{B: 0x80, A: 0xff}
	colorLightBlue  = color.RGBA{R: 0x80, G: 0x80, B: 0xff, A: 0xff}
	colorLightGreen = color.RGBA{R: 0x80, G: 0xff, B: 0x80, A: 0xff}
)

func DefaultPalette() Palette {
	return Palette{
		Background: colorBlack,
		Title:      colorBlue,
		Subtitle:   colorWhite,
		Header:     colorWhite,
		Touch:      colorLightGreen,
		Error:      colorRed,
		PlotFill:   colorDarkBlue,
		Trace:      colorLightBlue,
	}
}
