package render

import (
	"fmt"

	"micscope/capture"

	"tinygo.org/x/drivers/touch"
)

// FormatTouch renders one touch point for the status line.
func FormatTouch(p touch.Point) string {
	return fmt.Sprintf("x %d, y %d, wt %d", p.X, p.Y, p.Z)
}

// FormatElapsed renders milliseconds as seconds with three decimals.
func FormatElapsed(ms uint64) string {
	return fmt.Sprintf("%d.%03d seconds", ms/1000, ms%1000)
}

// SamplePoint maps sample i with value v to a screen pixel. Division truncates
// toward zero.
func (l Layout) SamplePoint(i int, v int16) (x, y int16) {
	l = l.normalize()
	x = l.Plot.X + int16(i/l.Decimation)
	y = int16(int(l.Baseline) - int(v)/l.Divisor)
	return x, y
}

// Trace calls fn for every plotted sample, at most width columns. Points are
// not clipped; callers drop those outside the plot region.
func (l Layout) Trace(s capture.Samples, width int16, fn func(x, y int16)) {
	l = l.normalize()
	for i := 0; i < s.Len(); i += l.Decimation {
		if i/l.Decimation >= int(width) {
			break
		}
		fn(l.SamplePoint(i, s.At(i)))
	}
}
