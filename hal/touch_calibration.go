package hal

import "tinygo.org/x/drivers/touch"

// TouchCalibration maps raw panel readings to display pixels.
type TouchCalibration struct {
	MinX, MaxX int
	MinY, MaxY int
	// Threshold is the minimum raw Z that counts as a contact.
	Threshold int
	Width     int
	Height    int
}

// Apply converts a raw reading. ok is false when the point is not a contact.
// The reported Z is the raw pressure scaled down to 0..255.
func (c TouchCalibration) Apply(raw touch.Point) (p touch.Point, ok bool) {
	if raw.Z <= c.Threshold {
		return touch.Point{}, false
	}
	p.X = scaleAxis(raw.X, c.MinX, c.MaxX, c.Width)
	p.Y = scaleAxis(raw.Y, c.MinY, c.MaxY, c.Height)
	p.Z = raw.Z >> 8
	if p.Z > 255 {
		p.Z = 255
	}
	return p, true
}

func scaleAxis(raw, lo, hi, size int) int {
	if size <= 0 || hi == lo {
		return 0
	}
	v := (raw - lo) * (size - 1) / (hi - lo)
	if v < 0 {
		return 0
	}
	if v > size-1 {
		return size - 1
	}
	return v
}
