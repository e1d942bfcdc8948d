//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"tinygo.org/x/drivers/touch"
)

// mouseWeight is reported as Z for a held left mouse button.
const mouseWeight = 64

// poll samples touchscreen contacts, falling back to the left mouse button.
// Ebiten reports positions in layout coordinates, which are framebuffer pixels.
func (t *hostTouch) poll(w, h int) {
	var pts [MaxTouchPoints]touch.Point
	n := 0

	var ids [MaxTouchPoints]ebiten.TouchID
	for _, id := range ebiten.AppendTouchIDs(ids[:0]) {
		if n >= len(pts) {
			break
		}
		x, y := ebiten.TouchPosition(id)
		if !inBounds(x, y, w, h) {
			continue
		}
		pts[n] = touch.Point{X: x, Y: y, Z: mouseWeight}
		n++
	}

	if n == 0 && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if inBounds(x, y, w, h) {
			pts[0] = touch.Point{X: x, Y: y, Z: mouseWeight}
			n = 1
		}
	}

	t.set(pts[:n])
}

func inBounds(x, y, w, h int) bool {
	return x >= 0 && y >= 0 && x < w && y < h
}
