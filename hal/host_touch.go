//go:build !tinygo

package hal

import (
	"sync"

	"tinygo.org/x/drivers/touch"
)

// hostTouch holds the contacts last sampled from the window (mouse or touchscreen).
type hostTouch struct {
	mu  sync.Mutex
	n   int
	pts [MaxTouchPoints]touch.Point
}

func newHostTouch() *hostTouch {
	return &hostTouch{}
}

func (t *hostTouch) ReadTouch(dst []touch.Point) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copy(dst, t.pts[:t.n])
}

func (t *hostTouch) set(pts []touch.Point) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n = copy(t.pts[:], pts)
}
