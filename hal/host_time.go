//go:build !tinygo

package hal

import (
	"sync/atomic"
	"time"
)

// hostTime counts whole milliseconds since the HAL was created.
//
// The counter only moves forward: step folds elapsed wall time into it, the
// same way a SysTick handler would.
type hostTime struct {
	ms atomic.Uint64

	now  func() time.Time
	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return newHostTimeWithClock(time.Now)
}

func newHostTimeWithClock(now func() time.Time) *hostTime {
	if now == nil {
		now = time.Now
	}
	return &hostTime{now: now, last: now()}
}

func (t *hostTime) Millis() uint64 {
	t.step()
	return t.ms.Load()
}

func (t *hostTime) step() {
	now := t.now()
	d := now.Sub(t.last)
	t.last = now
	if d <= 0 {
		return
	}

	t.acc += d
	const tickDur = time.Millisecond
	ticks := uint64(t.acc / tickDur)
	if ticks == 0 {
		return
	}
	t.acc = t.acc % tickDur
	t.ms.Add(ticks)
}
