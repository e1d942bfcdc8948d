package app

import (
	"context"
	"errors"
	"time"
)

// Loop runs Step until Stop reports true, Step fails, or ctx is done.
//
// Production firmware runs with a nil Stop and never returns. Stop is checked
// before every iteration; Yield, if set, runs after every iteration so that
// cooperative schedulers get a chance to run device goroutines. A non-zero
// Interval paces iterations with a ticker instead of running back-to-back.
type Loop struct {
	Step     func() error
	Stop     func() bool
	Yield    func()
	Interval time.Duration
}

func (l Loop) Run(ctx context.Context) error {
	if l.Step == nil {
		return errors.New("app: loop: nil step")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var tick <-chan time.Time
	if l.Interval > 0 {
		t := time.NewTicker(l.Interval)
		defer t.Stop()
		tick = t.C
	}

	for {
		if l.Stop != nil && l.Stop() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := l.Step(); err != nil {
			return err
		}
		if l.Yield != nil {
			l.Yield()
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
	}
}

// StopAfter returns a stop condition that lets n iterations run. n == 0 means
// run forever.
func StopAfter(n uint64) func() bool {
	if n == 0 {
		return nil
	}
	var seen uint64
	return func() bool {
		if seen >= n {
			return true
		}
		seen++
		return false
	}
}
