// Package capture gates the shared sample buffer between the main loop and the
// capture device's completion interrupt.
//
// The buffer has two owners over time. While a capture is InFlight the device
// may write it; while it is Complete the main loop may read it. The state word
// is the only synchronization: the main loop moves Idle->InFlight and
// Complete->Idle, the interrupt moves InFlight->Complete, each with a single
// compare-and-swap. Nothing on the interrupt path locks or allocates.
package capture

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// State is the capture gate state.
type State uint32

const (
	// Idle: no capture outstanding; the main loop may request one.
	Idle State = iota
	// InFlight: the device owns the buffer.
	InFlight
	// Complete: the device is done; the main loop may read the buffer once.
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFlight:
		return "in-flight"
	case Complete:
		return "complete"
	default:
		return "invalid"
	}
}

const (
	DefaultStoreSamples   = 65536
	DefaultCaptureSamples = 2048
)

var (
	// ErrNotIdle is returned by RequestCapture while a capture is outstanding
	// or unconsumed. The request is a no-op.
	ErrNotIdle = errors.New("capture: not idle")

	// ErrRejected wraps the device error when BeginCapture refuses a request.
	ErrRejected = errors.New("capture: device rejected request")

	ErrInvalidLength = errors.New("capture: invalid length")
)

// Device is the part of a capture device the gate drives.
type Device interface {
	BeginCapture(buf []int16) error
}

// Config sizes the sample store and the per-capture request.
type Config struct {
	StoreSamples   int
	CaptureSamples int
}

// DefaultConfig is a 2048-sample capture out of a 64Ki-sample store.
func DefaultConfig() Config {
	return Config{
		StoreSamples:   DefaultStoreSamples,
		CaptureSamples: DefaultCaptureSamples,
	}
}

// Validate reports whether the sizes are usable.
func (c Config) Validate() error {
	if c.StoreSamples <= 0 {
		return fmt.Errorf("%w: store of %d samples", ErrInvalidLength, c.StoreSamples)
	}
	if c.CaptureSamples <= 0 || c.CaptureSamples > c.StoreSamples {
		return fmt.Errorf("%w: capture of %d samples (store %d)", ErrInvalidLength, c.CaptureSamples, c.StoreSamples)
	}
	return nil
}

// Stats counts gate activity since creation.
type Stats struct {
	Requested uint64
	Rejected  uint64
	Completed uint64
	Consumed  uint64
	Spurious  uint64
}

// Machine owns the sample store and the state word guarding it.
type Machine struct {
	state atomic.Uint32
	dev   Device
	cfg   Config

	store []int16
	// n is the length of the capture in flight or awaiting consumption.
	// Written by the main loop before the Idle->InFlight swap.
	n int

	requested atomic.Uint64
	rejected  atomic.Uint64
	completed atomic.Uint64
	consumed  atomic.Uint64
	spurious  atomic.Uint64

	events eventRing
}

// New allocates the sample store. The device's completion callback must be
// wired to OnCaptureComplete by the caller.
func New(dev Device, cfg Config) (*Machine, error) {
	if dev == nil {
		return nil, errors.New("capture: nil device")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Machine{
		dev:   dev,
		cfg:   cfg,
		store: make([]int16, cfg.StoreSamples),
	}, nil
}

// Config returns the sizes the machine was built with.
func (m *Machine) Config() Config { return m.cfg }

// State returns the current gate state.
func (m *Machine) State() State {
	return State(m.state.Load())
}

// RequestCapture starts a capture of the configured length.
func (m *Machine) RequestCapture() error {
	return m.RequestCaptureN(m.cfg.CaptureSamples)
}

// RequestCaptureN starts a capture of n samples. It succeeds only from Idle.
//
// The gate moves to InFlight before the device is started, so a completion
// that fires before BeginCapture returns is still accepted. If the device
// refuses, the gate goes back to Idle and the error wraps ErrRejected. A
// completion that slipped in before the refusal is reported as spurious.
func (m *Machine) RequestCaptureN(n int) error {
	if n <= 0 || n > len(m.store) {
		return fmt.Errorf("%w: %d samples (store %d)", ErrInvalidLength, n, len(m.store))
	}
	if m.State() != Idle {
		return ErrNotIdle
	}

	m.n = n
	if !m.state.CompareAndSwap(uint32(Idle), uint32(InFlight)) {
		return ErrNotIdle
	}
	m.requested.Add(1)

	if err := m.dev.BeginCapture(m.store[:n]); err != nil {
		if !m.state.CompareAndSwap(uint32(InFlight), uint32(Idle)) {
			// The device completed a capture it refused. The buffer is not
			// trusted; report it and drop back to Idle.
			seq := m.spurious.Add(1)
			m.events.post(Event{Kind: EventSpurious, State: m.State(), Seq: seq})
			m.state.Store(uint32(Idle))
		}
		m.rejected.Add(1)
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	return nil
}

// OnCaptureComplete is the device completion entry point. It is safe to call
// from interrupt context: it only swaps the state word and bumps counters.
//
// A completion while not InFlight is a driver defect. It is ignored, counted,
// and queued for the main loop to report.
func (m *Machine) OnCaptureComplete() {
	if m.state.CompareAndSwap(uint32(InFlight), uint32(Complete)) {
		m.completed.Add(1)
		return
	}
	seq := m.spurious.Add(1)
	m.events.post(Event{Kind: EventSpurious, State: m.State(), Seq: seq})
}

// Consume lends the completed buffer to fn and then returns the gate to Idle.
//
// If no capture is Complete it returns false without calling fn. fn must not
// retain the Samples: the next request hands the store back to the device.
func (m *Machine) Consume(fn func(Samples)) bool {
	if m.State() != Complete {
		return false
	}
	if fn != nil {
		fn(Samples{s: m.store[:m.n]})
	}
	m.state.Store(uint32(Idle))
	m.consumed.Add(1)
	return true
}

// Stats returns a snapshot of the counters.
func (m *Machine) Stats() Stats {
	return Stats{
		Requested: m.requested.Load(),
		Rejected:  m.rejected.Load(),
		Completed: m.completed.Load(),
		Consumed:  m.consumed.Load(),
		Spurious:  m.spurious.Load(),
	}
}

// DrainEvents hands queued events to fn in order and returns how many there were.
// Main loop only.
func (m *Machine) DrainEvents(fn func(Event)) int {
	n := 0
	for {
		ev, ok := m.events.take()
		if !ok {
			return n
		}
		n++
		if fn != nil {
			fn(ev)
		}
	}
}

// Samples is a read-only view of one completed capture.
type Samples struct {
	s []int16
}

// Len returns the number of captured samples.
func (v Samples) Len() int { return len(v.s) }

// At returns sample i.
func (v Samples) At(i int) int16 { return v.s[i] }
