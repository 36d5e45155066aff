package countdown

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler arms cancellable callbacks. The timer owns at most one repeating
// callback (the tick source) and one one-shot callback (the chain delay).
type Scheduler interface {
	// Every calls fn every d until the returned cancel function is called.
	Every(d time.Duration, fn func()) (cancel func())
	// After calls fn once after d unless the returned cancel function is called first.
	After(d time.Duration, fn func()) (cancel func())
}

// ClockScheduler implements Scheduler on a clockwork clock.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type ClockScheduler struct {
	clock clockwork.Clock
}

// NewClockScheduler creates a scheduler. A nil clock uses the real clock.
func NewClockScheduler(clock clockwork.Clock) *ClockScheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ClockScheduler{clock: clock}
}

// Every starts a ticker goroutine. Cancel does not wait for a callback in flight.
func (s *ClockScheduler) Every(d time.Duration, fn func()) func() {
	ctx, cancel := context.WithCancel(context.Background())
	ticker := s.clock.NewTicker(d)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				if ctx.Err() != nil {
					return
				}
				fn()
			}
		}
	}()

	return cancel
}

// After starts a one-shot timer goroutine.
func (s *ClockScheduler) After(d time.Duration, fn func()) func() {
	ctx, cancel := context.WithCancel(context.Background())
	timer := s.clock.NewTimer(d)

	go func() {
		select {
		case <-ctx.Done():
			stopAndDrainTimer(timer)
		case <-timer.Chan():
			if ctx.Err() != nil {
				return
			}
			fn()
		}
	}()

	return cancel
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
