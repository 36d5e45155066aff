package countdown

import (
	"sync"
	"time"

	"github.com/osa030/nightreign-timer/internal/domain/phase"
)

// stepScheduler records armed callbacks so tests can fire them synchronously.
type stepScheduler struct {
	mu       sync.Mutex
	every    []*armed
	after    []*armed
	lastTick *armed
}

type armed struct {
	d         time.Duration
	fn        func()
	cancelled bool
}

func (s *stepScheduler) Every(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &armed{d: d, fn: fn}
	s.every = append(s.every, a)
	s.lastTick = a
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		a.cancelled = true
	}
}

func (s *stepScheduler) After(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &armed{d: d, fn: fn}
	s.after = append(s.after, a)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		a.cancelled = true
	}
}

// activeTicks returns the number of tick sources not cancelled.
func (s *stepScheduler) activeTicks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.every {
		if !a.cancelled {
			n++
		}
	}
	return n
}

// activeAfters returns the one-shot callbacks not cancelled and not fired.
func (s *stepScheduler) activeAfters() []*armed {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*armed
	for _, a := range s.after {
		if !a.cancelled {
			result = append(result, a)
		}
	}
	return result
}

// fireTicks fires the active tick source n times.
func (s *stepScheduler) fireTicks(n int) {
	for i := 0; i < n; i++ {
		s.mu.Lock()
		var fn func()
		for _, a := range s.every {
			if !a.cancelled {
				fn = a.fn
			}
		}
		s.mu.Unlock()
		if fn == nil {
			return
		}
		fn()
	}
}

// fireAfters fires all pending one-shot callbacks.
func (s *stepScheduler) fireAfters() {
	for _, a := range s.activeAfters() {
		s.mu.Lock()
		a.cancelled = true
		s.mu.Unlock()
		a.fn()
	}
}

// recorder collects events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) HandleEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Event, len(r.events))
	copy(result, r.events)
	return result
}

func (r *recorder) count(eventType EventType) int {
	n := 0
	for _, e := range r.all() {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func (r *recorder) ofType(eventType EventType) []Event {
	var result []Event
	for _, e := range r.all() {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// scenarioSequence is [270 calm][180 closing][210 calm][180 closing][0 closing].
func scenarioSequence() *phase.Sequence {
	seq, err := phase.NewSequence([]phase.Phase{
		{Index: 0, Name: "Beginning of Day", Duration: 270},
		{Index: 1, Name: "First Circle Closing", Duration: 180, Closing: true},
		{Index: 2, Name: "Inner Circle", Duration: 210},
		{Index: 3, Name: "Second Circle Closing", Duration: 180, Closing: true},
		{Index: 4, Name: "Boss Fight!", Duration: 0, Closing: true},
	})
	if err != nil {
		panic(err)
	}
	return seq
}

func newTestTimer(mode Mode, chainDelay time.Duration) (*Timer, *stepScheduler, *recorder) {
	sched := &stepScheduler{}
	rec := &recorder{}
	tm := New(scenarioSequence(), Config{Mode: mode, ChainDelay: chainDelay}, sched, rec)
	return tm, sched, rec
}

func tickN(tm *Timer, n int) {
	for i := 0; i < n; i++ {
		tm.Tick()
	}
}
