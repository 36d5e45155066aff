package countdown

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/nightreign-timer/internal/domain/phase"
)

// Errors
var (
	ErrInvalidPhase      = errors.New("phase index out of range")
	ErrSelectUnsupported = errors.New("phase selection requires manual mode")
)

// Defaults
const (
	DefaultTickInterval     = time.Second
	DefaultChainDelay       = time.Second
	DefaultWarningThreshold = 30
	DefaultDangerThreshold  = 30
	DefaultCautionThreshold = 60
)

// Config holds timer configuration.
type Config struct {
	Mode             Mode
	TickInterval     time.Duration      // Interval of the tick source (one tick = one second of game time)
	ChainDelay       time.Duration      // Delay before the next phase starts after expiry (manual mode, 0 = immediate)
	WarningThreshold int                // Remaining seconds at which closing phases warn
	DangerThreshold  int                // Remaining seconds at or below which closing phases are in danger
	CautionThreshold int                // Remaining seconds at or below which closing phases are in caution
	WarningMessages  map[Warning]string // Message sent with each warning
}

// Timer is the phase timer state machine.
//
// Commands and ticks are serialized on one mutex and run to completion.
// Events produced by an operation are queued and delivered in order once the
// mutex is released; handlers may read Snapshot.
type Timer struct {
	mu sync.Mutex

	sequence  *phase.Sequence
	config    Config
	scheduler Scheduler
	handler   Handler

	st timerState

	// Tick source and chain delay
	tickCancel  func()
	chainCancel func()
	tickGen     uint64
	chainGen    uint64

	// Event delivery
	pending     []Event
	dispatching bool
}

// New creates a timer in its idle state.
func New(sequence *phase.Sequence, config Config, scheduler Scheduler, handler Handler) *Timer {
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}
	if config.ChainDelay < 0 {
		config.ChainDelay = 0
	}
	if config.WarningThreshold <= 0 {
		config.WarningThreshold = DefaultWarningThreshold
	}
	if config.DangerThreshold <= 0 {
		config.DangerThreshold = DefaultDangerThreshold
	}
	if config.CautionThreshold <= 0 {
		config.CautionThreshold = DefaultCautionThreshold
	}
	messages := DefaultWarningMessages()
	for w, msg := range config.WarningMessages {
		if msg != "" {
			messages[w] = msg
		}
	}
	config.WarningMessages = messages

	if scheduler == nil {
		scheduler = NewClockScheduler(nil)
	}
	if handler == nil {
		handler = HandlerFunc(func(Event) {})
	}

	t := &Timer{
		sequence:  sequence,
		config:    config,
		scheduler: scheduler,
		handler:   handler,
	}
	t.st = t.freshState()
	return t
}

// Mode returns the timer mode.
func (t *Timer) Mode() Mode {
	return t.config.Mode
}

// Sequence returns the phase sequence.
func (t *Timer) Sequence() *phase.Sequence {
	return t.sequence
}

// Snapshot returns the current timer state.
func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Start starts or resumes the countdown. It is a no-op while running and on
// the terminal phase.
func (t *Timer) Start() {
	t.mu.Lock()
	t.startLocked()
	t.unlockAndDispatch()
}

// Pause stops the tick source and keeps all counters for a later Start.
// A chain scheduled after expiry is cancelled and performed by the next Start.
func (t *Timer) Pause() {
	t.mu.Lock()
	t.pauseLocked()
	t.unlockAndDispatch()
}

// Toggle pauses a running timer and starts a stopped one.
func (t *Timer) Toggle() {
	t.mu.Lock()
	if t.st.running || t.chainCancel != nil {
		t.pauseLocked()
	} else {
		t.startLocked()
	}
	t.unlockAndDispatch()
}

// Tick consumes one second. It is a no-op unless running.
func (t *Timer) Tick() {
	t.mu.Lock()
	t.tickLocked()
	t.unlockAndDispatch()
}

// Reset releases the tick source and returns to the idle state.
func (t *Timer) Reset() {
	t.mu.Lock()
	t.releaseTickLocked()
	t.cancelChainLocked()
	t.st = t.freshState()
	zlog.Debug().Msg("countdown: reset")
	t.emitLocked(Event{Type: EventReset})
	t.unlockAndDispatch()
}

// SelectPhase preempts the current phase and starts the given one from its
// full duration. Selecting the terminal phase stops the countdown.
func (t *Timer) SelectPhase(index int) error {
	if t.config.Mode != ModeManual {
		return errors.Wrapf(ErrSelectUnsupported, "select phase %d in %s mode", index, t.config.Mode)
	}
	if !t.sequence.Contains(index) {
		return errors.Wrapf(ErrInvalidPhase, "phase %d not in [0, %d]", index, t.sequence.LastIndex())
	}

	t.mu.Lock()
	t.selectLocked(index)
	t.unlockAndDispatch()
	return nil
}

func (t *Timer) freshState() timerState {
	return timerState{totalRemaining: t.sequence.TotalRemaining(0)}
}

func (t *Timer) startLocked() {
	if t.st.running || t.sequence.IsTerminal(t.st.phaseIndex) {
		return
	}

	if t.st.chainPending {
		t.chainLocked()
		return
	}

	if t.st.timeRemaining == 0 {
		p, _ := t.sequence.At(t.st.phaseIndex)
		t.st.timeRemaining = p.Duration
	}
	t.armTickLocked()
	t.st.running = true
	zlog.Debug().Msgf("countdown: started: phase=%d remaining=%d", t.st.phaseIndex, t.st.timeRemaining)
	t.emitLocked(Event{Type: EventStateChanged})
}

func (t *Timer) pauseLocked() {
	if !t.st.running && t.chainCancel == nil {
		return
	}
	t.releaseTickLocked()
	t.cancelChainLocked()
	t.st.running = false
	zlog.Debug().Msgf("countdown: paused: phase=%d remaining=%d chain_pending=%v",
		t.st.phaseIndex, t.st.timeRemaining, t.st.chainPending)
	t.emitLocked(Event{Type: EventStateChanged})
}

func (t *Timer) tickLocked() {
	if !t.st.running || t.sequence.IsTerminal(t.st.phaseIndex) {
		return
	}

	if t.st.timeRemaining > 0 {
		t.st.timeRemaining--
		t.st.totalElapsed++
		if t.st.totalRemaining > 0 {
			t.st.totalRemaining--
		}
		t.checkWarningsLocked()
		t.emitLocked(Event{Type: EventTick})
		if t.st.timeRemaining > 0 {
			return
		}
	}

	t.expireLocked()
}

// checkWarningsLocked fires the warning of a closing phase once per occupancy.
func (t *Timer) checkWarningsLocked() {
	if t.st.timeRemaining != t.config.WarningThreshold {
		return
	}
	w := warningForOrdinal(t.sequence.ClosingOrdinal(t.st.phaseIndex))
	if w == WarningNone || t.st.warningsFired.Has(w) {
		return
	}
	t.st.warningsFired = t.st.warningsFired.Add(w)
	zlog.Debug().Msgf("countdown: warning: id=%s phase=%d", w, t.st.phaseIndex)
	t.emitLocked(Event{
		Type:    EventWarning,
		Warning: w,
		Message: t.config.WarningMessages[w],
	})
}

// expireLocked handles a phase whose time is fully consumed.
func (t *Timer) expireLocked() {
	if t.config.Mode != ModeManual {
		t.advanceLocked()
		return
	}

	t.releaseTickLocked()
	t.st.running = false
	t.st.chainPending = true
	zlog.Debug().Msgf("countdown: phase expired: phase=%d chain_delay=%v", t.st.phaseIndex, t.config.ChainDelay)

	if t.config.ChainDelay <= 0 {
		t.emitLocked(Event{Type: EventPhaseExpired})
		t.chainLocked()
		return
	}

	t.chainGen++
	gen := t.chainGen
	t.chainCancel = t.scheduler.After(t.config.ChainDelay, func() {
		t.chainFromScheduler(gen)
	})
	t.emitLocked(Event{Type: EventPhaseExpired})
}

// advanceLocked moves to the next phase (linear mode).
func (t *Timer) advanceLocked() {
	if t.sequence.IsTerminal(t.st.phaseIndex) {
		return
	}
	t.st.phaseIndex++
	t.st.warningsFired = 0

	if t.sequence.IsTerminal(t.st.phaseIndex) {
		t.enterTerminalLocked()
		return
	}

	p, _ := t.sequence.At(t.st.phaseIndex)
	t.st.timeRemaining = p.Duration
	zlog.Debug().Msgf("countdown: phase changed: phase=%d name=%s", p.Index, p.Name)
	t.emitLocked(Event{Type: EventPhaseChanged})
}

func (t *Timer) chainLocked() {
	t.cancelChainLocked()
	t.st.chainPending = false
	t.selectLocked(t.st.phaseIndex + 1)
}

func (t *Timer) chainFromScheduler(gen uint64) {
	t.mu.Lock()
	if gen != t.chainGen || t.chainCancel == nil || !t.st.chainPending {
		t.mu.Unlock()
		return
	}
	t.chainCancel = nil
	t.chainLocked()
	t.unlockAndDispatch()
}

func (t *Timer) selectLocked(index int) {
	t.releaseTickLocked()
	t.cancelChainLocked()
	t.st.chainPending = false
	t.st.phaseIndex = index
	t.st.warningsFired = 0
	t.st.totalRemaining = t.sequence.TotalRemaining(index)

	if t.sequence.IsTerminal(index) {
		t.enterTerminalLocked()
		return
	}

	p, _ := t.sequence.At(index)
	t.st.timeRemaining = p.Duration
	t.armTickLocked()
	t.st.running = true
	zlog.Debug().Msgf("countdown: phase selected: phase=%d name=%s duration=%d", p.Index, p.Name, p.Duration)
	t.emitLocked(Event{Type: EventPhaseChanged})
}

func (t *Timer) enterTerminalLocked() {
	t.releaseTickLocked()
	t.st.timeRemaining = 0
	t.st.running = false
	t.st.chainPending = false
	zlog.Debug().Msgf("countdown: terminal phase reached: phase=%d elapsed=%d", t.st.phaseIndex, t.st.totalElapsed)
	t.emitLocked(Event{Type: EventTerminalReached})
}

// armTickLocked acquires the tick source, releasing any previous one.
func (t *Timer) armTickLocked() {
	t.releaseTickLocked()
	t.tickGen++
	gen := t.tickGen
	t.tickCancel = t.scheduler.Every(t.config.TickInterval, func() {
		t.tickFromScheduler(gen)
	})
}

func (t *Timer) releaseTickLocked() {
	if t.tickCancel != nil {
		t.tickCancel()
		t.tickCancel = nil
	}
}

func (t *Timer) cancelChainLocked() {
	if t.chainCancel != nil {
		t.chainCancel()
		t.chainCancel = nil
	}
}

// tickFromScheduler ignores ticks of a tick source that has been released.
func (t *Timer) tickFromScheduler(gen uint64) {
	t.mu.Lock()
	if gen != t.tickGen || t.tickCancel == nil {
		t.mu.Unlock()
		return
	}
	t.tickLocked()
	t.unlockAndDispatch()
}

func (t *Timer) stateLocked() State {
	switch {
	case t.sequence.IsTerminal(t.st.phaseIndex):
		return StateTerminal
	case t.st.running:
		return StateRunning
	case t.st.chainPending && t.chainCancel != nil:
		return StateChaining
	case t.st == t.freshState():
		return StateIdle
	default:
		return StatePaused
	}
}

func (t *Timer) snapshotLocked() Snapshot {
	p, _ := t.sequence.At(t.st.phaseIndex)
	state := t.stateLocked()
	terminal := state == StateTerminal
	closing := p.Closing && !terminal
	remaining := t.st.timeRemaining

	var progress float64
	switch {
	case terminal:
		progress = 1
	case state == StateIdle || p.Duration == 0:
		progress = 0
	default:
		progress = float64(p.Duration-remaining) / float64(p.Duration)
	}

	return Snapshot{
		Mode:           t.config.Mode,
		State:          state,
		PhaseIndex:     t.st.phaseIndex,
		PhaseName:      p.Name,
		PhaseDuration:  p.Duration,
		Closing:        p.Closing,
		Terminal:       terminal,
		TimeRemaining:  remaining,
		TotalElapsed:   t.st.totalElapsed,
		TotalRemaining: t.st.totalRemaining,
		Running:        t.st.running,
		Danger:         closing && remaining > 0 && remaining <= t.config.DangerThreshold,
		Urgency:        urgencyFor(closing, remaining, t.config.CautionThreshold, t.config.DangerThreshold),
		Progress:       progress,
	}
}

func (t *Timer) emitLocked(e Event) {
	e.Snapshot = t.snapshotLocked()
	t.pending = append(t.pending, e)
}

// unlockAndDispatch releases the mutex and delivers queued events.
// Only one goroutine delivers at a time; others leave their events to it.
func (t *Timer) unlockAndDispatch() {
	if t.dispatching || len(t.pending) == 0 {
		t.mu.Unlock()
		return
	}
	t.dispatching = true
	for len(t.pending) > 0 {
		events := t.pending
		t.pending = nil
		t.mu.Unlock()
		for _, e := range events {
			t.handler.HandleEvent(e)
		}
		t.mu.Lock()
	}
	t.dispatching = false
	t.mu.Unlock()
}
