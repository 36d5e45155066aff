// Package countdown provides the phase timer state machine.
package countdown

import "github.com/cockroachdb/errors"

// State represents the timer state derived from its counters.
type State int

const (
	StateIdle     State = iota // Phase 0, nothing consumed yet
	StateRunning               // Tick source armed, counting down
	StatePaused                // Counters preserved, tick source released
	StateChaining              // Phase expired, waiting for the next phase to start (manual mode)
	StateTerminal              // Terminal phase reached (absorbing until reset)
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateChaining:
		return "chaining"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Mode selects how phases progress.
type Mode int

const (
	ModeLinear Mode = iota // Phases advance only on expiry
	ModeManual             // Any phase can be selected, expiry chains after a delay
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeLinear:
		return "linear"
	case ModeManual:
		return "manual"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "linear", "":
		return ModeLinear, nil
	case "manual":
		return ModeManual, nil
	default:
		return ModeLinear, errors.Newf("unknown timer mode %q", s)
	}
}

// Urgency classifies how close a closing phase is to its end.
type Urgency int

const (
	UrgencyCalm    Urgency = iota // Nothing to worry about
	UrgencyCaution                // Closing phase, caution threshold reached
	UrgencyDanger                 // Closing phase, danger threshold reached
)

// String returns the string representation of the urgency.
func (u Urgency) String() string {
	switch u {
	case UrgencyCalm:
		return "calm"
	case UrgencyCaution:
		return "caution"
	case UrgencyDanger:
		return "danger"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only view of the timer for renderers.
type Snapshot struct {
	Mode           Mode
	State          State
	PhaseIndex     int
	PhaseName      string
	PhaseDuration  int
	Closing        bool
	Terminal       bool
	TimeRemaining  int
	TotalElapsed   int
	TotalRemaining int // Seconds left in the whole run
	Running        bool
	Danger         bool
	Urgency        Urgency
	Progress       float64 // Fraction of the current phase consumed (0..1)
}

// timerState is the mutable state owned by Timer.
// It is comparable so a reset can be checked against a fresh timer.
type timerState struct {
	phaseIndex     int
	timeRemaining  int
	totalElapsed   int
	totalRemaining int
	running        bool
	chainPending   bool
	warningsFired  WarningSet
}
