package countdown

// EventType represents a timer event type.
type EventType int

const (
	EventTick            EventType = iota // One second consumed
	EventPhaseChanged                     // A new phase became current
	EventWarning                          // A warning threshold was crossed
	EventTerminalReached                  // The terminal phase was reached
	EventReset                            // The timer was reset
	EventStateChanged                     // Started or paused
	EventPhaseExpired                     // Phase time fully consumed, next phase follows after the chain delay
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTick:
		return "tick"
	case EventPhaseChanged:
		return "phase_changed"
	case EventWarning:
		return "warning"
	case EventTerminalReached:
		return "terminal_reached"
	case EventReset:
		return "reset"
	case EventStateChanged:
		return "state_changed"
	case EventPhaseExpired:
		return "phase_expired"
	default:
		return "unknown"
	}
}

// Event represents a timer event.
type Event struct {
	Type       EventType
	Snapshot   Snapshot // Timer state after the change
	Warning    Warning  // Set for EventWarning
	Message    string   // Set for EventWarning
	SequenceNo uint64   // Assigned by the notification hub
}

// Handler consumes timer events.
type Handler interface {
	HandleEvent(Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(Event)

// HandleEvent calls f(e).
func (f HandlerFunc) HandleEvent(e Event) {
	f(e)
}

// Callbacks adapts per-event functions to Handler. Nil functions are skipped.
type Callbacks struct {
	OnTick            func(s Snapshot)
	OnPhaseChanged    func(phaseIndex int)
	OnWarning         func(w Warning, message string)
	OnTerminalReached func()
	OnReset           func()
	OnStateChanged    func(s Snapshot)
	OnPhaseExpired    func(phaseIndex int)
}

// HandleEvent dispatches the event to the matching callback.
func (c Callbacks) HandleEvent(e Event) {
	switch e.Type {
	case EventTick:
		if c.OnTick != nil {
			c.OnTick(e.Snapshot)
		}
	case EventPhaseChanged:
		if c.OnPhaseChanged != nil {
			c.OnPhaseChanged(e.Snapshot.PhaseIndex)
		}
	case EventWarning:
		if c.OnWarning != nil {
			c.OnWarning(e.Warning, e.Message)
		}
	case EventTerminalReached:
		if c.OnTerminalReached != nil {
			c.OnTerminalReached()
		}
	case EventReset:
		if c.OnReset != nil {
			c.OnReset()
		}
	case EventStateChanged:
		if c.OnStateChanged != nil {
			c.OnStateChanged(e.Snapshot)
		}
	case EventPhaseExpired:
		if c.OnPhaseExpired != nil {
			c.OnPhaseExpired(e.Snapshot.PhaseIndex)
		}
	}
}
