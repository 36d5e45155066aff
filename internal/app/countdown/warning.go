package countdown

// Warning identifies a one-shot warning of a closing phase.
type Warning uint8

const (
	WarningNone   Warning = iota // No warning
	WarningFirst                 // 30 seconds left in the first closing phase
	WarningSecond                // 30 seconds left in the second closing phase
)

// String returns the warning identifier.
func (w Warning) String() string {
	switch w {
	case WarningFirst:
		return "first-warning"
	case WarningSecond:
		return "second-warning"
	default:
		return "none"
	}
}

// warningForOrdinal maps a closing phase ordinal to its warning.
func warningForOrdinal(ordinal int) Warning {
	switch ordinal {
	case 0:
		return WarningFirst
	case 1:
		return WarningSecond
	default:
		return WarningNone
	}
}

// WarningSet is a set of warnings already fired in the current phase occupancy.
type WarningSet uint8

// Has checks if the warning is in the set.
func (s WarningSet) Has(w Warning) bool {
	if w == WarningNone {
		return false
	}
	return s&(1<<w) != 0
}

// Add returns the set with the warning added.
func (s WarningSet) Add(w Warning) WarningSet {
	if w == WarningNone {
		return s
	}
	return s | 1<<w
}

// Len returns the number of warnings in the set.
func (s WarningSet) Len() int {
	n := 0
	for w := WarningFirst; w <= WarningSecond; w++ {
		if s.Has(w) {
			n++
		}
	}
	return n
}

// DefaultWarningMessages returns the messages shown with each warning.
func DefaultWarningMessages() map[Warning]string {
	return map[Warning]string{
		WarningFirst:  "Circle closing in 30 seconds!",
		WarningSecond: "Second circle closing in 30 seconds!",
	}
}

// urgencyFor classifies the remaining time of a phase.
func urgencyFor(closing bool, remaining, caution, danger int) Urgency {
	if !closing || remaining <= 0 {
		return UrgencyCalm
	}
	if remaining <= danger {
		return UrgencyDanger
	}
	if remaining <= caution {
		return UrgencyCaution
	}
	return UrgencyCalm
}
