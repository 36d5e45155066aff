package phase

import "github.com/cockroachdb/errors"

// MaxClosingPhases is the number of closing phases that can own a warning.
const MaxClosingPhases = 2

// ErrInvalidSequence is returned when a phase list breaks the sequence invariants.
var ErrInvalidSequence = errors.New("invalid phase sequence")

// Sequence is the ordered, immutable list of phases of a run.
type Sequence struct {
	phases []Phase
}

// NewSequence validates the phases and creates a sequence.
// The list must be non-empty, indexed 0..n-1 in order, and end with the only
// zero-duration (terminal) phase.
func NewSequence(phases []Phase) (*Sequence, error) {
	if len(phases) == 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "no phases")
	}

	closing := 0
	last := len(phases) - 1
	for i, p := range phases {
		if p.Index != i {
			return nil, errors.Wrapf(ErrInvalidSequence, "phase %q has index %d, expected %d", p.Name, p.Index, i)
		}
		if p.Name == "" {
			return nil, errors.Wrapf(ErrInvalidSequence, "phase %d has no name", i)
		}
		if p.Duration < 0 {
			return nil, errors.Wrapf(ErrInvalidSequence, "phase %q has negative duration %d", p.Name, p.Duration)
		}
		if p.Duration == 0 && i != last {
			return nil, errors.Wrapf(ErrInvalidSequence, "phase %q has zero duration but is not the last phase", p.Name)
		}
		if p.Duration > 0 && i == last {
			return nil, errors.Wrapf(ErrInvalidSequence, "last phase %q must have zero duration", p.Name)
		}
		if p.Closing && i != last {
			closing++
		}
	}
	if closing > MaxClosingPhases {
		return nil, errors.Wrapf(ErrInvalidSequence, "%d closing phases, at most %d supported", closing, MaxClosingPhases)
	}

	copied := make([]Phase, len(phases))
	copy(copied, phases)
	return &Sequence{phases: copied}, nil
}

// Default returns the Nightreign day sequence.
func Default() *Sequence {
	seq, err := NewSequence(DefaultPhases())
	if err != nil {
		panic(err)
	}
	return seq
}

// Len returns the number of phases.
func (s *Sequence) Len() int {
	return len(s.phases)
}

// LastIndex returns the index of the terminal phase.
func (s *Sequence) LastIndex() int {
	return len(s.phases) - 1
}

// Contains checks if the index addresses a phase of the sequence.
func (s *Sequence) Contains(index int) bool {
	return index >= 0 && index < len(s.phases)
}

// At returns the phase at the given index.
func (s *Sequence) At(index int) (Phase, bool) {
	if !s.Contains(index) {
		return Phase{}, false
	}
	return s.phases[index], true
}

// IsTerminal checks if the index is the terminal phase.
func (s *Sequence) IsTerminal(index int) bool {
	return index == s.LastIndex()
}

// Phases returns a copy of the phases.
func (s *Sequence) Phases() []Phase {
	result := make([]Phase, len(s.phases))
	copy(result, s.phases)
	return result
}

// TotalRemaining returns the sum of durations from the given phase up to the
// phase before the terminal one.
func (s *Sequence) TotalRemaining(from int) int {
	if from < 0 {
		from = 0
	}
	total := 0
	for i := from; i < s.LastIndex(); i++ {
		total += s.phases[i].Duration
	}
	return total
}

// TotalDuration returns the duration of the whole run up to the terminal phase.
func (s *Sequence) TotalDuration() int {
	return s.TotalRemaining(0)
}

// ClosingOrdinal returns the position of the phase among closing phases
// (0 for the first one), or -1 if the phase is not a closing phase.
func (s *Sequence) ClosingOrdinal(index int) int {
	if !s.Contains(index) || s.IsTerminal(index) || !s.phases[index].Closing {
		return -1
	}
	ordinal := 0
	for i := 0; i < index; i++ {
		if s.phases[i].Closing {
			ordinal++
		}
	}
	return ordinal
}
