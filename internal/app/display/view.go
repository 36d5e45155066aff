package display

import (
	"github.com/osa030/nightreign-timer/internal/app/countdown"
	"github.com/osa030/nightreign-timer/internal/domain/phase"
)

// PhaseStatus is the timeline status of one phase.
type PhaseStatus int

const (
	StatusPending   PhaseStatus = iota // Not reached yet
	StatusActive                       // Current phase
	StatusCompleted                    // Already passed
)

// String returns the string representation of the status.
func (s PhaseStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// PhaseView is the display state of one phase.
type PhaseView struct {
	Index     int
	Name      string
	Duration  int
	Closing   bool
	Status    PhaseStatus
	Remaining int
	Danger    bool
	Progress  float64
}

// views holds the display state of every phase, keyed by phase index.
type views map[int]*PhaseView

func newViews(seq *phase.Sequence) views {
	v := make(views, seq.Len())
	for _, p := range seq.Phases() {
		v[p.Index] = &PhaseView{
			Index:     p.Index,
			Name:      p.Name,
			Duration:  p.Duration,
			Closing:   p.Closing,
			Remaining: p.Duration,
		}
	}
	return v
}

// update marks phases before the current one completed and later ones pending.
// A fresh idle timer has no active phase.
func (v views) update(s countdown.Snapshot) {
	fresh := s.State == countdown.StateIdle && s.TotalElapsed == 0
	for index, view := range v {
		view.Danger = false
		view.Progress = 0
		switch {
		case fresh || index > s.PhaseIndex:
			view.Status = StatusPending
			view.Remaining = view.Duration
		case index < s.PhaseIndex:
			view.Status = StatusCompleted
			view.Remaining = 0
			view.Progress = 1
		default:
			view.Status = StatusActive
			view.Remaining = remaining(s)
			view.Danger = s.Danger
			view.Progress = s.Progress
		}
	}
}
