package display

import (
	"fmt"
	"strings"

	"github.com/osa030/nightreign-timer/internal/app/countdown"
	"github.com/osa030/nightreign-timer/internal/domain/phase"
)

const (
	bossFightText = "Fight the boss!"
	progressWidth = 20
)

// NextEventText describes what happens after the current phase.
func NextEventText(seq *phase.Sequence, s countdown.Snapshot) string {
	if s.Terminal || seq.IsTerminal(s.PhaseIndex) {
		return bossFightText
	}
	next, ok := seq.At(s.PhaseIndex + 1)
	if !ok {
		return bossFightText
	}
	if seq.IsTerminal(next.Index) {
		return "Next: " + next.Name
	}
	return fmt.Sprintf("Next: %s in %s", next.Name, countdown.FormatTime(remaining(s)))
}

// remaining returns the seconds to show for the current phase.
// An idle timer shows the full duration of its first phase.
func remaining(s countdown.Snapshot) int {
	if s.State == countdown.StateIdle {
		return s.PhaseDuration
	}
	return s.TimeRemaining
}

// timeline renders one marker per phase in index order.
func timeline(v views) string {
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		view, ok := v[i]
		if !ok {
			continue
		}
		switch view.Status {
		case StatusCompleted:
			b.WriteString("■")
		case StatusActive:
			b.WriteString("▶")
		default:
			b.WriteString("□")
		}
	}
	return b.String()
}

// progressBar renders the consumed fraction of a phase.
func progressBar(progress float64) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * progressWidth)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", progressWidth-filled) + "]"
}

// stateSuffix marks a timer that is not counting down.
func stateSuffix(s countdown.Snapshot) string {
	switch s.State {
	case countdown.StatePaused:
		return " (paused)"
	case countdown.StateIdle:
		return " (ready)"
	case countdown.StateChaining:
		return " (next phase starting)"
	default:
		return ""
	}
}
