// Package display renders timer state to a terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/osa030/nightreign-timer/internal/app/countdown"
	"github.com/osa030/nightreign-timer/internal/domain/phase"
)

// DefaultBossMessage is printed when the terminal phase is reached.
const DefaultBossMessage = "Boss Fight! Good luck!"

// tickPrintInterval is how often a non-inline display prints a tick, in remaining seconds.
const tickPrintInterval = 30

var (
	calmColor    = color.New(color.FgGreen)
	cautionColor = color.New(color.FgYellow)
	dangerColor  = color.New(color.FgRed, color.Bold)
	bossColor    = color.New(color.FgMagenta, color.Bold)
	mutedColor   = color.New(color.FgWhite)
	noticeColor  = color.New(color.FgCyan, color.Bold)
)

// Config holds renderer configuration.
type Config struct {
	Out         io.Writer // Defaults to stdout
	NoColor     bool      // Disable color output (sets color.NoColor globally)
	Inline      bool      // Redraw the status line in place when Out is a terminal
	BossMessage string
}

// Renderer draws a status line per timer event and prints notifications.
type Renderer struct {
	mu          sync.Mutex
	out         io.Writer
	inline      bool
	bossMessage string
	sequence    *phase.Sequence
	views       views
	dirty       bool // An inline status line is on screen
}

// New creates a renderer for the phase sequence.
func New(seq *phase.Sequence, cfg Config) *Renderer {
	if cfg.NoColor {
		color.NoColor = true
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	bossMessage := cfg.BossMessage
	if bossMessage == "" {
		bossMessage = DefaultBossMessage
	}
	return &Renderer{
		out:         out,
		inline:      cfg.Inline && isTerminal(out),
		bossMessage: bossMessage,
		sequence:    seq,
		views:       newViews(seq),
	}
}

// HandleEvent renders a timer event.
func (r *Renderer) HandleEvent(e countdown.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.views.update(e.Snapshot)

	switch e.Type {
	case countdown.EventWarning:
		r.notify(cautionColor, e.Message)
	case countdown.EventTerminalReached:
		r.notify(bossColor, r.bossMessage)
	case countdown.EventReset:
		r.notify(noticeColor, "Timer reset")
	case countdown.EventPhaseChanged:
		r.notify(noticeColor, e.Snapshot.PhaseName)
	case countdown.EventTick:
		if !r.inline && e.Snapshot.TimeRemaining%tickPrintInterval != 0 {
			return
		}
	}
	r.status(e.Snapshot)
}

// View returns the display state of one phase.
func (r *Renderer) View(index int) (PhaseView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views[index]
	if !ok {
		return PhaseView{}, false
	}
	return *v, true
}

// StatusLine formats the status line for a snapshot.
func (r *Renderer) StatusLine(s countdown.Snapshot) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusLine(s)
}

func (r *Renderer) statusLine(s countdown.Snapshot) string {
	c := urgencyColor(s)
	if s.Terminal {
		return fmt.Sprintf("%s  %s  %s%s",
			bossColor.Sprint(s.PhaseName),
			NextEventText(r.sequence, s),
			timeline(r.views),
			stateSuffix(s),
		)
	}
	return fmt.Sprintf("%s %s %s  %s  %s  %s%s",
		c.Sprint(s.PhaseName),
		c.Sprint(countdown.FormatTime(remaining(s))),
		progressBar(s.Progress),
		mutedColor.Sprintf("total %s", countdown.FormatTime(s.TotalRemaining)),
		NextEventText(r.sequence, s),
		timeline(r.views),
		stateSuffix(s),
	)
}

func (r *Renderer) status(s countdown.Snapshot) {
	line := r.statusLine(s)
	if r.inline {
		fmt.Fprintf(r.out, "\r\033[K%s", line)
		r.dirty = true
		return
	}
	fmt.Fprintln(r.out, line)
}

func (r *Renderer) notify(c *color.Color, msg string) {
	if r.dirty {
		fmt.Fprintln(r.out)
		r.dirty = false
	}
	fmt.Fprintln(r.out, c.Sprintf(">> %s", msg))
}

// Println prints a message above the status line.
func (r *Renderer) Println(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dirty {
		fmt.Fprintln(r.out)
		r.dirty = false
	}
	fmt.Fprintln(r.out, msg)
}

func urgencyColor(s countdown.Snapshot) *color.Color {
	switch s.Urgency {
	case countdown.UrgencyDanger:
		return dangerColor
	case countdown.UrgencyCaution:
		return cautionColor
	default:
		return calmColor
	}
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
