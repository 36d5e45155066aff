package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/cockroachdb/errors"

	"github.com/osa030/nightreign-timer/internal/app/countdown"
	"github.com/osa030/nightreign-timer/internal/domain/phase"
)

// PhaseTable returns the phase sequence as a markdown table.
func PhaseTable(title string, seq *phase.Sequence) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	b.WriteString("| # | Phase | Duration | Circle closing |\n")
	b.WriteString("|---|-------|----------|----------------|\n")
	for _, p := range seq.Phases() {
		duration := countdown.FormatTime(p.Duration)
		if seq.IsTerminal(p.Index) {
			duration = "-"
		}
		closing := ""
		if p.Closing {
			closing = "yes"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", p.Index, p.Name, duration, closing)
	}
	fmt.Fprintf(&b, "\nTotal until the boss: **%s**\n", countdown.FormatTime(seq.TotalDuration()))
	return b.String()
}

// RenderMarkdown renders markdown content for terminal display.
// If noColor is true, returns the content unchanged.
func RenderMarkdown(content string, noColor bool) (string, error) {
	if noColor {
		return content, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", errors.Wrap(err, "create renderer")
	}

	result, err := renderer.Render(content)
	if err != nil {
		return "", errors.Wrap(err, "render markdown")
	}
	return result, nil
}
