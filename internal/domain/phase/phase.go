// Package phase provides the Phase domain entity and the ordered phase sequence.
package phase

// Phase represents one ordered stage of a timed run.
type Phase struct {
	Index    int    // Ordinal position (0-based)
	Name     string // Display label
	Duration int    // Duration in seconds (0 = terminal phase, never expires)
	Closing  bool   // Circle closing phase (eligible for warnings and danger state)
}

// IsTerminal returns true if the phase never expires on its own.
func (p Phase) IsTerminal() bool {
	return p.Duration == 0
}

// Default phase durations of a Nightreign day, in seconds.
const (
	DefaultBeginningOfDay = 270
	DefaultFirstClosing   = 180
	DefaultInnerCircle    = 210
	DefaultSecondClosing  = 180
)

// DefaultPhases returns the phases of a Nightreign day.
func DefaultPhases() []Phase {
	return []Phase{
		{Index: 0, Name: "Beginning of Day", Duration: DefaultBeginningOfDay},
		{Index: 1, Name: "First Circle Closing", Duration: DefaultFirstClosing, Closing: true},
		{Index: 2, Name: "Inner Circle", Duration: DefaultInnerCircle},
		{Index: 3, Name: "Second Circle Closing", Duration: DefaultSecondClosing, Closing: true},
		{Index: 4, Name: "Boss Fight!", Duration: 0},
	}
}
