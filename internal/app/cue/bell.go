package cue

import (
	"io"
	"os"
	"strings"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/nightreign-timer/internal/app/countdown"
)

// BellConfig represents the configuration for BellCue.
// Counts are the number of BEL characters written per event.
type BellConfig struct {
	Warning     int `mapstructure:"warning" default:"2" validate:"gte=0,lte=5"`
	PhaseChange int `mapstructure:"phase_change" default:"1" validate:"gte=0,lte=5"`
	Boss        int `mapstructure:"boss" default:"3" validate:"gte=0,lte=5"`
}

// BellCue rings the terminal bell on warnings, phase transitions and the boss phase.
type BellCue struct {
	mu     sync.Mutex
	out    io.Writer
	config BellConfig
}

// NewBellCue creates a bell cue writing to out (stdout if nil).
func NewBellCue(out io.Writer) *BellCue {
	if out == nil {
		out = os.Stdout
	}
	return &BellCue{
		out:    out,
		config: BellConfig{Warning: 2, PhaseChange: 1, Boss: 3},
	}
}

func (c *BellCue) Name() string {
	return "bell"
}

func (c *BellCue) Description() string {
	return "Rings the terminal bell on warnings, phase changes and the boss phase"
}

func (c *BellCue) Triggers() []countdown.EventType {
	return []countdown.EventType{
		countdown.EventWarning,
		countdown.EventPhaseExpired,
		countdown.EventPhaseChanged,
		countdown.EventTerminalReached,
	}
}

func (c *BellCue) ValidateConfig(settings map[string]any) error {
	var config BellConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	c.config = config
	zlog.Debug().Msgf("bell cue config: %+v", config)
	return nil
}

func (c *BellCue) Handle(event countdown.Event) {
	var count int
	switch event.Type {
	case countdown.EventWarning:
		count = c.config.Warning
	case countdown.EventPhaseExpired:
		// manual mode plays the transition cue on expiry, before the next phase starts
		count = c.config.PhaseChange
	case countdown.EventPhaseChanged:
		if event.Snapshot.Mode == countdown.ModeManual {
			return
		}
		count = c.config.PhaseChange
	case countdown.EventTerminalReached:
		count = c.config.Boss
	}
	if count == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(c.out, strings.Repeat("\a", count)); err != nil {
		zlog.Warn().Err(err).Msg("bell cue: failed to ring")
	}
}

func init() {
	Register("bell", func() Cue {
		return NewBellCue(nil)
	})
}
