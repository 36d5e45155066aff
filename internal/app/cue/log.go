package cue

import (
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/nightreign-timer/internal/app/countdown"
)

// LogConfig represents the configuration for LogCue.
type LogConfig struct {
	Ticks bool   `mapstructure:"ticks"`
	Level string `mapstructure:"level" default:"info" validate:"oneof=debug info warn"`
}

// LogCue writes a structured log line per timer event.
type LogCue struct {
	logger *zerolog.Logger
	config LogConfig
	level  zerolog.Level
}

// NewLogCue creates a log cue. A nil logger uses the global logger.
func NewLogCue(logger *zerolog.Logger) *LogCue {
	return &LogCue{
		logger: logger,
		config: LogConfig{Level: "info"},
		level:  zerolog.InfoLevel,
	}
}

func (c *LogCue) Name() string {
	return "log"
}

func (c *LogCue) Description() string {
	return "Writes a structured log line for every timer event"
}

func (c *LogCue) Triggers() []countdown.EventType {
	triggers := []countdown.EventType{
		countdown.EventPhaseChanged,
		countdown.EventWarning,
		countdown.EventTerminalReached,
		countdown.EventReset,
		countdown.EventStateChanged,
		countdown.EventPhaseExpired,
	}
	if c.config.Ticks {
		triggers = append(triggers, countdown.EventTick)
	}
	return triggers
}

func (c *LogCue) ValidateConfig(settings map[string]any) error {
	var config LogConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil {
		return err
	}
	c.config = config
	c.level = level
	return nil
}

func (c *LogCue) Handle(event countdown.Event) {
	logger := c.logger
	if logger == nil {
		logger = &zlog.Logger
	}

	s := event.Snapshot
	entry := logger.WithLevel(c.level).
		Str("event", event.Type.String()).
		Uint64("seq", event.SequenceNo).
		Str("mode", s.Mode.String()).
		Str("state", s.State.String()).
		Int("phase", s.PhaseIndex).
		Str("phase_name", s.PhaseName).
		Int("remaining", s.TimeRemaining).
		Int("elapsed", s.TotalElapsed).
		Int("total_remaining", s.TotalRemaining)
	if event.Type == countdown.EventWarning {
		entry = entry.Str("warning", event.Warning.String()).Str("message", event.Message)
	}
	entry.Msg("timer event")
}

func init() {
	Register("log", func() Cue {
		return NewLogCue(nil)
	})
}
