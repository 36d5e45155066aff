// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/nightreign-timer/internal/domain/phase"
)

// Config represents the application configuration.
type Config struct {
	Session  SessionConfig        `yaml:"session"`
	Timer    TimerConfig          `yaml:"timer"`
	Phases   []PhaseConfig        `yaml:"phases" validate:"omitempty,dive"`
	Messages MessagesConfig       `yaml:"messages"`
	Display  DisplayConfig        `yaml:"display"`
	Cues     map[string]CueConfig `yaml:"cues"`
}

// SessionConfig represents session-related configuration.
type SessionConfig struct {
	Title string `yaml:"title" default:"Nightreign"`
}

// TimerConfig represents countdown configuration.
type TimerConfig struct {
	Mode                string `yaml:"mode" default:"linear" validate:"oneof=linear manual"`
	TickIntervalMs      int    `yaml:"tick_interval_ms" default:"1000" validate:"gte=10,lte=60000"`
	ChainDelayMs        *int   `yaml:"chain_delay_ms" default:"1000" validate:"required,gte=0,lte=30000"`
	WarningThresholdSec int    `yaml:"warning_threshold_sec" default:"30" validate:"gte=1,lte=600"`
	DangerThresholdSec  int    `yaml:"danger_threshold_sec" default:"30" validate:"gte=1,lte=600"`
	CautionThresholdSec int    `yaml:"caution_threshold_sec" default:"60" validate:"gte=1,lte=600"`
	ExitOnBoss          bool   `yaml:"exit_on_boss"`
}

// PhaseConfig represents one entry of a custom phase sequence.
type PhaseConfig struct {
	Name        string `yaml:"name" validate:"required"`
	DurationSec int    `yaml:"duration_sec" validate:"gte=0"`
	Closing     bool   `yaml:"closing"`
}

// MessagesConfig represents user-facing messages.
type MessagesConfig struct {
	FirstWarning  string `yaml:"first_warning" default:"Circle closing in 30 seconds!"`
	SecondWarning string `yaml:"second_warning" default:"Second circle closing in 30 seconds!"`
	Boss          string `yaml:"boss" default:"Boss Fight! Good luck!"`
}

// DisplayConfig represents terminal display configuration.
type DisplayConfig struct {
	NoColor bool  `yaml:"no_color"`
	Inline  *bool `yaml:"inline" default:"true"`
}

// CueConfig represents a cue's configuration.
type CueConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() (*Config, error) {
	return Load("")
}

// Load loads configuration from a YAML file. An empty path yields the defaults.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	// Override with environment variables
	if err := cfg.overrideFromEnv(); err != nil {
		return nil, errors.Wrap(err, "failed to apply environment")
	}

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() error {
	if v := os.Getenv("TIMER_MODE"); v != "" {
		c.Timer.Mode = v
	}
	if v := os.Getenv("TIMER_TICK_INTERVAL_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "TIMER_TICK_INTERVAL_MS=%q", v)
		}
		c.Timer.TickIntervalMs = ms
	}
	if v := os.Getenv("TIMER_CHAIN_DELAY_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "TIMER_CHAIN_DELAY_MS=%q", v)
		}
		c.Timer.ChainDelayMs = &ms
	}
	if os.Getenv("NO_COLOR") != "" {
		c.Display.NoColor = true
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.Timer.DangerThresholdSec > c.Timer.CautionThresholdSec {
		return errors.Newf("danger_threshold_sec (%d) must not exceed caution_threshold_sec (%d)",
			c.Timer.DangerThresholdSec, c.Timer.CautionThresholdSec)
	}

	if _, err := c.PhaseSequence(); err != nil {
		return err
	}
	return nil
}

// PhaseSequence builds the phase sequence. Without custom phases it is the
// default Nightreign day.
func (c *Config) PhaseSequence() (*phase.Sequence, error) {
	if len(c.Phases) == 0 {
		return phase.Default(), nil
	}
	phases := make([]phase.Phase, len(c.Phases))
	for i, p := range c.Phases {
		phases[i] = phase.Phase{
			Index:    i,
			Name:     p.Name,
			Duration: p.DurationSec,
			Closing:  p.Closing,
		}
	}
	return phase.NewSequence(phases)
}

// TickInterval returns the tick source interval.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Timer.TickIntervalMs) * time.Millisecond
}

// ChainDelay returns the delay before the next phase starts in manual mode.
func (c *Config) ChainDelay() time.Duration {
	if c.Timer.ChainDelayMs == nil {
		return 0
	}
	return time.Duration(*c.Timer.ChainDelayMs) * time.Millisecond
}

// InlineDisplay reports whether the status line is redrawn in place.
func (c *Config) InlineDisplay() bool {
	return c.Display.Inline == nil || *c.Display.Inline
}

// IsCueEnabled checks if a cue is enabled.
func (c *Config) IsCueEnabled(name string) bool {
	if cue, ok := c.Cues[name]; ok {
		return cue.Enabled
	}
	return false
}

// GetCueSettings returns the settings for a cue.
func (c *Config) GetCueSettings(name string) map[string]any {
	if cue, ok := c.Cues[name]; ok {
		return cue.Settings
	}
	return nil
}
