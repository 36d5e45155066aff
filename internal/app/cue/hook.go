package cue

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/nightreign-timer/internal/app/countdown"
)

// HookConfig represents the configuration for HookCue.
type HookConfig struct {
	OnWarning      []string `mapstructure:"on_warning"`
	OnPhaseChanged []string `mapstructure:"on_phase_changed"`
	OnTerminal     []string `mapstructure:"on_terminal"`
	OnReset        []string `mapstructure:"on_reset"`
	TimeoutMs      int      `mapstructure:"timeout_ms" default:"5000" validate:"gte=100,lte=60000"`
}

// commandRunner runs one shell command with extra environment variables.
type commandRunner func(ctx context.Context, command string, env []string) error

// HookCue runs shell commands on timer events.
// Commands run in the background so a slow hook never delays the timer.
type HookCue struct {
	config HookConfig
	run    commandRunner
	wg     sync.WaitGroup
}

// NewHookCue creates a hook cue that runs commands with sh -c.
func NewHookCue() *HookCue {
	return &HookCue{
		config: HookConfig{TimeoutMs: 5000},
		run:    runShell,
	}
}

func (c *HookCue) Name() string {
	return "hook"
}

func (c *HookCue) Description() string {
	return "Runs shell commands on warnings, phase changes, the boss phase and resets"
}

func (c *HookCue) Triggers() []countdown.EventType {
	return []countdown.EventType{
		countdown.EventWarning,
		countdown.EventPhaseChanged,
		countdown.EventTerminalReached,
		countdown.EventReset,
	}
}

func (c *HookCue) ValidateConfig(settings map[string]any) error {
	var config HookConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	c.config = config
	zlog.Debug().Msgf("hook cue config: %+v", config)
	return nil
}

func (c *HookCue) Handle(event countdown.Event) {
	var commands []string
	switch event.Type {
	case countdown.EventWarning:
		commands = c.config.OnWarning
	case countdown.EventPhaseChanged:
		commands = c.config.OnPhaseChanged
	case countdown.EventTerminalReached:
		commands = c.config.OnTerminal
	case countdown.EventReset:
		commands = c.config.OnReset
	}
	if len(commands) == 0 {
		return
	}

	env := hookEnv(event)
	timeout := time.Duration(c.config.TimeoutMs) * time.Millisecond
	stage := event.Type.String()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for _, command := range commands {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			zlog.Info().Msgf("executing %s hook: %s", stage, command)
			if err := c.run(ctx, command, env); err != nil {
				zlog.Error().Err(err).Msgf("failed to execute %s hook: %s", stage, command)
			}
			cancel()
		}
	}()
}

// Wait blocks until all started hooks have finished.
func (c *HookCue) Wait() {
	c.wg.Wait()
}

// hookEnv describes the event to hook commands.
func hookEnv(event countdown.Event) []string {
	s := event.Snapshot
	env := []string{
		"TIMER_EVENT=" + event.Type.String(),
		"TIMER_PHASE=" + strconv.Itoa(s.PhaseIndex),
		"TIMER_PHASE_NAME=" + s.PhaseName,
		"TIMER_REMAINING=" + countdown.FormatTime(s.TimeRemaining),
		"TIMER_TOTAL_REMAINING=" + countdown.FormatTime(s.TotalRemaining),
	}
	if event.Type == countdown.EventWarning {
		env = append(env,
			"TIMER_WARNING="+event.Warning.String(),
			"TIMER_MESSAGE="+event.Message,
		)
	}
	return env
}

func runShell(ctx context.Context, command string, env []string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return errors.Wrapf(cmd.Run(), "run %q", command)
}

func init() {
	Register("hook", func() Cue {
		return NewHookCue()
	})
}
