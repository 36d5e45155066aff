// Package session provides the session manager.
package session

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/nightreign-timer/internal/app/countdown"
	"github.com/osa030/nightreign-timer/internal/app/cue"
	"github.com/osa030/nightreign-timer/internal/app/display"
	"github.com/osa030/nightreign-timer/internal/app/notification"
	"github.com/osa030/nightreign-timer/internal/domain/phase"
	"github.com/osa030/nightreign-timer/internal/infra/config"
)

// Options holds per-run settings that are not part of the config file.
type Options struct {
	Out       io.Writer           // Display output, defaults to stdout
	Scheduler countdown.Scheduler // Nil uses the real clock
	Mode      string              // Overrides the configured mode when set
}

// Manager runs one timer session: it owns the timer and fans its events out
// to the display, the cues and itself.
type Manager struct {
	mu sync.RWMutex

	// Configuration
	config *config.Config

	// Components
	timer        *countdown.Timer
	notification *notification.Manager
	cueChain     *cue.Chain
	display      *display.Renderer

	runID string

	done     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a new session manager.
func NewManager(cfg *config.Config, opts Options) (*Manager, error) {
	seq, err := cfg.PhaseSequence()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build phase sequence")
	}

	modeName := cfg.Timer.Mode
	if opts.Mode != "" {
		modeName = opts.Mode
	}
	mode, err := countdown.ParseMode(modeName)
	if err != nil {
		return nil, err
	}

	cueChain, err := newCueChain(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to set up cues")
	}

	m := &Manager{
		config:       cfg,
		notification: notification.NewManager(),
		cueChain:     cueChain,
		display: display.New(seq, display.Config{
			Out:         opts.Out,
			NoColor:     cfg.Display.NoColor,
			Inline:      cfg.InlineDisplay(),
			BossMessage: cfg.Messages.Boss,
		}),
		runID: uuid.New().String(),
		done:  make(chan struct{}),
	}

	m.notification.Subscribe("display", m.display)
	m.notification.Subscribe("cues", m.cueChain)
	m.notification.Subscribe("session", countdown.HandlerFunc(m.handleEvent))

	m.timer = countdown.New(seq, countdown.Config{
		Mode:             mode,
		TickInterval:     cfg.TickInterval(),
		ChainDelay:       cfg.ChainDelay(),
		WarningThreshold: cfg.Timer.WarningThresholdSec,
		DangerThreshold:  cfg.Timer.DangerThresholdSec,
		CautionThreshold: cfg.Timer.CautionThresholdSec,
		WarningMessages: map[countdown.Warning]string{
			countdown.WarningFirst:  cfg.Messages.FirstWarning,
			countdown.WarningSecond: cfg.Messages.SecondWarning,
		},
	}, opts.Scheduler, m.notification)

	zlog.Info().Msgf("session created: run_id=%s mode=%s phases=%d cues=%d",
		m.runID, mode, seq.Len(), len(cueChain.Cues()))
	return m, nil
}

// newCueChain creates the enabled cues in name order.
func newCueChain(cfg *config.Config) (*cue.Chain, error) {
	registry := cue.GetRegistered()
	for name := range cfg.Cues {
		if _, ok := registry[name]; !ok {
			return nil, errors.Newf("unknown cue %q", name)
		}
	}

	chain := cue.NewChain()
	for _, name := range cue.Names() {
		if !cfg.IsCueEnabled(name) {
			continue
		}
		c, err := cue.New(name, cfg.GetCueSettings(name))
		if err != nil {
			return nil, err
		}
		chain.Add(c)
		zlog.Debug().Msgf("cue enabled: %s", name)
	}
	return chain, nil
}

// Start begins the run. A non-negative phase index jumps straight to that
// phase (manual mode only); otherwise the first phase starts.
func (m *Manager) Start(phaseIndex int) error {
	if phaseIndex >= 0 {
		return m.timer.SelectPhase(phaseIndex)
	}
	m.timer.Start()
	return nil
}

// Execute runs one interactive command.
func (m *Manager) Execute(cmd Command) error {
	zlog.Debug().Msgf("command: %s phase=%d run_id=%s", cmd.Kind, cmd.Phase, m.RunID())

	switch cmd.Kind {
	case CommandToggle:
		m.timer.Toggle()
	case CommandStart:
		m.timer.Start()
	case CommandPause:
		m.timer.Pause()
	case CommandReset:
		m.timer.Reset()
	case CommandSelect:
		return m.timer.SelectPhase(cmd.Phase)
	case CommandQuit:
		m.Stop()
	case CommandHelp:
		m.display.Println(HelpText)
	default:
		return errors.Wrapf(ErrUnknownCommand, "%s", cmd.Kind)
	}
	return nil
}

// ReadCommands executes one command per input line until the input ends,
// the context is cancelled or the session stops.
func (m *Manager) ReadCommands(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-m.done:
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.done:
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return errors.Wrap(err, "failed to read commands")
				default:
					return nil
				}
			}
			m.handleLine(line)
		}
	}
}

func (m *Manager) handleLine(line string) {
	cmd, err := ParseCommand(line)
	if err != nil {
		zlog.Debug().Msgf("invalid command: %v", err)
		m.display.Println(err.Error() + " (h for help)")
		return
	}
	if err := m.Execute(cmd); err != nil {
		zlog.Warn().Msgf("command failed: %s: %v", cmd.Kind, err)
		m.display.Println(err.Error())
	}
}

// handleEvent keeps session state in step with the timer.
func (m *Manager) handleEvent(e countdown.Event) {
	switch e.Type {
	case countdown.EventReset:
		m.mu.Lock()
		m.runID = uuid.New().String()
		zlog.Info().Msgf("timer reset: run_id=%s", m.runID)
		m.mu.Unlock()
	case countdown.EventTerminalReached:
		zlog.Info().Msgf("terminal phase reached: run_id=%s elapsed=%d", m.RunID(), e.Snapshot.TotalElapsed)
		if m.config.Timer.ExitOnBoss {
			m.Stop()
		}
	}
}

// Stop stops the timer and ends the session. It is safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.timer.Pause()
		zlog.Info().Msgf("session stopped: run_id=%s", m.RunID())
		close(m.done)
	})
}

// Close stops the session, waits for running cues and removes all subscribers.
func (m *Manager) Close() {
	m.Stop()
	for _, c := range m.cueChain.Cues() {
		if w, ok := c.(interface{ Wait() }); ok {
			w.Wait()
		}
	}
	m.notification.Close()
}

// Done returns a channel closed when the session ends.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// RunID returns the identifier of the current run. Each reset starts a new run.
func (m *Manager) RunID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runID
}

// Snapshot returns the current timer state.
func (m *Manager) Snapshot() countdown.Snapshot {
	return m.timer.Snapshot()
}

// Timer returns the session timer.
func (m *Manager) Timer() *countdown.Timer {
	return m.timer
}

// Sequence returns the phase sequence of the session.
func (m *Manager) Sequence() *phase.Sequence {
	return m.timer.Sequence()
}

// Display returns the session display.
func (m *Manager) Display() *display.Renderer {
	return m.display
}
