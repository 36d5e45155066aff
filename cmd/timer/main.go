// Package main provides the timer entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/nightreign-timer/internal/app/cue"
	"github.com/osa030/nightreign-timer/internal/app/display"
	"github.com/osa030/nightreign-timer/internal/app/session"
	"github.com/osa030/nightreign-timer/internal/infra/config"
	"github.com/osa030/nightreign-timer/internal/infra/logger"
)

var (
	app        = kingpin.New("nightreign-timer", "Phase timer for a Nightreign day")
	configPath = app.Flag("config", "Path to config file (built-in defaults if empty)").Envar("TIMER_CONFIG").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr, warnings only)").String()

	// run command (default)
	runCmd   = app.Command("run", "Run the timer (default)").Default()
	runMode  = runCmd.Flag("mode", "Timer mode: linear or manual (overrides config)").Short('m').Enum("linear", "manual")
	runPhase = runCmd.Flag("phase", "Start at this phase (manual mode)").Short('p').Default("-1").Int()

	// list commands
	listPhasesCmd = app.Command("list-phases", "List the configured phases and exit")
	listCuesCmd   = app.Command("list-cues", "List available cues and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listCuesCmd.FullCommand() {
		printCues()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stderr",
		Level:  "warn",
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
		loggerConfig.Level = "info"
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	closer, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closer.Close()

	// Load config
	zlog.Info().Msgf("Loading config from %q", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if command == listPhasesCmd.FullCommand() {
		if err := printPhases(cfg); err != nil {
			zlog.Fatal().Msgf("Failed to list phases: %v", err)
		}
		return
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Timer error: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the timer session. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	sessionMgr, err := session.NewManager(cfg, session.Options{Mode: *runMode})
	if err != nil {
		return errors.Wrap(err, "failed to create session")
	}
	defer sessionMgr.Close()

	sessionMgr.Display().Println(fmt.Sprintf("%s (%s mode), h for help",
		cfg.Session.Title, sessionMgr.Timer().Mode()))

	if err := sessionMgr.Start(*runPhase); err != nil {
		return errors.Wrap(err, "failed to start timer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inputErrCh := make(chan error, 1)
	go func() {
		inputErrCh <- sessionMgr.ReadCommands(ctx, os.Stdin)
	}()

	// Wait for shutdown signal or session end
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			zlog.Info().Msg("Received shutdown signal...")
			return nil
		case <-sessionMgr.Done():
			zlog.Info().Msg("Session ended, shutting down...")
			return nil
		case err := <-inputErrCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			// input closed, keep running until the session ends or a signal arrives
			zlog.Debug().Msg("command input closed")
			inputErrCh = nil
		}
	}
}

// printCues prints available cues.
func printCues() {
	fmt.Println("Available Cues:")
	registry := cue.GetRegistered()
	for _, name := range cue.Names() {
		c := registry[name]()
		fmt.Printf("  %-10s - %s\n", c.Name(), c.Description())
	}
}

// printPhases prints the configured phase sequence as a table.
func printPhases(cfg *config.Config) error {
	seq, err := cfg.PhaseSequence()
	if err != nil {
		return err
	}
	out, err := display.RenderMarkdown(display.PhaseTable(cfg.Session.Title, seq), cfg.Display.NoColor)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
