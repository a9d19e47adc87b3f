package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/hibernatectl/internal/comp"
	"codeberg.org/mutker/hibernatectl/internal/config"
	"codeberg.org/mutker/hibernatectl/internal/errors"
	"codeberg.org/mutker/hibernatectl/internal/hal"
	"codeberg.org/mutker/hibernatectl/internal/hal/serialconsole"
	"codeberg.org/mutker/hibernatectl/internal/hal/sim"
	"codeberg.org/mutker/hibernatectl/internal/logger"
	"codeberg.org/mutker/hibernatectl/internal/pid"
	"codeberg.org/mutker/hibernatectl/internal/power"
	"codeberg.org/mutker/hibernatectl/internal/telemetry"
)

const banner = "****************** " +
	"Low-power-comp-hibernate-wakeup " +
	"****************** \r\n\n"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	if !cfg.Debug && !cfg.Verbose {
		if level, err := logger.LevelFromString(cfg.LogLevel); err == nil {
			logger.SetLogLevel(level)
		}
	}
	logger.Debug().Msg("Config loaded")

	if err := pid.Write(); err != nil {
		fatal(err)
	}
	defer pid.Remove()

	collector, err := telemetry.NewService(telemetry.Config{
		DBPath:       cfg.TelemetryDB,
		Enabled:      cfg.Telemetry,
		BatchSize:    telemetry.DefaultConfig().BatchSize,
		BatchTimeout: telemetry.DefaultConfig().BatchTimeout,
	})
	if err != nil {
		fatal(err)
	}
	defer collector.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	// Wake from hibernate restarts the whole boot sequence: the low-power
	// state drops all volatile state, so nothing from the previous pass
	// may be reused.
	for {
		err := run(ctx, cfg, collector)
		switch {
		case err == nil:
			logger.Info().Msg("Exiting...")
			return
		case errors.IsCode(err, errors.ErrWakeRestart):
			logger.Info().Msg("Wake condition fired; re-running boot sequence")
		default:
			pid.Remove()
			collector.Close()
			fatal(err)
		}
	}
}

// run executes one full boot-to-terminal-state pass: board bring-up, console
// and comparator init, then the power-mode loop.
func run(ctx context.Context, cfg *config.Config, collector telemetry.Collector) error {
	errFactory := errors.New()

	simCfg := sim.Config{
		SignalFile:   cfg.SignalFile,
		HighZOnSleep: cfg.HighZOnSleep,
		SecureBoot:   cfg.SecureBoot,
		FailCommit:   cfg.FailCommit,
	}

	board := sim.NewBoard(simCfg)
	if err := board.Init(); err != nil {
		return errFactory.Wrap(errors.ErrBoardInit, err)
	}

	console := newConsole(cfg)
	if err := console.Init(); err != nil {
		return errFactory.Wrap(errors.ErrConsoleInit, err)
	}

	// \x1b[2J\x1b[;H - ANSI ESC sequence for clear screen
	console.Printf("\x1b[2J\x1b[;H")
	console.Printf(banner)

	clock := hal.NewSystemClock()

	monitor, err := comp.NewMonitor(sim.NewComparator(cfg.SignalFile), clock, comp.DefaultConfig())
	if err != nil {
		return err
	}

	led := sim.NewLED()
	if err := led.Init(false); err != nil {
		return errFactory.Wrap(errors.ErrLEDInit, err)
	}

	controller := power.NewController(power.Deps{
		Sampler:   monitor,
		LED:       led,
		GPIO:      sim.NewGPIO(),
		Console:   console,
		Power:     sim.NewPowerManager(simCfg),
		Clock:     clock,
		Caps:      board.Caps(),
		Collector: collector,
	})

	return controller.Run(ctx)
}

func newConsole(cfg *config.Config) hal.Console {
	if cfg.Console == "serial" {
		return serialconsole.New(cfg.SerialPort, cfg.SerialBaud)
	}

	return sim.NewConsole()
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func fatal(err error) {
	var domainErr errors.Error
	if errors.As(err, &domainErr) {
		logger.FatalWithCode(domainErr).Msg("")
		return
	}

	logger.Fatal().Err(err).Msg("")
}
