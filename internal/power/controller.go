// Package power implements the power-mode controller: the two-state machine
// that blinks the status LED while the comparator reads high and parks the
// device in hibernate when it reads low.
package power

import (
	"context"
	"time"

	"codeberg.org/mutker/hibernatectl/internal/errors"
	"codeberg.org/mutker/hibernatectl/internal/hal"
	"codeberg.org/mutker/hibernatectl/internal/logger"
	"codeberg.org/mutker/hibernatectl/internal/telemetry"
)

const (
	// BlinkPeriod is the blocking delay between LED toggles while running.
	BlinkPeriod = 500 * time.Millisecond
	// PreSleepWarning is how long the LED stays on before peripheral
	// teardown begins, as visual confirmation that UART access is about
	// to be lost.
	PreSleepWarning = 2000 * time.Millisecond
)

// Machine states. ENTERING_LOW_POWER is terminal for the process lifetime:
// wake re-runs boot in full rather than resuming the running loop.
const (
	StateRunning          = "running"
	StateEnteringLowPower = "entering_low_power"
)

// Sampler is the comparator monitor's contract
type Sampler interface {
	Sample() hal.Level
}

// Deps carries the capability set the controller drives
type Deps struct {
	Sampler   Sampler
	LED       hal.LED
	GPIO      hal.GPIO
	Console   hal.Console
	Power     hal.PowerManager
	Clock     hal.Clock
	Caps      hal.Capabilities
	Collector telemetry.Collector
}

type Controller struct {
	deps Deps
	// ledOn shadows the output signal. The LED is exclusively owned by the
	// controller and never read back from hardware.
	ledOn bool
}

func NewController(deps Deps) *Controller {
	if deps.Collector == nil {
		deps.Collector = telemetry.Noop()
	}

	return &Controller{deps: deps}
}

// Run polls the comparator until either the context is canceled or the
// machine leaves RUNNING. The returned error is nil only on cancellation;
// a wake_restart code means a simulated hibernate committed and woke, and
// any other code is a permanent halt.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Poll loop canceled")

			return nil
		default:
		}

		if c.deps.Sampler.Sample() == hal.High {
			c.blink(ctx)
			continue
		}

		return c.enterHibernate(ctx)
	}
}

func (c *Controller) blink(ctx context.Context) {
	if err := c.deps.LED.Toggle(); err != nil {
		logger.Warn().Err(err).Msg("LED toggle failed")
	}
	c.ledOn = !c.ledOn

	c.deps.Clock.Sleep(BlinkPeriod)
	c.deps.Console.Printf("In Normal mode, blinking User LED at 500ms \r\n\n")
	c.record(ctx, telemetry.Snapshot{
		Timestamp: time.Now(),
		Level:     hal.High.String(),
		State:     StateRunning,
		Event:     "blink",
	})
}

// enterHibernate runs the teardown sequence in strict order. Every step
// before the commit is unconditional: a step failure is logged and the
// sequence continues, because the device is past the point of resuming
// normal operation.
func (c *Controller) enterHibernate(ctx context.Context) error {
	errFactory := errors.New()

	if err := c.deps.LED.Write(true); err != nil {
		logger.Warn().Err(err).Msg("LED on failed")
	}
	c.ledOn = true

	c.deps.Clock.Sleep(PreSleepWarning)

	if err := c.deps.LED.Write(false); err != nil {
		logger.Warn().Err(err).Msg("LED off failed")
	}
	c.ledOn = false

	c.deps.Console.Printf("De-initializing IO and entering Hibernate mode, turned On User LED for 2sec \r\n\n")
	c.record(ctx, telemetry.Snapshot{
		Timestamp: time.Now(),
		Level:     hal.Low.String(),
		State:     StateEnteringLowPower,
		Event:     "hibernate_entry",
	})

	if err := c.deps.Console.Deinit(); err != nil {
		logger.Warn().Err(err).Msg("Console deinit failed")
	}

	if c.deps.Caps.HighZOnSleep {
		if err := c.deps.GPIO.SetDriveMode(hal.ConsoleBankPort, hal.ConsoleBankPin, hal.DriveHighZ); err != nil {
			logger.Warn().Err(err).Msg("High-impedance drive mode failed")
		}
	}

	if err := c.deps.Power.Hibernate(hal.WakeComparator0High); err != nil {
		return c.recoverFailedCommit(ctx, err)
	}

	// Control returned from a successful commit: the backend models wake
	// as a restart request, so the whole boot sequence must run again.
	c.record(ctx, telemetry.Snapshot{
		Timestamp: time.Now(),
		Level:     hal.High.String(),
		State:     StateEnteringLowPower,
		Event:     "wake",
	})

	return errFactory.New(errors.ErrWakeRestart)
}

// recoverFailedCommit restores observability and halts. A failed commit
// leaves the wake-source configuration in an unknown state, so looping back
// into normal operation would paper over a platform error.
func (c *Controller) recoverFailedCommit(ctx context.Context, commitErr error) error {
	errFactory := errors.New()

	if err := c.deps.Console.Init(); err != nil {
		logger.Error().Err(err).Msg("Console reinit failed on recovery path")
	}

	c.deps.Console.Printf("Not entered Hibernate mode\r\n\n")
	c.record(ctx, telemetry.Snapshot{
		Timestamp: time.Now(),
		Level:     hal.Low.String(),
		State:     StateEnteringLowPower,
		Event:     "commit_failed",
	})

	return errFactory.Wrap(errors.ErrHibernateCommit, commitErr)
}

func (c *Controller) record(ctx context.Context, snapshot telemetry.Snapshot) {
	snapshot.LEDOn = c.ledOn

	if err := c.deps.Collector.Record(ctx, &snapshot); err != nil {
		logger.Debug().Err(err).Msg("Telemetry record failed")
	}
}
