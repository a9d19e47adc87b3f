// Package sim implements the hardware capability set on a plain host so the
// daemon can run and be exercised without target silicon. The comparator
// input is driven through a signal file whose content ("0" or "1") an
// operator can flip at runtime.
package sim

import (
	"fmt"
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/hibernatectl/internal/errors"
	"codeberg.org/mutker/hibernatectl/internal/hal"
	"codeberg.org/mutker/hibernatectl/internal/logger"
)

const defaultWakePollInterval = 100 * time.Millisecond

// Config selects the simulated board's behavior
type Config struct {
	// SignalFile holds the comparator input level: "1" reads as high,
	// "0" as low. A missing file reads as high (normal operation).
	SignalFile string
	// HighZOnSleep marks the hardware variant that must park the console
	// bank at high impedance before sleep.
	HighZOnSleep bool
	// SecureBoot marks the secure-capable variant that clears its watchdog
	// during bring-up.
	SecureBoot bool
	// FailCommit makes Hibernate report a commit failure, for exercising
	// the recovery path end to end.
	FailCommit bool
	// WakePollInterval is how often a committed hibernate re-reads the
	// signal file while waiting for the wake condition.
	WakePollInterval time.Duration
}

func readLevel(path string) hal.Level {
	data, err := os.ReadFile(path)
	if err != nil {
		// No signal file yet means nobody pulled the input low.
		return hal.High
	}

	if strings.TrimSpace(string(data)) == "1" {
		return hal.High
	}

	return hal.Low
}

// Board simulates chip and board bring-up
type Board struct {
	cfg         Config
	initialized bool
}

func NewBoard(cfg Config) *Board {
	if cfg.WakePollInterval <= 0 {
		cfg.WakePollInterval = defaultWakePollInterval
	}

	return &Board{cfg: cfg}
}

func (b *Board) Init() error {
	if b.cfg.SecureBoot {
		logger.Debug().Msg("Secure variant: watchdog cleared")
	}

	logger.Debug().
		Str("signal_file", b.cfg.SignalFile).
		Bool("highz_on_sleep", b.cfg.HighZOnSleep).
		Msg("Board peripherals initialized, global interrupts enabled")

	b.initialized = true

	return nil
}

func (b *Board) Caps() hal.Capabilities {
	return hal.Capabilities{
		HighZOnSleep: b.cfg.HighZOnSleep,
		SecureBoot:   b.cfg.SecureBoot,
	}
}

// Comparator simulates the low-power analog comparator
type Comparator struct {
	signalFile  string
	cfg         hal.CompConfig
	ulpEnabled  bool
	initialized bool
	power       hal.PowerLevel
}

func NewComparator(signalFile string) *Comparator {
	return &Comparator{signalFile: signalFile}
}

func (c *Comparator) Init(cfg hal.CompConfig) error {
	c.cfg = cfg
	c.power = cfg.Power
	c.initialized = true

	return nil
}

func (c *Comparator) ConnectULPReference() error {
	errFactory := errors.New()
	if !c.initialized {
		return errFactory.New(hal.ErrNotInitialized)
	}

	return nil
}

func (c *Comparator) EnableULPReference() error {
	errFactory := errors.New()
	if !c.initialized {
		return errFactory.New(hal.ErrNotInitialized)
	}

	c.ulpEnabled = true

	return nil
}

func (c *Comparator) SetPowerLevel(level hal.PowerLevel) error {
	errFactory := errors.New()
	if !c.initialized {
		return errFactory.New(hal.ErrNotInitialized)
	}

	c.power = level

	return nil
}

func (c *Comparator) Read() (hal.Level, error) {
	errFactory := errors.New()
	if !c.initialized || !c.ulpEnabled {
		return hal.Low, errFactory.New(hal.ErrNotInitialized)
	}

	return readLevel(c.signalFile), nil
}

// LED simulates the status LED on the log
type LED struct {
	on          bool
	initialized bool
}

func NewLED() *LED {
	return &LED{}
}

func (l *LED) Init(initialOn bool) error {
	l.on = initialOn
	l.initialized = true

	return nil
}

func (l *LED) Write(on bool) error {
	errFactory := errors.New()
	if !l.initialized {
		return errFactory.New(hal.ErrNotInitialized)
	}

	l.on = on
	logger.Debug().Bool("on", on).Msg("User LED set")

	return nil
}

func (l *LED) Toggle() error {
	errFactory := errors.New()
	if !l.initialized {
		return errFactory.New(hal.ErrNotInitialized)
	}

	l.on = !l.on
	logger.Debug().Bool("on", l.on).Msg("User LED toggled")

	return nil
}

// IsOn reports the current LED level
func (l *LED) IsOn() bool {
	return l.on
}

// GPIO simulates bank-level drive mode control
type GPIO struct {
	modes map[[2]int]hal.DriveMode
}

func NewGPIO() *GPIO {
	return &GPIO{modes: make(map[[2]int]hal.DriveMode)}
}

func (g *GPIO) SetDriveMode(port, pin int, mode hal.DriveMode) error {
	g.modes[[2]int{port, pin}] = mode
	logger.Debug().Int("port", port).Int("pin", pin).Msg("GPIO drive mode set")

	return nil
}

// DriveMode reports the last drive mode set on a pin
func (g *GPIO) DriveMode(port, pin int) (hal.DriveMode, bool) {
	mode, ok := g.modes[[2]int{port, pin}]

	return mode, ok
}

// Console writes status lines to stdout while open and drops them once
// deinitialized, mirroring a released UART.
type Console struct {
	open bool
}

func NewConsole() *Console {
	return &Console{}
}

func (c *Console) Init() error {
	c.open = true

	return nil
}

func (c *Console) Deinit() error {
	c.open = false

	return nil
}

func (c *Console) Printf(format string, args ...any) {
	if !c.open {
		return
	}

	fmt.Fprintf(os.Stdout, format, args...)
}

// PowerManager simulates the hibernate commit. A successful commit parks the
// process until the wake condition holds on the signal file, then returns
// nil so the caller re-runs boot in full.
type PowerManager struct {
	cfg Config
}

func NewPowerManager(cfg Config) *PowerManager {
	if cfg.WakePollInterval <= 0 {
		cfg.WakePollInterval = defaultWakePollInterval
	}

	return &PowerManager{cfg: cfg}
}

func (p *PowerManager) Hibernate(src hal.WakeSource) error {
	errFactory := errors.New()

	if src.Channel != hal.ComparatorChannel {
		return errFactory.WithData(hal.ErrBadWakeSource, src)
	}

	if p.cfg.FailCommit {
		return errFactory.New(hal.ErrHibernateRejected)
	}

	logger.Debug().
		Int("channel", src.Channel).
		Str("level", src.Level.String()).
		Msg("Hibernate committed; waiting for wake condition")

	for readLevel(p.cfg.SignalFile) != src.Level {
		time.Sleep(p.cfg.WakePollInterval)
	}

	return nil
}

var (
	_ hal.Board        = (*Board)(nil)
	_ hal.Comparator   = (*Comparator)(nil)
	_ hal.LED          = (*LED)(nil)
	_ hal.GPIO         = (*GPIO)(nil)
	_ hal.Console      = (*Console)(nil)
	_ hal.PowerManager = (*PowerManager)(nil)
)
