// Package comp implements the comparator monitor: a polled classifier of
// the analog input against the ULP reference.
package comp

import (
	"time"

	"codeberg.org/mutker/hibernatectl/internal/errors"
	"codeberg.org/mutker/hibernatectl/internal/hal"
	"codeberg.org/mutker/hibernatectl/internal/logger"
)

// The analog block needs 50us after the ULP reference is enabled before the
// first reliable sample.
const ulpSettleDelay = 50 * time.Microsecond

// DefaultConfig returns the fixed comparator configuration: low power and
// speed, hysteresis disabled. The input is assumed to be a clean analog
// signal; debouncing a noisy source is a caller concern.
func DefaultConfig() hal.CompConfig {
	return hal.CompConfig{
		Power:      hal.PowerLevelLow,
		Hysteresis: false,
	}
}

// Monitor samples the comparator output at an arbitrary polling cadence.
// It retains no history: every sample is a fresh level read, not an edge
// event.
type Monitor struct {
	drv   hal.Comparator
	last  hal.Level
	clock hal.Clock
}

// NewMonitor initializes the comparator exactly once and returns a monitor
// over it. The driver setup order is fixed: configure, connect the ULP
// reference to channel 0, enable the reference, drop to the configured
// power level, then wait the settle delay.
func NewMonitor(drv hal.Comparator, clock hal.Clock, cfg hal.CompConfig) (*Monitor, error) {
	errFactory := errors.New()

	if err := drv.Init(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrComparatorInit, err)
	}

	if err := drv.ConnectULPReference(); err != nil {
		return nil, errFactory.Wrap(errors.ErrComparatorInit, err)
	}

	if err := drv.EnableULPReference(); err != nil {
		return nil, errFactory.Wrap(errors.ErrComparatorInit, err)
	}

	if err := drv.SetPowerLevel(cfg.Power); err != nil {
		return nil, errFactory.Wrap(errors.ErrComparatorInit, err)
	}

	clock.Sleep(ulpSettleDelay)

	return &Monitor{
		drv:   drv,
		last:  hal.High,
		clock: clock,
	}, nil
}

// Sample reads the instantaneous comparator output. A driver read failure
// after a successful init has no recovery; the monitor logs it and holds
// the last good level rather than fabricating a transition.
func (m *Monitor) Sample() hal.Level {
	level, err := m.drv.Read()
	if err != nil {
		logger.Warn().Err(err).Msg("Comparator read failed; holding last level")

		return m.last
	}

	m.last = level

	return level
}
