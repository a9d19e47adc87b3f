package hal

import "time"

// Board owns one-time chip and board bring-up: clocks, pin muxing, and the
// watchdog clear on secure-capable variants.
type Board interface {
	Init() error
	Caps() Capabilities
}

// Comparator is the low-power analog comparator driver. Init must be called
// exactly once before Read; an init failure is a boot-time fatal condition.
type Comparator interface {
	Init(cfg CompConfig) error
	ConnectULPReference() error
	EnableULPReference() error
	SetPowerLevel(level PowerLevel) error
	Read() (Level, error)
}

// LED drives the status LED output pin
type LED interface {
	Init(initialOn bool) error
	Write(on bool) error
	Toggle() error
}

// GPIO exposes bank-level pin control used outside of owned outputs, such as
// parking the console bank at high impedance before sleep.
type GPIO interface {
	SetDriveMode(port, pin int, mode DriveMode) error
}

// Console is the debug console. Deinit releases the interface before sleep
// so shared pins are not left driving a bus; Init on the recovery path
// restores it.
type Console interface {
	Init() error
	Deinit() error
	Printf(format string, args ...any)
}

// PowerManager commits the device to its deepest low-power state.
//
// A nil return means the platform woke and control returned only because the
// backend models wake as a restart request; real silicon never returns from
// a successful commit. A non-nil error is a failed commit and the only case
// where the caller regains control for recovery.
type PowerManager interface {
	Hibernate(src WakeSource) error
}

// Clock provides the blocking delay primitive. There is no scheduler and no
// cancellation: a sleep runs to completion on the single thread of control.
type Clock interface {
	Sleep(d time.Duration)
}

// Domain types for type safety and validation
type (
	// Level is an instantaneous binary sample, not an edge event.
	Level int

	PowerLevel int

	DriveMode int

	// WakeSource names the hardware condition that must end the low-power
	// state. It is a compile-time value passed by value at the commit site.
	WakeSource struct {
		Channel int
		Level   Level
	}

	// CompConfig is fixed at process start and never mutated after the
	// monitor is initialized.
	CompConfig struct {
		Power      PowerLevel
		Hysteresis bool
	}

	// Capabilities resolves hardware-variant behavior at configuration time
	// so the state machine stays free of variant conditionals.
	Capabilities struct {
		// HighZOnSleep forces the console GPIO bank to high-impedance drive
		// before sleep on the variant that needs it.
		HighZOnSleep bool
		// SecureBoot requires a watchdog clear during board bring-up.
		SecureBoot bool
	}
)

const (
	Low Level = iota
	High
)

const (
	PowerLevelOff PowerLevel = iota
	PowerLevelLow
	PowerLevelMedium
	PowerLevelHigh
)

const (
	DriveStrong DriveMode = iota
	DriveHighZ
)

// ComparatorChannel is the fixed logical channel for both the ULP reference
// and the wake source.
const ComparatorChannel = 0

// Console bank coordinates on the variant that needs its drive mode forced
// to high impedance before sleep.
const (
	ConsoleBankPort = 5
	ConsoleBankPin  = 1
)

// WakeComparator0High wakes the device when comparator channel 0 goes high.
var WakeComparator0High = WakeSource{Channel: ComparatorChannel, Level: High}

func (l Level) String() string {
	if l == High {
		return "high"
	}

	return "low"
}
