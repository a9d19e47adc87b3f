package hal

import "codeberg.org/mutker/hibernatectl/internal/errors"

const (
	// Initialization and Lifecycle Errors
	ErrNotInitialized = errors.ErrorCode("hal_not_initialized")
	ErrInitFailed     = errors.ErrorCode("hal_init_failed")

	// Comparator Errors
	ErrCompReadFailed      = errors.ErrorCode("hal_comp_read_failed")
	ErrCompConfigRejected  = errors.ErrorCode("hal_comp_config_rejected")
	ErrULPReferenceFailed  = errors.ErrorCode("hal_ulp_reference_failed")
	ErrPowerLevelRejected  = errors.ErrorCode("hal_power_level_rejected")

	// GPIO Errors
	ErrGPIOWriteFailed = errors.ErrorCode("hal_gpio_write_failed")
	ErrDriveModeFailed = errors.ErrorCode("hal_drive_mode_failed")

	// Console Errors
	ErrConsoleClosed = errors.ErrorCode("hal_console_closed")

	// Power Management Errors
	ErrHibernateRejected = errors.ErrorCode("hal_hibernate_rejected")
	ErrBadWakeSource     = errors.ErrorCode("hal_bad_wake_source")
)
