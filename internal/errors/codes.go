package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Boot-time fatal errors
	ErrBootFailed     ErrorCode = "boot_failed"
	ErrBoardInit      ErrorCode = "board_init_failed"
	ErrConsoleInit    ErrorCode = "console_init_failed"
	ErrComparatorInit ErrorCode = "comparator_init_failed"
	ErrLEDInit        ErrorCode = "led_init_failed"

	// Power-management errors
	ErrHibernateCommit ErrorCode = "hibernate_commit_failed"
	ErrConsoleDeinit   ErrorCode = "console_deinit_failed"
	ErrHalted          ErrorCode = "halted"

	// WakeRestart is not a failure: it reports that a simulated hibernate
	// committed and the wake condition fired, so boot must run again in full.
	ErrWakeRestart ErrorCode = "wake_restart"

	// Initialization and shutdown errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Telemetry errors
	ErrInitTelemetry ErrorCode = "init_telemetry_failed"
	ErrTimeout       ErrorCode = "operation_timeout"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:        "Internal error occurred",
	ErrInvalidArgument: "Invalid argument provided",
	ErrAlreadyRunning:  "Another instance is already running",
	ErrInvalidConfig:   "Invalid configuration",
	ErrReadConfig:      "Failed to read configuration",
	ErrInvalidLogLevel: "Invalid log level",
	ErrBootFailed:      "Boot sequence failed",
	ErrBoardInit:       "Failed to initialize board peripherals",
	ErrConsoleInit:     "Failed to initialize debug console",
	ErrComparatorInit:  "Failed to initialize comparator",
	ErrLEDInit:         "Failed to initialize status LED",
	ErrHibernateCommit: "Not entered Hibernate mode",
	ErrConsoleDeinit:   "Failed to deinitialize debug console",
	ErrHalted:          "Execution halted",
	ErrWakeRestart:     "Woke from hibernate; full reboot required",
	ErrInitFailed:      "Initialization failed",
	ErrShutdownFailed:  "Shutdown failed",
	ErrInitTelemetry:   "Failed to initialize telemetry",
	ErrTimeout:         "Operation timed out",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
