package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Lifecycle errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Probe errors
	ErrExecution   ErrorCode = "execution_error"
	ErrUnreachable ErrorCode = "unreachable_target"
	ErrParseMiss   ErrorCode = "parse_miss"
	ErrCancelled   ErrorCode = "operation_cancelled"
	ErrTimeout     ErrorCode = "operation_timeout"
	ErrRetries     ErrorCode = "retries_exhausted"

	// Facade errors
	ErrUsage        ErrorCode = "usage_error"
	ErrNotConnected ErrorCode = "not_connected"

	// Storage errors
	ErrPersistence ErrorCode = "persistence_error"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:        "Internal error occurred",
	ErrInvalidArgument: "Invalid argument provided",
	ErrUnavailable:     "Service unavailable",
	ErrInvalidConfig:   "Invalid configuration",
	ErrBindFlags:       "Failed to bind flags",
	ErrReadConfig:      "Failed to read configuration",
	ErrInvalidLogLevel: "Invalid log level",
	ErrInitFailed:      "Initialization failed",
	ErrShutdownFailed:  "Shutdown failed",
	ErrAlreadyRunning:  "Another instance is already running",
	ErrExecution:       "Diagnostic command failed",
	ErrUnreachable:     "Target did not respond",
	ErrParseMiss:       "Expected value not found in command output",
	ErrCancelled:       "Operation cancelled",
	ErrTimeout:         "Operation timed out",
	ErrRetries:         "Gave up after the maximum number of attempts",
	ErrUsage:           "Invalid call sequence",
	ErrNotConnected:    "Device is not connected to a network",
	ErrPersistence:     "Failed to persist metric record",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
