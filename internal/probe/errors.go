package probe

import "codeberg.org/mutker/qosprobe/internal/errors"

const (
	ErrProbeLaunch    = errors.ErrExecution
	ErrProbeTimeout   = errors.ErrTimeout
	ErrProbeCancelled = errors.ErrCancelled
	ErrInvalidCommand = errors.ErrorCode("probe_invalid_command")
)
