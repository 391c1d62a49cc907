package qos

import "codeberg.org/mutker/qosprobe/internal/errors"

const (
	ErrInvalidConfig    = errors.ErrInvalidConfig
	ErrExecution        = errors.ErrExecution
	ErrParseMiss        = errors.ErrParseMiss
	ErrRetriesExhausted = errors.ErrRetries
	ErrUsage            = errors.ErrUsage
	ErrCancelled        = errors.ErrCancelled
)
