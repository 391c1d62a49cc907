package metriclog

import "codeberg.org/mutker/qosprobe/internal/errors"

const (
	ErrInvalidConfig   = errors.ErrInvalidConfig
	ErrInvalidBaseName = errors.ErrorCode("metriclog_invalid_basename")

	ErrStorageInit  = errors.ErrInitFailed
	ErrStorageWrite = errors.ErrPersistence
	ErrSinkWrite    = errors.ErrorCode("metriclog_sink_write_failed")
	ErrStorageClose = errors.ErrShutdownFailed
)
