package telemetry

import "codeberg.org/mutker/qosprobe/internal/errors"

const (
	// Platform Errors
	ErrUnavailable  = errors.ErrUnavailable
	ErrNotConnected = errors.ErrNotConnected

	// Caller Errors
	ErrNotArmed     = errors.ErrorCode("telemetry_cell_not_armed")
	ErrInvalidScore = errors.ErrorCode("telemetry_invalid_score")
	ErrNoRatingUI   = errors.ErrorCode("telemetry_no_rating_ui")
	ErrUsage        = errors.ErrUsage

	// Metric Errors
	ErrMetricFailed    = errors.ErrorCode("telemetry_metric_failed")
	ErrServiceShutdown = errors.ErrShutdownFailed
)
