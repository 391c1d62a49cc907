package telemetry

import (
	"time"

	"codeberg.org/mutker/qosprobe/internal/logger"
)

type Option func(*Telemetry)

func WithPlatform(p Platform) Option {
	return func(t *Telemetry) {
		t.platform = p
	}
}

func WithLogger(log logger.Logger) Option {
	return func(t *Telemetry) {
		t.logger = log
	}
}

// WithClock replaces time.Now for timer measurements.
func WithClock(now func() time.Time) Option {
	return func(t *Telemetry) {
		t.now = now
	}
}
