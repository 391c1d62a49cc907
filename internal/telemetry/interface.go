package telemetry

import (
	"context"

	"codeberg.org/mutker/qosprobe/internal/qos"
)

// Platform answers host queries. A query that cannot be answered returns an
// error carrying ErrUnavailable.
type Platform interface {
	Connected() bool
	ConnectionType() (string, error)
	Battery() (Battery, error)
	Brightness() (Brightness, error)
	SignalStrength() (int, error)
	Memory() (Memory, error)
	PID() int
}

// Calculator is the subset of *qos.Calculator the facade drives
type Calculator interface {
	Latency(ctx context.Context, target string) (qos.Measurement, error)
	Jitter(ctx context.Context, target string) (qos.Measurement, error)
	PacketLoss(ctx context.Context, target string) (qos.Measurement, error)
	PacketLossN(ctx context.Context, target string, count int) (qos.Measurement, error)
	CPU(ctx context.Context, pid int) (qos.Measurement, error)
}

// Recorder persists metric records. It is satisfied by *metriclog.Log.
type Recorder interface {
	Append(ctx context.Context, name, value, comment string)
	Close() error
}

// RatingUI shows a rating prompt and eventually reports the chosen score
// through onRated.
type RatingUI interface {
	ShowRating(onRated func(score float32))
}

type Battery struct {
	Level   int
	Scale   int
	Plugged bool
}

type Brightness struct {
	// Level is the raw backlight setting in 0..255
	Level     int
	Automatic bool
}

// Memory holds system memory sizes in bytes
type Memory struct {
	Total     uint64
	Available uint64
}

type SensorType int

const (
	SensorLight SensorType = iota
	SensorProximity
)

type SensorEvent struct {
	Type  SensorType
	Value float32
}
