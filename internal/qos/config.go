package qos

import (
	"codeberg.org/mutker/qosprobe/internal/errors"
	"codeberg.org/mutker/qosprobe/internal/parser"
)

const (
	DefaultPingPath          = "ping"
	DefaultTopPath           = "top"
	DefaultJitterMaxAttempts = 5
	DefaultPacketLossCount   = 5
)

type Config struct {
	PingPath          string
	TopPath           string
	JitterMaxAttempts int
	PacketLossCount   int
	CPUParseMode      parser.CPUMode
}

func DefaultConfig() Config {
	return Config{
		PingPath:          DefaultPingPath,
		TopPath:           DefaultTopPath,
		JitterMaxAttempts: DefaultJitterMaxAttempts,
		PacketLossCount:   DefaultPacketLossCount,
		CPUParseMode:      parser.ModeFixedColumn,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	switch {
	case c.PingPath == "":
		return errFactory.WithData(ErrInvalidConfig, "ping path must be set")
	case c.TopPath == "":
		return errFactory.WithData(ErrInvalidConfig, "top path must be set")
	case c.JitterMaxAttempts < 1:
		return errFactory.WithData(ErrInvalidConfig, "jitter attempts must be at least 1")
	case c.PacketLossCount < 1:
		return errFactory.WithData(ErrInvalidConfig, "packet loss count must be at least 1")
	}
	return nil
}
