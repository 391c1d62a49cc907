// Package qos derives network and process quality metrics from diagnostic
// command output.
package qos

import (
	"context"
	"strconv"

	"codeberg.org/mutker/qosprobe/internal/errors"
	"codeberg.org/mutker/qosprobe/internal/logger"
	"codeberg.org/mutker/qosprobe/internal/parser"
	"codeberg.org/mutker/qosprobe/internal/probe"
)

type Calculator struct {
	runner probe.Runner
	cfg    Config
	logger logger.Logger
}

func New(runner probe.Runner, cfg Config, log logger.Logger) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Calculator{
		runner: runner,
		cfg:    cfg,
		logger: log,
	}, nil
}

func (c *Calculator) Config() Config {
	return c.cfg
}

// Latency pings target once and reports the round-trip time in milliseconds.
func (c *Calculator) Latency(ctx context.Context, target string) (Measurement, error) {
	m := Measurement{Value: Sentinel, Outcome: OutcomeFailed, Attempts: 1}

	res, err := c.ping(ctx, 1, target)
	if err != nil {
		return m, err
	}

	switch res.Status() {
	case probe.StatusNoAnswer:
		m.Outcome = OutcomeUnreachable
		return m, nil
	case probe.StatusFailed:
		return m, execError("latency", res)
	}

	v, ok := parser.FirstRoundTripTime(res.Output)
	if !ok {
		return m, parseMiss("latency", res)
	}

	m.Value = v
	m.Outcome = OutcomeComplete
	return m, nil
}

// Jitter runs rounds of JitterSamples pings until one round yields every
// sample. A round with a missing reply is discarded and reissued from
// scratch, at most JitterMaxAttempts times.
func (c *Calculator) Jitter(ctx context.Context, target string) (Measurement, error) {
	m := Measurement{Value: Sentinel, Outcome: OutcomeFailed}
	state := stateNotStarted

	transition := func(next jitterState) {
		c.logger.Debug().
			Str("from", state.String()).
			Str("to", next.String()).
			Int("attempt", m.Attempts).
			Msg("Jitter state transition")
		state = next
	}

	for {
		switch state {
		case stateNotStarted, stateRetry:
			if m.Attempts >= c.cfg.JitterMaxAttempts {
				transition(stateGaveUp)
				continue
			}
			if err := ctx.Err(); err != nil {
				m.Outcome = OutcomeFailed
				return m, errors.New().Wrap(ErrCancelled, err)
			}
			m.Attempts++
			transition(stateProbing)

		case stateProbing:
			res, err := c.ping(ctx, JitterSamples, target)
			if err != nil {
				transition(stateFailed)
				return m, err
			}

			switch res.Status() {
			case probe.StatusNoAnswer:
				transition(stateUnreachable)
				continue
			case probe.StatusFailed:
				transition(stateFailed)
				return m, execError("jitter", res)
			}

			samples := parser.RoundTripTimes(res.Output)
			if len(samples) < JitterSamples {
				c.logger.Debug().
					Int("samples", len(samples)).
					Int("attempt", m.Attempts).
					Msg("Incomplete jitter round, discarding")
				transition(stateRetry)
				continue
			}

			m.Value = MeanDelta(samples[:JitterSamples])
			transition(stateComplete)

		case stateComplete:
			m.Outcome = OutcomeComplete
			return m, nil

		case stateUnreachable:
			m.Outcome = OutcomeUnreachable
			return m, nil

		case stateGaveUp:
			m.Outcome = OutcomeGaveUp
			return m, errors.New().WithData(ErrRetriesExhausted, struct {
				Target   string
				Attempts int
			}{
				Target:   target,
				Attempts: m.Attempts,
			})

		default:
			return m, errors.New().New(errors.ErrInternal)
		}
	}
}

// PacketLoss pings target PacketLossCount times.
func (c *Calculator) PacketLoss(ctx context.Context, target string) (Measurement, error) {
	return c.PacketLossN(ctx, target, c.cfg.PacketLossCount)
}

// PacketLossN pings target count times and reports the lost percentage. An
// unreachable target is a complete loss.
func (c *Calculator) PacketLossN(ctx context.Context, target string, count int) (Measurement, error) {
	m := Measurement{Value: Sentinel, Outcome: OutcomeFailed, Attempts: 1}

	if count < 1 {
		m.Attempts = 0
		return m, errors.New().WithData(ErrUsage, struct {
			Count int
		}{
			Count: count,
		}).WithMessage("Packet loss count must be positive")
	}

	res, err := c.ping(ctx, count, target)
	if err != nil {
		return m, err
	}

	switch res.Status() {
	case probe.StatusNoAnswer:
		m.Value = LossUnreachable
		m.Outcome = OutcomeUnreachable
		return m, nil
	case probe.StatusFailed:
		return m, execError("packet_loss", res)
	}

	v, ok := parser.PacketLoss(res.Output)
	if !ok {
		return m, parseMiss("packet_loss", res)
	}

	m.Value = float64(v)
	m.Outcome = OutcomeComplete
	return m, nil
}

// CPU reads the CPU usage percentage of pid from a single top snapshot.
func (c *Calculator) CPU(ctx context.Context, pid int) (Measurement, error) {
	m := Measurement{Value: Sentinel, Outcome: OutcomeFailed, Attempts: 1}

	if pid <= 0 {
		m.Attempts = 0
		return m, errors.New().WithData(ErrUsage, struct {
			PID int
		}{
			PID: pid,
		}).WithMessage("Process id must be positive")
	}

	res, err := c.runner.Run(ctx, c.cfg.TopPath, "-n", "1", "-p", strconv.Itoa(pid))
	if err != nil {
		return m, err
	}
	if res.Status() != probe.StatusOK {
		return m, execError("cpu", res)
	}

	v, ok := parser.CPUUsage(res.Output, c.cfg.CPUParseMode)
	if !ok {
		return m, parseMiss("cpu", res)
	}

	m.Value = v
	m.Outcome = OutcomeComplete
	return m, nil
}

func (c *Calculator) ping(ctx context.Context, count int, target string) (*probe.Result, error) {
	if target == "" {
		return nil, errors.New().WithMessage(ErrUsage, "Target must not be empty")
	}
	return c.runner.Run(ctx, c.cfg.PingPath, "-c", strconv.Itoa(count), target)
}

func execError(metric string, res *probe.Result) errors.Error {
	return errors.New().WithData(ErrExecution, struct {
		Metric     string
		ExitStatus int
	}{
		Metric:     metric,
		ExitStatus: res.ExitStatus,
	})
}

func parseMiss(metric string, res *probe.Result) errors.Error {
	return errors.New().WithData(ErrParseMiss, struct {
		Metric string
		Output int
	}{
		Metric: metric,
		Output: len(res.Output),
	})
}
