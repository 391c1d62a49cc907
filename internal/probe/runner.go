package probe

import (
	"context"
	"os/exec"
	"time"

	"codeberg.org/mutker/qosprobe/internal/errors"
	"codeberg.org/mutker/qosprobe/internal/logger"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultWaitDelay = 2 * time.Second
)

type Config struct {
	// Timeout bounds one invocation, zero disables it
	Timeout time.Duration
	// WaitDelay bounds the output read after the process was killed
	WaitDelay time.Duration
	// Rate limits launches per second, zero means unlimited
	Rate float64
}

func DefaultConfig() Config {
	return Config{
		Timeout:   DefaultTimeout,
		WaitDelay: DefaultWaitDelay,
	}
}

type ExecRunner struct {
	cfg     Config
	limiter *rate.Limiter
	logger  logger.Logger
}

func NewExecRunner(cfg Config, log logger.Logger) *ExecRunner {
	if cfg.WaitDelay <= 0 {
		cfg.WaitDelay = DefaultWaitDelay
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}

	return &ExecRunner{
		cfg:     cfg,
		limiter: limiter,
		logger:  log,
	}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	errFactory := errors.New()

	if name == "" {
		return nil, errFactory.New(ErrInvalidCommand)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, errFactory.Wrap(ErrProbeCancelled, err).WithMessage("Probe throttle wait aborted")
	}

	runCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.WaitDelay = r.cfg.WaitDelay

	start := time.Now()
	out, err := cmd.CombinedOutput()
	result := &Result{Output: string(out)}
	if cmd.ProcessState != nil {
		result.ExitStatus = cmd.ProcessState.ExitCode()
	}

	r.logger.Debug().
		Str("command", name).
		Strs("args", args).
		Int("exit_status", result.ExitStatus).
		Dur("duration", time.Since(start)).
		Msg("Probe finished")

	switch {
	case ctx.Err() != nil:
		return result, errFactory.Wrap(ErrProbeCancelled, ctx.Err())
	case runCtx.Err() != nil:
		return result, errFactory.Wrap(ErrProbeTimeout, runCtx.Err()).WithData(struct {
			Command string
			Timeout string
		}{
			Command: name,
			Timeout: r.cfg.Timeout.String(),
		})
	case err == nil:
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return result, nil
	}

	// The process exited but a descendant kept the output open
	if errors.Is(err, exec.ErrWaitDelay) {
		return result, nil
	}

	return nil, errFactory.WithData(ErrProbeLaunch, struct {
		Command string
		Error   string
	}{
		Command: name,
		Error:   err.Error(),
	})
}
