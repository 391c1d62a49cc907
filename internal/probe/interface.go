package probe

import (
	"context"
	"fmt"
)

//go:generate mockgen -destination=mock_runner.go -package=probe codeberg.org/mutker/qosprobe/internal/probe Runner

// Runner launches a diagnostic command and captures its combined output.
// Exit statuses are reported through Result; only launch failures, timeouts
// and cancellation are returned as errors.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
}

type Status int

const (
	StatusOK Status = iota
	StatusNoAnswer
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoAnswer:
		return "no_answer"
	default:
		return "failed"
	}
}

// Result is the outcome of one probe invocation
type Result struct {
	ExitStatus int
	Output     string
}

// Status maps the exit status: 0 is success, 1 is the host's "no answer".
func (r *Result) Status() Status {
	switch r.ExitStatus {
	case 0:
		return StatusOK
	case 1:
		return StatusNoAnswer
	default:
		return StatusFailed
	}
}

func (r *Result) String() string {
	return fmt.Sprintf("exit=%d output=%dB", r.ExitStatus, len(r.Output))
}
