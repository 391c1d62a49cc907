package qos

import "fmt"

// Sentinel is the value reported when a measurement could not be taken
const Sentinel = -1.0

// LossUnreachable is the packet loss reported for an unreachable target
const LossUnreachable = 100.0

type Outcome int

const (
	OutcomeComplete Outcome = iota
	OutcomeUnreachable
	OutcomeGaveUp
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomeUnreachable:
		return "unreachable"
	case OutcomeGaveUp:
		return "gave_up"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Measurement is the result of one calculator call. Value holds the sentinel
// unless Outcome is OutcomeComplete (or OutcomeUnreachable for packet loss).
type Measurement struct {
	Value    float64
	Outcome  Outcome
	Attempts int
}

func (m Measurement) Complete() bool {
	return m.Outcome == OutcomeComplete
}
