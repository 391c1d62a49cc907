package qos

import "math"

// JitterSamples is the size of one jitter probing round
const JitterSamples = 4

type jitterState int

const (
	stateNotStarted jitterState = iota
	stateProbing
	stateRetry
	stateComplete
	stateUnreachable
	stateGaveUp
	stateFailed
)

func (s jitterState) String() string {
	return [...]string{
		"not_started",
		"probing",
		"retry",
		"complete",
		"unreachable",
		"gave_up",
		"failed",
	}[s]
}

// MeanDelta returns the mean absolute difference between successive
// samples. It is NaN for fewer than two samples.
func MeanDelta(samples []float64) float64 {
	if len(samples) < 2 {
		return math.NaN()
	}

	var sum float64
	for i := 1; i < len(samples); i++ {
		sum += math.Abs(samples[i] - samples[i-1])
	}
	return sum / float64(len(samples)-1)
}
