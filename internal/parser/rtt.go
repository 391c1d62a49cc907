package parser

import (
	"math"
	"strconv"
	"strings"
)

const (
	rttMarker = "time="
	rttUnit   = " ms"
)

// RoundTripTimes returns every round-trip time in milliseconds, in the order
// the lines appear. Lines without a parsable "time=<v> ms" are skipped.
func RoundTripTimes(out string) []float64 {
	var samples []float64
	for _, line := range lines(out) {
		if v, ok := roundTripTime(line); ok {
			samples = append(samples, v)
		}
	}
	return samples
}

// FirstRoundTripTime returns the first round-trip time found.
func FirstRoundTripTime(out string) (float64, bool) {
	for _, line := range lines(out) {
		if v, ok := roundTripTime(line); ok {
			return v, true
		}
	}
	return 0, false
}

func roundTripTime(line string) (float64, bool) {
	_, rest, found := strings.Cut(line, rttMarker)
	if !found {
		return 0, false
	}

	value, _, found := strings.Cut(rest, rttUnit)
	if !found {
		return 0, false
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
