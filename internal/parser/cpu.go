package parser

import (
	"strconv"
	"strings"

	"codeberg.org/mutker/qosprobe/internal/errors"
)

type CPUMode int

const (
	// ModeFixedColumn reads the fixed character window used by Android's top
	ModeFixedColumn CPUMode = iota
	// ModeHeaderRelative reads the token aligned under the %CPU header
	ModeHeaderRelative
)

const (
	cpuHeader   = "%CPU"
	cpuColStart = 42
	cpuColEnd   = 47
)

func ParseCPUMode(s string) (CPUMode, error) {
	switch strings.ToLower(s) {
	case "", "column":
		return ModeFixedColumn, nil
	case "header":
		return ModeHeaderRelative, nil
	default:
		return ModeFixedColumn, errors.New().WithData(ErrInvalidMode, s)
	}
}

func (m CPUMode) String() string {
	if m == ModeHeaderRelative {
		return "header"
	}
	return "column"
}

// CPUUsage returns the CPU percentage from a single-process top snapshot.
// The data line is the one following the header.
func CPUUsage(out string, mode CPUMode) (float64, bool) {
	ls := lines(out)
	for i, line := range ls {
		col := strings.Index(line, cpuHeader)
		if col < 0 {
			continue
		}
		if i+1 >= len(ls) {
			return 0, false
		}

		data := ls[i+1]
		if mode == ModeHeaderRelative {
			return alignedValue(data, col, col+len(cpuHeader))
		}
		return fixedValue(data)
	}
	return 0, false
}

func fixedValue(data string) (float64, bool) {
	if len(data) < cpuColEnd {
		return 0, false
	}
	return parsePercent(data[cpuColStart:cpuColEnd])
}

// alignedValue reads the number that ends at the right edge of the [from, to)
// header span. top right-aligns numeric columns, so a full-width value may
// touch the column on its left.
func alignedValue(data string, from, to int) (float64, bool) {
	end := min(to, len(data))
	for end < len(data) && isNumeric(data[end]) {
		end++
	}

	start := end
	for start > 0 && isNumeric(data[start-1]) {
		start--
	}
	if start < end {
		return parsePercent(data[start:end])
	}

	return overlappingValue(data, from, to)
}

// overlappingValue returns the numeric tail of the whitespace-delimited token
// that overlaps the [from, to) span. Used when the value is not right-aligned.
func overlappingValue(data string, from, to int) (float64, bool) {
	i := 0
	for i < len(data) {
		if data[i] == ' ' || data[i] == '\t' {
			i++
			continue
		}

		start := i
		for i < len(data) && data[i] != ' ' && data[i] != '\t' {
			i++
		}

		if start < to && i > from {
			tok := strings.TrimSuffix(data[start:i], "%")
			j := len(tok)
			for j > 0 && isNumeric(tok[j-1]) {
				j--
			}
			return parsePercent(tok[j:])
		}
		if start >= to {
			break
		}
	}
	return 0, false
}

func isNumeric(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.'
}

func parsePercent(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
