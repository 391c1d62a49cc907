package parser

import (
	"strconv"
	"strings"
)

const (
	lossMarker = "packet loss"
	lossSuffix = "% packet loss"
	lossWindow = 3
)

// PacketLoss returns the loss percentage reported on the first line that
// mentions packet loss.
func PacketLoss(out string) (int, bool) {
	for _, line := range lines(out) {
		if !strings.Contains(line, lossMarker) {
			continue
		}
		return packetLoss(line)
	}
	return 0, false
}

func packetLoss(line string) (int, bool) {
	end := strings.Index(line, lossSuffix)
	if end < 0 {
		end = strings.Index(line, "%")
	}
	if end < 0 {
		return 0, false
	}

	start := max(end-lossWindow, 0)
	window := strings.TrimSpace(strings.ReplaceAll(line[start:end], ",", ""))
	if v, err := strconv.Atoi(window); err == nil && validPercent(v) {
		return v, true
	}

	// Fractional losses such as "33.3333% packet loss" overflow the window
	begin := end
	for begin > 0 && isNumberByte(line[begin-1]) {
		begin--
	}

	f, err := strconv.ParseFloat(line[begin:end], 64)
	if err != nil {
		return 0, false
	}

	v := int(f)
	if !validPercent(v) {
		return 0, false
	}
	return v, true
}

func validPercent(v int) bool {
	return v >= 0 && v <= 100
}

func isNumberByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.'
}
