package parser_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/qosprobe/internal/errors"
	"codeberg.org/mutker/qosprobe/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pingFour = `PING 10.0.0.1 (10.0.0.1) 56(84) bytes of data.
64 bytes from 10.0.0.1: icmp_seq=1 ttl=64 time=10 ms
64 bytes from 10.0.0.1: icmp_seq=2 ttl=64 time=12 ms
64 bytes from 10.0.0.1: icmp_seq=3 ttl=64 time=11 ms
64 bytes from 10.0.0.1: icmp_seq=4 ttl=64 time=15 ms

--- 10.0.0.1 ping statistics ---
4 packets transmitted, 4 received, 0% packet loss, time 3004ms
rtt min/avg/max/mdev = 10.000/12.000/15.000/1.870 ms
`

func TestRoundTripTimes(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want []float64
	}{
		{name: "four replies", out: pingFour, want: []float64{10, 12, 11, 15}},
		{
			name: "missing reply",
			out:  "time=10.5 ms\nRequest timeout for icmp_seq 2\ntime=11.25 ms\r\n",
			want: []float64{10.5, 11.25},
		},
		{name: "garbled value", out: "time=abc ms\ntime=3.1 ms", want: []float64{3.1}},
		{name: "no unit", out: "time=4.2", want: nil},
		{name: "empty", out: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.RoundTripTimes(tt.out))
		})
	}
}

func TestFirstRoundTripTime(t *testing.T) {
	v, ok := parser.FirstRoundTripTime("PING host\n64 bytes from host: icmp_seq=1 ttl=57 time=23.4 ms\n")
	require.True(t, ok)
	assert.InDelta(t, 23.4, v, 1e-9)

	_, ok = parser.FirstRoundTripTime("PING host\n1 packets transmitted, 0 received\n")
	assert.False(t, ok)
}

func TestPacketLoss(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want int
		ok   bool
	}{
		{name: "none lost", out: pingFour, want: 0, ok: true},
		{name: "twenty", out: "5 packets transmitted, 4 received, 20% packet loss, time 4005ms", want: 20, ok: true},
		{name: "all lost", out: "5 packets transmitted, 0 received, 100% packet loss", want: 100, ok: true},
		{name: "fractional", out: "3 packets transmitted, 2 received, 33.3333% packet loss", want: 33, ok: true},
		{name: "line start", out: "7% packet loss", want: 7, ok: true},
		{name: "bsd wording", out: "5 packets transmitted, 5 packets received, 0.0% packet loss", want: 0, ok: true},
		{name: "no marker", out: "PING host\n", ok: false},
		{name: "no percent", out: "packet loss unknown", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parser.PacketLoss(tt.out)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func topSnapshot(value string) string {
	header := fmt.Sprintf("%-42s%5s %s", "  PID USER         PR  NI VIRT  RES  SHR S", "%CPU", "%MEM     TIME+ ARGS")
	data := fmt.Sprintf("%-42s%5s %s", "12345 u0_a123      10 -10 1.2G 100M  50M S", value, " 1.5   0:01.23 com.example")
	return "Tasks: 1 total, 1 running\nMem: 3.6G total\n" + header + "\n" + data + "\n"
}

func TestCPUUsage(t *testing.T) {
	for _, mode := range []parser.CPUMode{parser.ModeFixedColumn, parser.ModeHeaderRelative} {
		t.Run(mode.String(), func(t *testing.T) {
			v, ok := parser.CPUUsage(topSnapshot("2.3"), mode)
			require.True(t, ok)
			assert.InDelta(t, 2.3, v, 1e-9)

			v, ok = parser.CPUUsage(topSnapshot("100.0"), mode)
			require.True(t, ok)
			assert.InDelta(t, 100.0, v, 1e-9)

			_, ok = parser.CPUUsage("Tasks: 0 total\n", mode)
			assert.False(t, ok, "missing header")

			_, ok = parser.CPUUsage("  PID %CPU ARGS", mode)
			assert.False(t, ok, "missing data line")
		})
	}
}

func TestCPUUsageShortLine(t *testing.T) {
	out := "PID %CPU ARGS\n  1  7.5 app\n"

	_, ok := parser.CPUUsage(out, parser.ModeFixedColumn)
	assert.False(t, ok)

	v, ok := parser.CPUUsage(out, parser.ModeHeaderRelative)
	require.True(t, ok)
	assert.InDelta(t, 7.5, v, 1e-9)
}

func TestCPUUsageHeaderGluedState(t *testing.T) {
	out := "  PID USER  VIRT  RES  SHR S  %CPU %MEM ARGS\n" +
		"  901 app   1.2G 100M   50M S100.0  1.5 app\n"

	v, ok := parser.CPUUsage(out, parser.ModeHeaderRelative)
	require.True(t, ok)
	assert.InDelta(t, 100.0, v, 1e-9)
}

func TestCPUUsageHeaderLeftAligned(t *testing.T) {
	out := "  PID USER  VIRT  RES  SHR S  %CPU %MEM ARGS\n" +
		"  901 app   1.2G 100M  50M S  7.5%  1.5 app\n"

	v, ok := parser.CPUUsage(out, parser.ModeHeaderRelative)
	require.True(t, ok)
	assert.InDelta(t, 7.5, v, 1e-9)
}

func TestParseCPUMode(t *testing.T) {
	m, err := parser.ParseCPUMode("column")
	require.NoError(t, err)
	assert.Equal(t, parser.ModeFixedColumn, m)

	m, err = parser.ParseCPUMode("HEADER")
	require.NoError(t, err)
	assert.Equal(t, parser.ModeHeaderRelative, m)

	_, err = parser.ParseCPUMode("regex")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, parser.ErrInvalidMode))
}
