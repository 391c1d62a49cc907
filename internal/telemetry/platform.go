package telemetry

import (
	"bufio"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/mutker/qosprobe/internal/errors"
)

func unavailable(query string) errors.Error {
	return errors.New().WithData(ErrUnavailable, query)
}

// UnavailablePlatform answers no query. It reports no network connection.
type UnavailablePlatform struct{}

func (UnavailablePlatform) Connected() bool {
	return false
}

func (UnavailablePlatform) ConnectionType() (string, error) {
	return "", unavailable("connection_type")
}

func (UnavailablePlatform) Battery() (Battery, error) {
	return Battery{}, unavailable("battery")
}

func (UnavailablePlatform) Brightness() (Brightness, error) {
	return Brightness{}, unavailable("brightness")
}

func (UnavailablePlatform) SignalStrength() (int, error) {
	return 0, unavailable("signal_strength")
}

func (UnavailablePlatform) Memory() (Memory, error) {
	return Memory{}, unavailable("memory")
}

func (UnavailablePlatform) PID() int {
	return os.Getpid()
}

// StaticPlatform answers every query from its fields. A nil pointer field
// makes the matching query unavailable.
type StaticPlatform struct {
	IsConnected bool
	Connection  string
	BatteryInfo *Battery
	Screen      *Brightness
	Signal      *int
	MemoryInfo  *Memory
	ProcessID   int
}

func (p *StaticPlatform) Connected() bool {
	return p.IsConnected
}

func (p *StaticPlatform) ConnectionType() (string, error) {
	if p.Connection == "" {
		return "", unavailable("connection_type")
	}
	return p.Connection, nil
}

func (p *StaticPlatform) Battery() (Battery, error) {
	if p.BatteryInfo == nil {
		return Battery{}, unavailable("battery")
	}
	return *p.BatteryInfo, nil
}

func (p *StaticPlatform) Brightness() (Brightness, error) {
	if p.Screen == nil {
		return Brightness{}, unavailable("brightness")
	}
	return *p.Screen, nil
}

func (p *StaticPlatform) SignalStrength() (int, error) {
	if p.Signal == nil {
		return 0, unavailable("signal_strength")
	}
	return *p.Signal, nil
}

func (p *StaticPlatform) Memory() (Memory, error) {
	if p.MemoryInfo == nil {
		return Memory{}, unavailable("memory")
	}
	return *p.MemoryInfo, nil
}

func (p *StaticPlatform) PID() int {
	if p.ProcessID > 0 {
		return p.ProcessID
	}
	return os.Getpid()
}

// HostPlatform answers network and memory queries from the local Linux
// host. Battery, brightness and signal queries are unavailable.
type HostPlatform struct {
	UnavailablePlatform

	// ProcRoot defaults to /proc
	ProcRoot string
}

// Connected reports whether any non-loopback interface is up with an address.
func (p *HostPlatform) Connected() bool {
	_, err := p.ConnectionType()
	return err == nil
}

// ConnectionType returns the name of the first usable network interface.
func (p *HostPlatform) ConnectionType() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", errors.New().Wrap(ErrUnavailable, err)
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil || len(addrs) == 0 {
			continue
		}
		return iface.Name, nil
	}

	return "", errors.New().New(ErrNotConnected)
}

// Memory reads MemTotal and MemAvailable from meminfo.
func (p *HostPlatform) Memory() (Memory, error) {
	root := p.ProcRoot
	if root == "" {
		root = "/proc"
	}

	f, err := os.Open(filepath.Join(root, "meminfo"))
	if err != nil {
		return Memory{}, errors.New().Wrap(ErrUnavailable, err)
	}
	defer f.Close()

	var mem Memory
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}

		switch fields[0] {
		case "MemTotal:":
			mem.Total = kb * 1024
		case "MemAvailable:":
			mem.Available = kb * 1024
		}
	}
	if err := scanner.Err(); err != nil {
		return Memory{}, errors.New().Wrap(ErrUnavailable, err)
	}
	if mem.Total == 0 {
		return Memory{}, unavailable("memory")
	}

	return mem, nil
}
