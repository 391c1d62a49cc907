package telemetry

import (
	"math"
	"sync/atomic"
)

// sensorCache holds the latest pushed readings as float bits so readers
// never observe a torn value.
type sensorCache struct {
	light     atomic.Uint64
	proximity atomic.Uint64
}

func (s *sensorCache) store(ev SensorEvent) bool {
	bits := math.Float64bits(float64(ev.Value))
	switch ev.Type {
	case SensorLight:
		s.light.Store(bits)
	case SensorProximity:
		s.proximity.Store(bits)
	default:
		return false
	}
	return true
}

func (s *sensorCache) lightValue() float32 {
	return float32(math.Float64frombits(s.light.Load()))
}

func (s *sensorCache) proximityValue() float32 {
	return float32(math.Float64frombits(s.proximity.Load()))
}

func (s *sensorCache) reset() {
	s.light.Store(0)
	s.proximity.Store(0)
}
