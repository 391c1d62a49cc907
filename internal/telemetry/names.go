package telemetry

// Metric names as written to the metric log
const (
	NameLatency          = "Latency"
	NameJitter           = "Jitter"
	NamePacketLoss       = "PacketLoss%"
	NameCPU              = "CPUConsumption%"
	NameBattery          = "BatteryCharge%"
	NameCharging         = "PhoneCharging"
	NameConnected        = "PhoneConnectedToANetwork"
	NameConnectionType   = "ConnectionType"
	NameBrightness       = "ScreenBrightness%"
	NameSignalStrength   = "SignalStrength"
	NameMemoryMB         = "MemoryConsumptionMB"
	NameMemoryPercent    = "MemoryConsumption%"
	NameEnvironmentLight = "EnvironmentLight"
	NameProximity        = "Proximity"
	NamePerceivedLatency = "UserPerceivedLatency"
	NameUserScore        = "UserScore"

	// NoResponse is the value logged for an unreachable target
	NoResponse = "Sin respuesta"
)

const (
	// SignalUnavailable is an impossible dBm reading
	SignalUnavailable = 1

	MinScore = 1
	MaxScore = 5

	maxBrightness = 255
	mebibyte      = 1 << 20
)
