// Package telemetry is the entry point for every metric. Each accessor
// obtains a value, appends it to the metric log and returns it. Failures are
// logged and reported as the metric's sentinel value, never as errors.
package telemetry

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/qosprobe/internal/errors"
	"codeberg.org/mutker/qosprobe/internal/logger"
	"codeberg.org/mutker/qosprobe/internal/qos"
	"codeberg.org/mutker/qosprobe/internal/record"
	"github.com/google/uuid"
)

const component = "telemetry"

type Telemetry struct {
	id       uuid.UUID
	calc     Calculator
	recorder Recorder
	platform Platform
	logger   logger.Logger
	now      func() time.Time

	mu      sync.Mutex
	timer   Cell[time.Time]
	score   Cell[float32]
	sensors sensorCache
}

func New(calc Calculator, recorder Recorder, opts ...Option) *Telemetry {
	t := &Telemetry{
		id:       uuid.New(),
		calc:     calc,
		recorder: recorder,
		platform: UnavailablePlatform{},
		logger:   logger.Default(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(t)
	}

	t.logger = t.logger.With("session", t.id.String())
	t.logger.Debug().Msg("Telemetry session started")

	return t
}

func (t *Telemetry) SessionID() string {
	return t.id.String()
}

// Latency returns the round-trip time to target in milliseconds, or -1.
func (t *Telemetry) Latency(ctx context.Context, target string) float64 {
	if !t.connected("latency") {
		return qos.Sentinel
	}

	m, err := t.calc.Latency(ctx, target)
	return t.probeValue(ctx, NameLatency, target, m, err)
}

// Jitter returns the mean round-trip variation to target in milliseconds,
// or -1.
func (t *Telemetry) Jitter(ctx context.Context, target string) float64 {
	if !t.connected("jitter") {
		return qos.Sentinel
	}

	m, err := t.calc.Jitter(ctx, target)
	return t.probeValue(ctx, NameJitter, target, m, err)
}

// PacketLoss returns the percentage of lost probes to target. An unreachable
// target reports 100, a failed measurement -1.
func (t *Telemetry) PacketLoss(ctx context.Context, target string) int {
	if !t.connected("packet_loss") {
		return int(qos.Sentinel)
	}

	m, err := t.calc.PacketLoss(ctx, target)
	return t.lossValue(ctx, target, m, err)
}

// PacketLossN is PacketLoss with an explicit probe count.
func (t *Telemetry) PacketLossN(ctx context.Context, target string, count int) int {
	if !t.connected("packet_loss") {
		return int(qos.Sentinel)
	}

	m, err := t.calc.PacketLossN(ctx, target, count)
	return t.lossValue(ctx, target, m, err)
}

// CPUConsumption returns this process's share of CPU as a percentage.
func (t *Telemetry) CPUConsumption(ctx context.Context) float64 {
	m, err := t.calc.CPU(ctx, t.platform.PID())
	if err != nil || !m.Complete() {
		t.fail("cpu", err)
		return qos.Sentinel
	}

	t.append(ctx, NameCPU, record.FormatFloat(m.Value))
	return m.Value
}

func (t *Telemetry) BatteryPercentage(ctx context.Context) int {
	b, err := t.platform.Battery()
	if err == nil && b.Scale <= 0 {
		err = errors.New().WithData(ErrUnavailable, b)
	}
	if err != nil {
		t.fail("battery", err)
		return -1
	}

	pct := b.Level * 100 / b.Scale
	t.append(ctx, NameBattery, record.FormatInt(int64(pct)))
	return pct
}

func (t *Telemetry) IsCharging(ctx context.Context) bool {
	b, err := t.platform.Battery()
	if err != nil {
		t.fail("charging", err)
		return false
	}

	t.append(ctx, NameCharging, record.FormatBool(b.Plugged))
	return b.Plugged
}

func (t *Telemetry) IsConnected(ctx context.Context) bool {
	connected := t.platform.Connected()
	t.append(ctx, NameConnected, record.FormatBool(connected))
	return connected
}

func (t *Telemetry) ConnectionType(ctx context.Context) string {
	kind, err := t.platform.ConnectionType()
	if err != nil {
		t.fail("connection_type", err)
		return ""
	}

	t.append(ctx, NameConnectionType, kind)
	return kind
}

// ScreenBrightness returns the backlight level as a percentage. It is -1
// when adaptive brightness is on since the level is then meaningless.
func (t *Telemetry) ScreenBrightness(ctx context.Context) int {
	br, err := t.platform.Brightness()
	if err != nil {
		t.fail("brightness", err)
		return -1
	}
	if br.Automatic {
		t.logger.Warn().Msg("Adaptive brightness is enabled, brightness not recorded")
		return -1
	}

	pct := br.Level * 100 / maxBrightness
	t.append(ctx, NameBrightness, record.FormatInt(int64(pct)))
	return pct
}

// SignalStrength returns the wireless signal in dBm, or SignalUnavailable.
func (t *Telemetry) SignalStrength(ctx context.Context) int {
	dbm, err := t.platform.SignalStrength()
	if err != nil {
		t.fail("signal_strength", err)
		return SignalUnavailable
	}

	t.append(ctx, NameSignalStrength, record.FormatInt(int64(dbm)))
	return dbm
}

func (t *Telemetry) MemoryConsumptionMB(ctx context.Context) float64 {
	used, _, ok := t.memory("memory_mb")
	if !ok {
		return -1
	}

	t.append(ctx, NameMemoryMB, record.FormatFloat(used))
	return used
}

func (t *Telemetry) MemoryConsumptionPercent(ctx context.Context) float64 {
	used, total, ok := t.memory("memory_percent")
	if !ok {
		return -1
	}

	pct := used * 100 / total
	t.append(ctx, NameMemoryPercent, record.FormatFloat(pct))
	return pct
}

// memory returns used and total memory in whole mebibytes.
func (t *Telemetry) memory(op string) (used, total float64, ok bool) {
	mem, err := t.platform.Memory()
	if err == nil && mem.Total < mebibyte {
		err = errors.New().WithData(ErrUnavailable, mem)
	}
	if err != nil {
		t.fail(op, err)
		return 0, 0, false
	}

	totalMB := mem.Total / mebibyte
	availMB := mem.Available / mebibyte
	return float64(totalMB) - float64(availMB), float64(totalMB), true
}

// OnSensorEvent stores the latest ambient light or proximity reading.
func (t *Telemetry) OnSensorEvent(ev SensorEvent) {
	if !t.sensors.store(ev) {
		t.logger.Debug().Int("type", int(ev.Type)).Msg("Ignoring unknown sensor event")
	}
}

// EnvironmentLight returns the latest ambient light reading in lux.
func (t *Telemetry) EnvironmentLight(ctx context.Context) float32 {
	v := t.sensors.lightValue()
	t.append(ctx, NameEnvironmentLight, record.FormatFloat32(v))
	return v
}

// Proximity returns the latest proximity reading in centimetres.
func (t *Telemetry) Proximity(ctx context.Context) float32 {
	v := t.sensors.proximityValue()
	t.append(ctx, NameProximity, record.FormatFloat32(v))
	return v
}

// StartPerceivedLatency opens the perceived latency timer. Starting an open
// timer restarts it.
func (t *Telemetry) StartPerceivedLatency() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer.Armed() {
		t.logger.Debug().Msg("Restarting open perceived latency timer")
	}
	t.timer.Arm(t.now())
}

// StopPerceivedLatency closes the timer and returns the elapsed whole
// seconds, or -1 when no timer is open.
func (t *Telemetry) StopPerceivedLatency(ctx context.Context) int64 {
	t.mu.Lock()
	start, ok := t.timer.Consume()
	t.mu.Unlock()

	if !ok {
		t.usage("perceived_latency", "StopPerceivedLatency called without StartPerceivedLatency")
		return -1
	}

	elapsed := int64(t.now().Sub(start) / time.Second)
	t.append(ctx, NamePerceivedLatency, record.FormatInt(elapsed))
	return elapsed
}

// PromptUserScore asks ui for a rating. The score becomes readable through
// UserScore once ui reports it.
func (t *Telemetry) PromptUserScore(ui RatingUI) {
	if ui == nil {
		t.logger.ErrorWithContext(errors.New().New(ErrNoRatingUI), component, "prompt_user_score").
			Msg("No rating UI to prompt")
		return
	}
	ui.ShowRating(t.SaveUserScore)
}

// SaveUserScore arms the rating cell. Scores outside MinScore..MaxScore are
// rejected.
func (t *Telemetry) SaveUserScore(score float32) {
	if score < MinScore || score > MaxScore {
		t.logger.ErrorWithContext(errors.New().WithData(ErrInvalidScore, score), component, "save_user_score").
			Msg("User score out of range")
		return
	}

	t.mu.Lock()
	t.score.Arm(score)
	t.mu.Unlock()
}

// UserScore returns the pending rating once, or -1 when none is pending.
func (t *Telemetry) UserScore(ctx context.Context) float32 {
	t.mu.Lock()
	score, ok := t.score.Consume()
	t.mu.Unlock()

	if !ok {
		t.usage("user_score", "UserScore called without a rating from PromptUserScore")
		return -1
	}

	t.append(ctx, NameUserScore, record.FormatFloat32(score))
	return score
}

// Reset clears the timer, the pending rating and the sensor readings.
func (t *Telemetry) Reset() {
	t.mu.Lock()
	t.timer.Reset()
	t.score.Reset()
	t.mu.Unlock()

	t.sensors.reset()
}

func (t *Telemetry) Close() error {
	if err := t.recorder.Close(); err != nil {
		return errors.New().Wrap(ErrServiceShutdown, err)
	}
	t.logger.Debug().Msg("Telemetry session closed")
	return nil
}

func (t *Telemetry) connected(op string) bool {
	if t.platform.Connected() {
		return true
	}
	t.logger.ErrorWithContext(errors.New().New(ErrNotConnected), component, op).
		Msg("Not connected to a network")
	return false
}

func (t *Telemetry) probeValue(ctx context.Context, name, target string, m qos.Measurement, err error) float64 {
	switch {
	case err == nil && m.Outcome == qos.OutcomeUnreachable:
		t.logger.Warn().Str("metric", name).Str("target", target).Msg("No response from target")
		t.append(ctx, name, NoResponse)
		return qos.Sentinel
	case err == nil && m.Complete():
		t.append(ctx, name, record.FormatFloat(m.Value))
		return m.Value
	default:
		t.fail(name, err)
		return qos.Sentinel
	}
}

func (t *Telemetry) lossValue(ctx context.Context, target string, m qos.Measurement, err error) int {
	if err != nil || (m.Outcome != qos.OutcomeComplete && m.Outcome != qos.OutcomeUnreachable) {
		t.fail("packet_loss", err)
		return int(qos.Sentinel)
	}

	if m.Outcome == qos.OutcomeUnreachable {
		t.logger.Warn().Str("metric", NamePacketLoss).Str("target", target).Msg("No response from target")
	}

	loss := int(m.Value)
	t.append(ctx, NamePacketLoss, record.FormatInt(int64(loss)))
	return loss
}

func (t *Telemetry) append(ctx context.Context, name, value string) {
	t.recorder.Append(ctx, name, value, "")
}

func (t *Telemetry) usage(op, msg string) {
	t.logger.ErrorWithContext(errors.New().WithMessage(ErrNotArmed, msg), component, op).Msg("Usage error")
}

func (t *Telemetry) fail(op string, err error) {
	var appErr errors.Error
	if !errors.As(err, &appErr) {
		if err == nil {
			appErr = errors.New().New(ErrMetricFailed)
		} else {
			appErr = errors.New().Wrap(ErrMetricFailed, err)
		}
	}
	t.logger.ErrorWithContext(appErr, component, op).Msg("Metric unavailable")
}
