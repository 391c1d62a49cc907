package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/qosprobe/internal/config"
	"codeberg.org/mutker/qosprobe/internal/journal"
	"codeberg.org/mutker/qosprobe/internal/logger"
	"codeberg.org/mutker/qosprobe/internal/metriclog"
	"codeberg.org/mutker/qosprobe/internal/parser"
	"codeberg.org/mutker/qosprobe/internal/pid"
	"codeberg.org/mutker/qosprobe/internal/probe"
	"codeberg.org/mutker/qosprobe/internal/qos"
	"codeberg.org/mutker/qosprobe/internal/telemetry"
)

type Sample struct {
	Latency       float64
	Jitter        float64
	PacketLoss    int
	CPU           float64
	MemoryMB      float64
	MemoryPercent float64
	Connected     bool
	Connection    string
}

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Msg("Config loaded")
}

func main() {
	pidFile := pid.New("", "")
	if err := pidFile.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write pid file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	tel, err := setup()
	if err != nil {
		logger.Error().Err(err).Msg("failed to set up telemetry")
		cleanup(pidFile, nil)
		os.Exit(1)
	}

	logSample(sample(ctx, tel))
	cleanup(pidFile, tel)
}

func setup() (*telemetry.Telemetry, error) {
	log := logger.Default()

	j, err := journal.NewService(journal.Config{
		DBPath:       cfg.Journal.Path,
		BatchSize:    cfg.Journal.BatchSize,
		BatchTimeout: cfg.Journal.BatchTimeout,
		Enabled:      cfg.Journal.Enabled,
	}, log)
	if err != nil {
		return nil, err
	}

	records, err := metriclog.New(metriclog.Config{
		Dir:          cfg.Log.Dir,
		BaseName:     cfg.Log.BaseName,
		EscapeMarkup: cfg.Log.EscapeMarkup,
	}, log, j)
	if err != nil {
		j.Close()
		return nil, err
	}

	mode, err := parser.ParseCPUMode(cfg.CPU.ParseMode)
	if err != nil {
		records.Close()
		return nil, err
	}

	runner := probe.NewExecRunner(probe.Config{
		Timeout: cfg.Probe.Timeout,
		Rate:    cfg.Probe.Rate,
	}, log)

	calc, err := qos.New(runner, qos.Config{
		PingPath:          cfg.Probe.PingPath,
		TopPath:           cfg.Probe.TopPath,
		JitterMaxAttempts: cfg.Jitter.MaxAttempts,
		PacketLossCount:   cfg.PacketLoss.Count,
		CPUParseMode:      mode,
	}, log)
	if err != nil {
		records.Close()
		return nil, err
	}

	tel := telemetry.New(calc, records,
		telemetry.WithPlatform(&telemetry.HostPlatform{}),
		telemetry.WithLogger(log),
	)

	logger.Info().
		Str("session", tel.SessionID()).
		Str("records", records.Path()).
		Bool("journal", cfg.Journal.Enabled).
		Msg("Sampler ready")

	return tel, nil
}

func sample(ctx context.Context, tel *telemetry.Telemetry) Sample {
	s := Sample{
		Latency:    qos.Sentinel,
		Jitter:     qos.Sentinel,
		PacketLoss: int(qos.Sentinel),
	}

	s.Connected = tel.IsConnected(ctx)
	s.Connection = tel.ConnectionType(ctx)

	if cfg.Target != "" {
		s.Latency = tel.Latency(ctx, cfg.Target)
		s.Jitter = tel.Jitter(ctx, cfg.Target)
		s.PacketLoss = tel.PacketLoss(ctx, cfg.Target)
	} else {
		logger.Info().Msg("No target set, skipping network probes")
	}

	s.CPU = tel.CPUConsumption(ctx)
	s.MemoryMB = tel.MemoryConsumptionMB(ctx)
	s.MemoryPercent = tel.MemoryConsumptionPercent(ctx)

	return s
}

func logSample(s Sample) {
	logger.Info().
		Str("target", cfg.Target).
		Bool("connected", s.Connected).
		Str("connection", s.Connection).
		Float64("latency_ms", s.Latency).
		Float64("jitter_ms", s.Jitter).
		Int("packet_loss", s.PacketLoss).
		Float64("cpu", s.CPU).
		Float64("memory_mb", s.MemoryMB).
		Float64("memory_percent", s.MemoryPercent).
		Msg("")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func cleanup(pidFile *pid.File, tel *telemetry.Telemetry) {
	if tel != nil {
		if err := tel.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close telemetry")
		}
	}
	if err := pidFile.Remove(); err != nil {
		logger.Error().Err(err).Msg("failed to remove pid file")
	}
	logger.Info().Msg("Exiting...")
}
