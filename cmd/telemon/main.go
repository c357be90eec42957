package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telemon/internal/activity"
	"telemon/internal/config"
	"telemon/internal/export"
	"telemon/internal/input"
	"telemon/internal/logger"
	"telemon/internal/monitor"
	"telemon/internal/recording"
	"telemon/internal/sysmetrics"
	"telemon/internal/telemetry"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/local.yaml", "Path to configuration file")
	exportOnExit := flag.Bool("export-on-exit", false, "Write the telemetry log and activity summary to CSV on shutdown")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewWithFile(cfg.Log.Level, cfg.Log.Format, logger.FileRotation{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting telemetry monitor",
		zap.String("env", cfg.Env),
		zap.String("config_path", *configPath),
	)

	tracker := input.NewTracker(cfg.Monitor.HistoryCapacity)
	activities := activity.NewRegistry()
	telemetryLog := telemetry.NewLog(cfg.Monitor.LogCapacity)

	// No capture engine wired in this build; the session reports recording as
	// unavailable and the rest of the agent keeps operating.
	session := recording.NewSession(nil, recording.Options{
		FPS:       cfg.Recording.FPS,
		MaxWidth:  cfg.Recording.MaxWidth,
		MaxHeight: cfg.Recording.MaxHeight,
	}, log.Logger)

	metricsSource := sysmetrics.NewSource(log.Logger)
	windowSource := sysmetrics.StubWindowSource{}
	sink := newLogSink(log.Logger)

	mon := monitor.New(
		monitor.Options{
			TickInterval:   cfg.Monitor.TickInterval(),
			LogInterval:    cfg.Monitor.LogInterval(),
			RateWindow:     cfg.Monitor.RateWindow(),
			StatusInterval: cfg.Monitor.StatusInterval(),
			StopTimeout:    cfg.Monitor.StopTimeout(),
		},
		tracker,
		input.NopSource{},
		metricsSource,
		windowSource,
		sink,
		telemetryLog,
		activities,
		session,
		log.Logger,
	)

	if err := mon.Start(); err != nil {
		log.Fatal("Failed to start monitor", zap.Error(err))
	}

	log.Info("Telemetry monitor started",
		zap.String("run_id", mon.RunID()),
		zap.Float64("tick_interval_sec", cfg.Monitor.TickIntervalSec),
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Received shutdown signal", zap.String("signal", sig.String()))

	if session.Status().Recording || session.Status().Paused {
		if err := session.Stop(); err != nil {
			log.Warn("Failed to stop recording session", zap.Error(err))
		}
	}

	// Stop the monitor synchronously, with a timeout around its own bounded
	// wait so a stuck input source cannot hang shutdown.
	done := make(chan struct{})
	go func() {
		mon.Stop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Monitor stopped successfully")
	case <-time.After(cfg.Monitor.StopTimeout() + time.Second):
		log.Warn("Shutdown timeout reached, forcing immediate exit")
		os.Exit(1)
	}

	if *exportOnExit {
		exporter := export.NewExporter(cfg.Export.Dir, cfg.Export.BaseName, log.Logger)
		if _, err := exporter.ExportTelemetry(telemetryLog.Entries()); err != nil {
			log.Error("Failed to export telemetry log", zap.Error(err))
		}
		if _, err := exporter.ExportActivities(activities.Summary(time.Now())); err != nil {
			log.Error("Failed to export activity summary", zap.Error(err))
		}
	}

	log.Info("Telemetry monitor stopped")
}
