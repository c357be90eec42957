package main

import (
	"telemon/internal/monitor"
	"telemon/internal/telemetry"

	"go.uber.org/zap"
)

// logSink renders telemetry through the structured logger: per-tick snapshots
// at debug, aggregate status at info. It never rejects a publish.
type logSink struct {
	logger *zap.Logger
}

func newLogSink(logger *zap.Logger) *logSink {
	return &logSink{logger: logger}
}

func (s *logSink) PublishSnapshot(snap telemetry.Snapshot) error {
	s.logger.Debug("Telemetry snapshot",
		zap.Time("timestamp", snap.Timestamp),
		zap.String("app", snap.AppName),
		zap.String("title", snap.WindowTitle),
		zap.Float64("keys_per_min", snap.KeyRate),
		zap.Float64("clicks_per_min", snap.ClickRate),
		zap.Float64("scroll_per_min", snap.ScrollRate),
		zap.Float64("movement_per_min", snap.MovementRate),
		zap.Float64("cpu_percent", snap.CPUPercent),
		zap.Float64("mem_percent", snap.MemPercent),
		zap.Float64("network_mbps", snap.NetworkMBps),
		zap.Float64("disk_mbps", snap.DiskMBps),
	)
	return nil
}

func (s *logSink) PublishStatus(st monitor.StatusSummary) error {
	s.logger.Info("Monitor status",
		zap.String("run_id", st.RunID),
		zap.Bool("running", st.Running),
		zap.Bool("paused", st.Paused),
		zap.Int("uptime_minutes", st.UptimeMinutes),
		zap.Int64("total_keys", st.Totals.Keys),
		zap.Int64("total_clicks", st.Totals.Clicks),
		zap.Int("log_entries", st.LogLen),
		zap.String("activity", st.CurrentActivity),
		zap.Bool("recording", st.Recording.Recording),
	)
	return nil
}
