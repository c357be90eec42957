// Package export writes the telemetry log and the activity summary to CSV
// files for spreadsheet import.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"telemon/internal/activity"
	"telemon/internal/telemetry"

	"go.uber.org/zap"
)

const timestampLayout = "2006-01-02 15:04:05"

var telemetryHeader = []string{
	"Timestamp", "App Name", "Window Title",
	"Keys/min", "Mouse/min", "Clicks/min", "Scroll/min",
	"CPU %", "Memory %", "Network MBps", "Disk MBps",
	"Rec Timestamp", "Activity",
}

var activityHeader = []string{
	"Activity", "Total Duration (s)", "Formatted Duration", "Interval Start", "Interval End", "Interval Duration (s)",
}

// Exporter writes timestamped CSV files into a directory
type Exporter struct {
	dir      string
	baseName string
	logger   *zap.Logger
}

// NewExporter creates an exporter rooted at dir; files are named
// <baseName>_<timestamp>.csv
func NewExporter(dir, baseName string, logger *zap.Logger) *Exporter {
	return &Exporter{dir: dir, baseName: baseName, logger: logger}
}

// ExportTelemetry writes the telemetry entries to a new CSV file and returns
// its path
func (e *Exporter) ExportTelemetry(entries []telemetry.Entry) (string, error) {
	path := e.filename("")
	if err := e.writeFile(path, func(w io.Writer) error {
		return WriteTelemetryCSV(w, entries)
	}); err != nil {
		return "", err
	}

	e.logger.Info("Telemetry log exported",
		zap.String("path", path),
		zap.Int("entries", len(entries)),
	)
	return path, nil
}

// ExportActivities writes the activity summary to a new CSV file and returns
// its path
func (e *Exporter) ExportActivities(summary activity.RegistrySummary) (string, error) {
	path := e.filename("_activities")
	if err := e.writeFile(path, func(w io.Writer) error {
		return WriteActivityCSV(w, summary)
	}); err != nil {
		return "", err
	}

	e.logger.Info("Activity summary exported",
		zap.String("path", path),
		zap.Int("activities", len(summary.Activities)),
	)
	return path, nil
}

func (e *Exporter) filename(suffix string) string {
	stamp := time.Now().Format("20060102_150405")
	return filepath.Join(e.dir, fmt.Sprintf("%s%s_%s.csv", e.baseName, suffix, stamp))
}

func (e *Exporter) writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()
	return write(f)
}

// WriteTelemetryCSV writes entries as CSV in the telemetry table column order
func WriteTelemetryCSV(w io.Writer, entries []telemetry.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(telemetryHeader); err != nil {
		return err
	}

	for _, entry := range entries {
		record := []string{
			entry.Timestamp.Format(timestampLayout),
			entry.AppName,
			entry.WindowTitle,
			fmt.Sprintf("%.2f", entry.KeyRate),
			fmt.Sprintf("%.2f", entry.MovementRate),
			fmt.Sprintf("%.2f", entry.ClickRate),
			fmt.Sprintf("%.2f", entry.ScrollRate),
			fmt.Sprintf("%.2f", entry.CPUPercent),
			fmt.Sprintf("%.2f", entry.MemPercent),
			fmt.Sprintf("%.2f", entry.NetworkMBps),
			fmt.Sprintf("%.2f", entry.DiskMBps),
			entry.RecTimestamp,
			entry.Activity,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteActivityCSV writes the activity summary as CSV, one row per closed
// interval plus a summary row for activities with no history yet
func WriteActivityCSV(w io.Writer, summary activity.RegistrySummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(activityHeader); err != nil {
		return err
	}

	for _, a := range summary.Activities {
		if len(a.History) == 0 {
			record := []string{
				a.Name,
				fmt.Sprintf("%.2f", a.TotalDuration.Seconds()),
				a.FormattedDuration,
				"", "", "",
			}
			if err := cw.Write(record); err != nil {
				return err
			}
			continue
		}
		for _, iv := range a.History {
			record := []string{
				a.Name,
				fmt.Sprintf("%.2f", a.TotalDuration.Seconds()),
				a.FormattedDuration,
				iv.Start.Format(timestampLayout),
				iv.End.Format(timestampLayout),
				fmt.Sprintf("%.2f", iv.Duration().Seconds()),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
