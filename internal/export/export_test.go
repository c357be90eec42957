package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"telemon/internal/activity"
	"telemon/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriteTelemetryCSV(t *testing.T) {
	entries := []telemetry.Entry{
		{
			Timestamp:    time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
			AppName:      "editor.exe",
			WindowTitle:  "main.go",
			KeyRate:      120,
			MovementRate: 340.5,
			ClickRate:    12,
			ScrollRate:   3,
			CPUPercent:   41.25,
			MemPercent:   62.5,
			NetworkMBps:  0.25,
			DiskMBps:     1.5,
			Activity:     "Coding",
			RecTimestamp: "00:01:30",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTelemetryCSV(&buf, entries))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, telemetryHeader, records[0])
	assert.Equal(t, []string{
		"2026-03-14 10:30:00", "editor.exe", "main.go",
		"120.00", "340.50", "12.00", "3.00",
		"41.25", "62.50", "0.25", "1.50",
		"00:01:30", "Coding",
	}, records[1])
}

func TestWriteTelemetryCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTelemetryCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, telemetryHeader, records[0])
}

func TestWriteActivityCSV(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	summary := activity.RegistrySummary{
		CurrentActivity: "Coding",
		Activities: []activity.Summary{
			{
				Name:              "Coding",
				TotalDuration:     90 * time.Second,
				FormattedDuration: "01:30",
				History: []activity.Interval{
					{Start: start, End: start.Add(60 * time.Second)},
					{Start: start.Add(2 * time.Minute), End: start.Add(2*time.Minute + 30*time.Second)},
				},
			},
			{
				Name:              "Email",
				TotalDuration:     0,
				FormattedDuration: "00:00",
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteActivityCSV(&buf, summary))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, activityHeader, records[0])
	assert.Equal(t, []string{
		"Coding", "90.00", "01:30",
		"2026-03-14 09:00:00", "2026-03-14 09:01:00", "60.00",
	}, records[1])
	assert.Equal(t, []string{
		"Coding", "90.00", "01:30",
		"2026-03-14 09:02:00", "2026-03-14 09:02:30", "30.00",
	}, records[2])
	// no intervals yet: summary row with empty interval columns
	assert.Equal(t, []string{"Email", "0.00", "00:00", "", "", ""}, records[3])
}

func TestExporterWritesFiles(t *testing.T) {
	dir := t.TempDir()
	exporter := NewExporter(dir, "telemetry", zap.NewNop())

	path, err := exporter.ExportTelemetry([]telemetry.Entry{
		{Timestamp: time.Now(), AppName: "term.exe", Activity: "None"},
	})
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "telemetry_"))
	assert.True(t, strings.HasSuffix(path, ".csv"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "term.exe")

	actPath, err := exporter.ExportActivities(activity.RegistrySummary{
		CurrentActivity: "None",
		Activities:      []activity.Summary{{Name: "Coding", FormattedDuration: "00:00"}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(actPath), "telemetry_activities_"))

	actData, err := os.ReadFile(actPath)
	require.NoError(t, err)
	assert.Contains(t, string(actData), "Coding")
}
