// Package sysmetrics implements the monitor's metrics and window sources on
// top of gopsutil. Every probe degrades to a zeroed reading on failure; a
// broken sensor must never take the sampling loop down.
package sysmetrics

import (
	"time"

	"telemon/internal/monitor"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	psnet "github.com/shirou/gopsutil/v4/net"
	"go.uber.org/zap"
)

const (
	mb = 1024 * 1024
	gb = 1024 * 1024 * 1024
)

// cpuSampleInterval is the blocking window for the CPU usage probe
const cpuSampleInterval = 500 * time.Millisecond

// Source reads host counters through gopsutil
type Source struct {
	logger *zap.Logger
}

// NewSource creates a gopsutil-backed metrics source
func NewSource(logger *zap.Logger) *Source {
	return &Source{logger: logger}
}

// Metrics implements monitor.MetricsSource
func (s *Source) Metrics() monitor.Metrics {
	var m monitor.Metrics

	if pcts, err := cpu.Percent(cpuSampleInterval, false); err == nil && len(pcts) > 0 {
		m.CPUPercent = pcts[0]
	} else if err != nil {
		s.logger.Debug("CPU usage probe failed", zap.Error(err))
	}

	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		m.CPUSpeedGHz = infos[0].Mhz / 1000.0
	} else if err != nil {
		s.logger.Debug("CPU info probe failed", zap.Error(err))
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		m.MemPercent = vm.UsedPercent
		m.MemUsedGB = float64(vm.Used) / gb
		m.MemTotalGB = float64(vm.Total) / gb
	} else {
		s.logger.Debug("Memory probe failed", zap.Error(err))
	}

	// Cumulative megabytes; the monitor derives MB/s from tick deltas.
	if counters, err := disk.IOCounters(); err == nil {
		var total uint64
		for _, c := range counters {
			total += c.ReadBytes + c.WriteBytes
		}
		m.DiskMB = float64(total) / mb
	} else {
		s.logger.Debug("Disk I/O probe failed", zap.Error(err))
	}

	if stats, err := psnet.IOCounters(false); err == nil && len(stats) > 0 {
		m.NetworkMB = float64(stats[0].BytesSent+stats[0].BytesRecv) / mb
	} else if err != nil {
		s.logger.Debug("Network probe failed", zap.Error(err))
	}

	return m
}

// SystemUptime returns how long the host has been up, or 0 when unknown
func (s *Source) SystemUptime() time.Duration {
	secs, err := host.Uptime()
	if err != nil {
		s.logger.Debug("Uptime probe failed", zap.Error(err))
		return 0
	}
	return time.Duration(secs) * time.Second
}

// StubWindowSource is the fallback monitor.WindowSource for platforms
// without a foreground-window lookup
type StubWindowSource struct{}

// ActiveWindow implements monitor.WindowSource
func (StubWindowSource) ActiveWindow() (string, string) {
	return "Unknown", "No Title"
}
