// Package monitor runs the periodic sampling loop: each tick it merges input
// rates, system metrics and foreground-window info into a telemetry snapshot,
// delivers it to the display sink and, at a coarser cadence, appends it to
// the bounded telemetry log.
package monitor

import (
	"fmt"
	"sync"
	"time"

	"telemon/internal/activity"
	"telemon/internal/input"
	"telemon/internal/recording"
	"telemon/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// tickFailureBackoff is how long the loop sleeps after a failed tick
const tickFailureBackoff = time.Second

// pausedPollInterval is the polling cadence while the loop is paused
const pausedPollInterval = 100 * time.Millisecond

// Metrics is one on-demand reading of the host counters. NetworkMB and
// DiskMB are cumulative megabytes since boot; the monitor derives MB/s from
// their deltas.
type Metrics struct {
	CPUPercent  float64
	CPUSpeedGHz float64
	MemPercent  float64
	MemUsedGB   float64
	MemTotalGB  float64
	NetworkMB   float64
	DiskMB      float64
}

// MetricsSource provides host metrics on demand. Implementations degrade to
// zeroed readings on probe failure instead of returning errors.
type MetricsSource interface {
	Metrics() Metrics
}

// WindowSource reports the foreground window. Implementations return
// ("Unknown", "No Title") when the lookup fails.
type WindowSource interface {
	ActiveWindow() (appName, title string)
}

// DisplaySink consumes snapshots each tick and aggregate status at the
// coarser status cadence. Rendering is entirely its concern.
type DisplaySink interface {
	PublishSnapshot(telemetry.Snapshot) error
	PublishStatus(StatusSummary) error
}

// StatusSummary is the aggregate state pushed to the display sink by the
// status loop
type StatusSummary struct {
	RunID           string
	Running         bool
	Paused          bool
	UptimeMinutes   int
	Totals          input.Totals
	LogLen          int
	CurrentActivity string
	Recording       recording.Status
}

// Options configures the monitor cadences and the rate window
type Options struct {
	TickInterval   time.Duration
	LogInterval    time.Duration
	RateWindow     time.Duration
	StatusInterval time.Duration
	StopTimeout    time.Duration
}

// Monitor owns the sampling and status loops. Start, Pause, Resume and Stop
// are safe to call from any goroutine; Pause and Resume are no-ops while the
// monitor is not running.
type Monitor struct {
	opts       Options
	tracker    *input.Tracker
	source     input.Source
	metrics    MetricsSource
	windows    WindowSource
	sink       DisplaySink
	log        *telemetry.Log
	activities *activity.Registry
	session    *recording.Session
	logger     *zap.Logger

	mu      sync.RWMutex
	runID   string
	running bool
	paused  bool

	// Loop-owned baselines; reset by Start before the loop spawns.
	lastNetworkMB float64
	lastDiskMB    float64
	lastTickTime  time.Time
	lastLogTime   time.Time

	stopChan chan struct{}
	wg       sync.WaitGroup

	now func() time.Time
}

// New creates a monitor over the given collaborators
func New(
	opts Options,
	tracker *input.Tracker,
	source input.Source,
	metrics MetricsSource,
	windows WindowSource,
	sink DisplaySink,
	log *telemetry.Log,
	activities *activity.Registry,
	session *recording.Session,
	logger *zap.Logger,
) *Monitor {
	return &Monitor{
		opts:       opts,
		tracker:    tracker,
		source:     source,
		metrics:    metrics,
		windows:    windows,
		sink:       sink,
		log:        log,
		activities: activities,
		session:    session,
		logger:     logger,
		now:        time.Now,
	}
}

// Start begins monitoring. It is a no-op when already running. The telemetry
// log and the network/disk baselines are reset, the input source is started
// and the tick and status loops are spawned.
func (m *Monitor) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}

	m.runID = uuid.NewString()
	m.running = true
	m.paused = false
	m.stopChan = make(chan struct{})

	m.log.Clear()
	m.lastNetworkMB = 0
	m.lastDiskMB = 0
	m.lastTickTime = m.now()
	m.lastLogTime = time.Time{}
	runID := m.runID
	m.mu.Unlock()

	if err := m.source.Start(m.tracker); err != nil {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		return fmt.Errorf("failed to start input source: %w", err)
	}

	m.wg.Add(2)
	go m.tickLoop()
	go m.statusLoop()

	m.logger.Info("Monitoring started",
		zap.String("run_id", runID),
		zap.Duration("tick_interval", m.opts.TickInterval),
		zap.Duration("log_interval", m.opts.LogInterval),
	)
	return nil
}

// Pause suspends the sampling tick. The recording clock is paused in
// lockstep and the running activity is closed; resuming does not reactivate
// it. No-op when not running.
func (m *Monitor) Pause() {
	m.mu.Lock()
	if !m.running || m.paused {
		m.mu.Unlock()
		return
	}
	m.paused = true
	m.mu.Unlock()

	if m.session.Status().Recording {
		if err := m.session.Pause(); err != nil {
			m.logger.Warn("Failed to pause recording with monitor", zap.Error(err))
		}
	}
	m.activities.PauseCurrent()

	m.logger.Info("Monitoring paused")
}

// Resume continues the sampling tick and the recording clock. The previously
// active activity stays paused; the user must reselect one. No-op when not
// running.
func (m *Monitor) Resume() {
	m.mu.Lock()
	if !m.running || !m.paused {
		m.mu.Unlock()
		return
	}
	m.paused = false
	m.mu.Unlock()

	if m.session.Status().Paused {
		if err := m.session.Resume(); err != nil {
			m.logger.Warn("Failed to resume recording with monitor", zap.Error(err))
		}
	}

	m.logger.Info("Monitoring resumed")
}

// Stop halts the loops with a bounded wait and stops the input source.
// A loop overrunning the wait is reported but not fatal; teardown proceeds.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.paused = false
	close(m.stopChan)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(m.opts.StopTimeout):
		m.logger.Warn("Monitoring loops did not stop within timeout",
			zap.Duration("timeout", m.opts.StopTimeout),
		)
	}

	if err := m.source.Stop(); err != nil {
		m.logger.Warn("Failed to stop input source", zap.Error(err))
	}

	m.logger.Info("Monitoring stopped")
}

// Running reports whether the monitor is started
func (m *Monitor) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Paused reports whether the sampling tick is suspended
func (m *Monitor) Paused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// RunID returns the identifier of the current monitoring run
func (m *Monitor) RunID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runID
}

// ResetCounters clears input counters, the telemetry log and the rate
// baselines without stopping the loops
func (m *Monitor) ResetCounters() {
	now := m.now()
	m.tracker.Reset(now)
	m.log.Clear()

	m.mu.Lock()
	m.lastNetworkMB = 0
	m.lastDiskMB = 0
	m.lastTickTime = now
	m.lastLogTime = time.Time{}
	m.mu.Unlock()

	m.logger.Info("Monitoring counters reset")
}

func (m *Monitor) tickLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.stopChan:
			return
		default:
		}

		if m.Paused() {
			select {
			case <-m.stopChan:
				return
			case <-time.After(pausedPollInterval):
			}
			continue
		}

		wait := m.opts.TickInterval
		if err := m.safeTick(m.now()); err != nil {
			m.logger.Error("Sampling tick failed", zap.Error(err))
			wait = tickFailureBackoff
		}

		select {
		case <-m.stopChan:
			return
		case <-time.After(wait):
		}
	}
}

// safeTick runs one tick, converting panics from collaborator calls into
// ordinary tick failures so the loop survives them
func (m *Monitor) safeTick(now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick panicked: %v", r)
		}
	}()
	return m.tick(now)
}

// tick performs one sampling pass: read metrics and window info, derive
// network/disk throughput from deltas, merge input rates, deliver the
// snapshot and append to the log when the log-interval gate passes.
func (m *Monitor) tick(now time.Time) error {
	metrics := m.metrics.Metrics()
	appName, title := m.windows.ActiveWindow()

	m.mu.Lock()
	lastNet := m.lastNetworkMB
	lastDisk := m.lastDiskMB
	lastTick := m.lastTickTime
	m.mu.Unlock()

	// Delta-over-time throughput. Guarded by "last bytes > 0", not "first
	// tick": a genuine zero baseline also suppresses one tick's rate.
	var networkMBps, diskMBps float64
	dt := now.Sub(lastTick).Seconds()
	if lastNet > 0 && dt > 0 {
		networkMBps = (metrics.NetworkMB - lastNet) / dt
	}
	if lastDisk > 0 && dt > 0 {
		diskMBps = (metrics.DiskMB - lastDisk) / dt
	}

	rates := m.tracker.Rates(now, m.opts.RateWindow)

	snap := telemetry.Snapshot{
		Timestamp:    now,
		AppName:      appName,
		WindowTitle:  title,
		KeyRate:      rates.Key,
		MovementRate: rates.Movement,
		ClickRate:    rates.Click,
		ScrollRate:   rates.Scroll,
		CPUPercent:   metrics.CPUPercent,
		CPUSpeedGHz:  metrics.CPUSpeedGHz,
		MemPercent:   metrics.MemPercent,
		MemUsedGB:    metrics.MemUsedGB,
		MemTotalGB:   metrics.MemTotalGB,
		NetworkMBps:  networkMBps,
		DiskMBps:     diskMBps,
	}

	if err := m.sink.PublishSnapshot(snap); err != nil {
		return fmt.Errorf("display sink rejected snapshot: %w", err)
	}

	m.mu.Lock()
	if now.Sub(m.lastLogTime) >= m.opts.LogInterval {
		m.lastLogTime = now
		m.mu.Unlock()
		m.log.Append(telemetry.Entry{
			Timestamp:    snap.Timestamp,
			AppName:      snap.AppName,
			WindowTitle:  snap.WindowTitle,
			KeyRate:      snap.KeyRate,
			MovementRate: snap.MovementRate,
			ClickRate:    snap.ClickRate,
			ScrollRate:   snap.ScrollRate,
			CPUPercent:   snap.CPUPercent,
			MemPercent:   snap.MemPercent,
			NetworkMBps:  snap.NetworkMBps,
			DiskMBps:     snap.DiskMBps,
			Activity:     m.activities.CurrentOrNone(),
			RecTimestamp: m.session.TimestampLabel(),
		})
		m.mu.Lock()
	}

	m.lastNetworkMB = metrics.NetworkMB
	m.lastDiskMB = metrics.DiskMB
	m.lastTickTime = now
	m.mu.Unlock()

	return nil
}

func (m *Monitor) statusLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.opts.StatusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.sink.PublishStatus(m.statusSummary()); err != nil {
				m.logger.Debug("Display sink rejected status", zap.Error(err))
			}
		case <-m.stopChan:
			return
		}
	}
}

func (m *Monitor) statusSummary() StatusSummary {
	now := m.now()

	m.mu.RLock()
	runID := m.runID
	running := m.running
	paused := m.paused
	m.mu.RUnlock()

	return StatusSummary{
		RunID:           runID,
		Running:         running,
		Paused:          paused,
		UptimeMinutes:   m.tracker.UptimeMinutes(now),
		Totals:          m.tracker.Totals(),
		LogLen:          m.log.Len(),
		CurrentActivity: m.activities.CurrentOrNone(),
		Recording:       m.session.Status(),
	}
}
