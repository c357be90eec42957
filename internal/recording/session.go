// Package recording tracks elapsed wall-time of a screen-recording session
// under pause/resume, reconciled against the frame count reported by an
// external capture engine so a capture stall cannot inflate the reported
// duration.
package recording

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"telemon/internal/timefmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Screen describes a capture target reported by the engine
type Screen struct {
	ID     int
	Name   string
	Width  int
	Height int
}

// Engine is the external capture/encoder collaborator. Frame production is
// reported back through Session.FrameCaptured, one call per encoded frame.
type Engine interface {
	Start(outputPath string, width, height, fps int) error
	Stop() error
	Pause() error
	Resume() error
	Screens() []Screen
}

// Options configures a recording session
type Options struct {
	FPS       int
	MaxWidth  int
	MaxHeight int
}

// Status is a point-in-time view of the session
type Status struct {
	Recording         bool // capturing right now (started and not paused)
	Paused            bool
	Available         bool
	SessionID         string
	OutputPath        string
	Screen            int
	ScreenName        string
	FPS               int
	ActualFPS         float64
	FrameCount        int64
	Duration          time.Duration
	DurationFormatted string
}

// Session is the recording clock. Invalid transitions return descriptive
// errors and never mutate state.
type Session struct {
	mu     sync.Mutex
	engine Engine
	logger *zap.Logger

	fps       int
	maxWidth  int
	maxHeight int

	screens     []Screen
	screenIndex int

	recording      bool
	paused         bool
	sessionID      string
	outputPath     string
	startedAt      time.Time
	pausedAccum    time.Duration
	pauseStartedAt time.Time
	frameCount     int64

	now func() time.Time
}

// NewSession creates a session clock driving the given engine. A nil engine
// means recording is unavailable; every Start reports that and the rest of
// the agent keeps operating.
func NewSession(engine Engine, opts Options, logger *zap.Logger) *Session {
	s := &Session{
		engine:    engine,
		logger:    logger,
		fps:       opts.FPS,
		maxWidth:  opts.MaxWidth,
		maxHeight: opts.MaxHeight,
		now:       time.Now,
	}
	if engine != nil {
		s.screens = engine.Screens()
	}
	return s
}

// Available reports whether a capture engine is wired in
func (s *Session) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine != nil
}

// Screens returns the capture targets reported by the engine
func (s *Session) Screens() []Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Screen, len(s.screens))
	copy(out, s.screens)
	return out
}

// SetScreen selects the capture target by index
func (s *Session) SetScreen(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.screens) {
		return fmt.Errorf("invalid screen id %d", index)
	}
	s.screenIndex = index
	return nil
}

// SetFPS changes the target frame rate. Rejected while recording.
func (s *Session) SetFPS(fps int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fps <= 0 {
		return errors.New("fps must be greater than 0")
	}
	if fps > 60 {
		return errors.New("fps cannot exceed 60")
	}
	if s.recording {
		return errors.New("cannot change fps while recording")
	}
	s.fps = fps
	return nil
}

// Start begins a recording session. Valid only from the stopped state.
// An empty outputPath derives a timestamped default filename.
func (s *Session) Start(outputPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return errors.New("screen recording engine not available")
	}
	if s.recording {
		return errors.New("screen recording already in progress")
	}
	if len(s.screens) == 0 {
		return errors.New("no screens available for recording")
	}

	now := s.now()
	if outputPath == "" {
		outputPath = fmt.Sprintf("screen_recording_%s.avi", now.Format("20060102_150405"))
	}

	width, height := s.scaledDimensions()
	if err := s.engine.Start(outputPath, width, height, s.fps); err != nil {
		return fmt.Errorf("failed to start capture engine: %w", err)
	}

	s.recording = true
	s.paused = false
	s.sessionID = uuid.NewString()
	s.outputPath = outputPath
	s.startedAt = now
	s.pausedAccum = 0
	s.pauseStartedAt = time.Time{}
	s.frameCount = 0

	s.logger.Info("Screen recording started",
		zap.String("session_id", s.sessionID),
		zap.String("output_path", outputPath),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("fps", s.fps),
	)
	return nil
}

// Pause suspends the session clock. Valid only while recording un-paused.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		return errors.New("no screen recording in progress")
	}
	if s.paused {
		return errors.New("recording already paused")
	}
	if err := s.engine.Pause(); err != nil {
		return fmt.Errorf("failed to pause capture engine: %w", err)
	}

	s.paused = true
	s.pauseStartedAt = s.now()

	s.logger.Info("Screen recording paused", zap.String("session_id", s.sessionID))
	return nil
}

// Resume continues a paused session, accruing the paused span
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		return errors.New("no screen recording in progress")
	}
	if !s.paused {
		return errors.New("recording is not paused")
	}
	if err := s.engine.Resume(); err != nil {
		return fmt.Errorf("failed to resume capture engine: %w", err)
	}

	now := s.now()
	s.pausedAccum += now.Sub(s.pauseStartedAt)
	s.pauseStartedAt = time.Time{}
	s.paused = false

	s.logger.Info("Screen recording resumed",
		zap.String("session_id", s.sessionID),
		zap.Duration("paused_total", s.pausedAccum),
	)
	return nil
}

// Stop ends the session. Valid from recording or paused. Duration queries
// after a stop report zero.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		return errors.New("no screen recording in progress")
	}

	sessionID := s.sessionID
	frames := s.frameCount

	s.recording = false
	s.paused = false
	s.startedAt = time.Time{}
	s.pausedAccum = 0
	s.pauseStartedAt = time.Time{}

	if err := s.engine.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture engine: %w", err)
	}

	s.logger.Info("Screen recording stopped",
		zap.String("session_id", sessionID),
		zap.String("output_path", s.outputPath),
		zap.Int64("frames", frames),
	)
	return nil
}

// FrameCaptured records one successfully captured and encoded frame. This is
// the only mutation path for the frame count.
func (s *Session) FrameCaptured() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		return
	}
	s.frameCount++
}

// Status reports the current session view. While actively recording with
// frames produced, the wall-clock duration is clamped by the frame-derived
// estimate so capture stalls do not overreport.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Recording:  s.recording && !s.paused,
		Paused:     s.paused,
		Available:  s.engine != nil,
		SessionID:  s.sessionID,
		OutputPath: s.outputPath,
		Screen:     s.screenIndex,
		FPS:        s.fps,
		FrameCount: s.frameCount,
	}
	if s.screenIndex < len(s.screens) {
		st.ScreenName = s.screens[s.screenIndex].Name
	}

	duration := s.elapsedLocked(s.now())
	if s.recording && !s.paused && s.frameCount > 0 {
		frameBased := s.frameDuration()
		if frameBased < duration {
			duration = frameBased
		}
	}
	st.Duration = duration
	st.DurationFormatted = timefmt.Brief(duration)
	if duration > 0 {
		st.ActualFPS = float64(s.frameCount) / duration.Seconds()
	}
	return st
}

// TimestampLabel returns the elapsed recording time as HH:MM:SS for log
// entries, or "" when no session is active
func (s *Session) TimestampLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording || s.startedAt.IsZero() {
		return ""
	}

	elapsed := s.elapsedLocked(s.now())
	if s.frameCount > 0 {
		if frameBased := s.frameDuration(); frameBased < elapsed {
			elapsed = frameBased
		}
	}
	return timefmt.LongClock(elapsed)
}

// elapsedLocked computes wall-clock elapsed time minus paused spans,
// floored at zero. Zero when never started or stopped.
func (s *Session) elapsedLocked(now time.Time) time.Duration {
	if s.startedAt.IsZero() {
		return 0
	}
	elapsed := now.Sub(s.startedAt) - s.pausedAccum
	if s.paused && !s.pauseStartedAt.IsZero() {
		elapsed -= now.Sub(s.pauseStartedAt)
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed
}

func (s *Session) frameDuration() time.Duration {
	return time.Duration(float64(s.frameCount) / float64(s.fps) * float64(time.Second))
}

// scaledDimensions shrinks the selected screen to fit the configured maximum
// resolution while preserving aspect ratio
func (s *Session) scaledDimensions() (int, int) {
	screen := s.screens[s.screenIndex]
	width, height := screen.Width, screen.Height

	targetW := s.maxWidth
	if width < targetW {
		targetW = width
	}
	targetH := s.maxHeight
	if height < targetH {
		targetH = height
	}

	scaleW := float64(targetW) / float64(width)
	scaleH := float64(targetH) / float64(height)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	return int(float64(width) * scale), int(float64(height) * scale)
}
