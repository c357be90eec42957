package recording

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeEngine is an in-memory capture engine for tests
type fakeEngine struct {
	screens  []Screen
	startErr error
	started  bool
	paused   bool
	lastW    int
	lastH    int
	lastFPS  int
}

func (e *fakeEngine) Start(path string, w, h, fps int) error {
	if e.startErr != nil {
		return e.startErr
	}
	e.started = true
	e.lastW, e.lastH, e.lastFPS = w, h, fps
	return nil
}

func (e *fakeEngine) Stop() error   { e.started = false; return nil }
func (e *fakeEngine) Pause() error  { e.paused = true; return nil }
func (e *fakeEngine) Resume() error { e.paused = false; return nil }
func (e *fakeEngine) Screens() []Screen {
	return e.screens
}

func defaultEngine() *fakeEngine {
	return &fakeEngine{screens: []Screen{{ID: 0, Name: "Primary Screen", Width: 1920, Height: 1080}}}
}

func newTestSession(engine Engine) (*Session, *time.Time) {
	s := NewSession(engine, Options{FPS: 10, MaxWidth: 1280, MaxHeight: 720}, zap.NewNop())
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestStart_ScalesToMaxResolution(t *testing.T) {
	engine := defaultEngine()
	s, _ := newTestSession(engine)

	require.NoError(t, s.Start("out.avi"))
	// 1920x1080 scaled to fit 1280x720 keeps the 16:9 ratio.
	assert.Equal(t, 1280, engine.lastW)
	assert.Equal(t, 720, engine.lastH)
	assert.Equal(t, 10, engine.lastFPS)
	assert.NotEmpty(t, s.Status().SessionID)
	assert.Equal(t, "out.avi", s.Status().OutputPath)
}

func TestStart_DefaultOutputPath(t *testing.T) {
	s, _ := newTestSession(defaultEngine())
	require.NoError(t, s.Start(""))
	assert.Equal(t, "screen_recording_20250601_100000.avi", s.Status().OutputPath)
}

func TestStart_Unavailable(t *testing.T) {
	s, _ := newTestSession(nil)
	err := s.Start("out.avi")
	require.Error(t, err)
	assert.False(t, s.Status().Recording)
	assert.False(t, s.Status().Available)
}

func TestStart_EngineFailureDoesNotMutate(t *testing.T) {
	engine := defaultEngine()
	engine.startErr = errors.New("no encoder")
	s, _ := newTestSession(engine)

	require.Error(t, s.Start("out.avi"))
	st := s.Status()
	assert.False(t, st.Recording)
	assert.Empty(t, st.SessionID)
	assert.Zero(t, st.Duration)
}

func TestInvalidTransitions(t *testing.T) {
	s, _ := newTestSession(defaultEngine())

	assert.Error(t, s.Pause())
	assert.Error(t, s.Resume())
	assert.Error(t, s.Stop())

	require.NoError(t, s.Start("out.avi"))
	assert.Error(t, s.Start("again.avi"))
	assert.Error(t, s.Resume()) // not paused

	require.NoError(t, s.Pause())
	assert.Error(t, s.Pause()) // already paused

	require.NoError(t, s.Resume())
	require.NoError(t, s.Stop())
	assert.Error(t, s.Stop())
}

func TestFrameClamp(t *testing.T) {
	s, now := newTestSession(defaultEngine())
	require.NoError(t, s.Start("out.avi"))

	// 10 wall-clock seconds but only 5 frames at 10 fps: 0.5s of content.
	*now = now.Add(10 * time.Second)
	for i := 0; i < 5; i++ {
		s.FrameCaptured()
	}

	st := s.Status()
	assert.Equal(t, 500*time.Millisecond, st.Duration)
	assert.Equal(t, int64(5), st.FrameCount)
	assert.Equal(t, "00:00:00", s.TimestampLabel())
}

func TestPauseAccounting(t *testing.T) {
	s, now := newTestSession(defaultEngine())
	start := *now
	require.NoError(t, s.Start("out.avi"))

	*now = start.Add(5 * time.Second)
	require.NoError(t, s.Pause())

	// While paused the clock is frozen at 5s.
	*now = start.Add(12 * time.Second)
	assert.Equal(t, 5*time.Second, s.Status().Duration)
	assert.True(t, s.Status().Paused)
	assert.False(t, s.Status().Recording)

	*now = start.Add(15 * time.Second)
	require.NoError(t, s.Resume())

	// 20s wall minus 10s paused: 10s elapsed. No frames, so no clamp.
	*now = start.Add(20 * time.Second)
	assert.Equal(t, 10*time.Second, s.Status().Duration)
}

func TestStop_ReportsZeroDuration(t *testing.T) {
	s, now := newTestSession(defaultEngine())
	require.NoError(t, s.Start("out.avi"))
	*now = now.Add(30 * time.Second)

	require.NoError(t, s.Stop())
	st := s.Status()
	assert.Zero(t, st.Duration)
	assert.False(t, st.Recording)
	assert.Equal(t, "", s.TimestampLabel())
	// The output path survives the stop for the caller's benefit.
	assert.Equal(t, "out.avi", st.OutputPath)
}

func TestFrameCaptured_IgnoredWhenStopped(t *testing.T) {
	s, _ := newTestSession(defaultEngine())
	s.FrameCaptured()
	assert.Zero(t, s.Status().FrameCount)
}

func TestTimestampLabel(t *testing.T) {
	s, now := newTestSession(defaultEngine())
	assert.Equal(t, "", s.TimestampLabel())

	require.NoError(t, s.Start("out.avi"))
	*now = now.Add(65 * time.Second)
	// 650 frames at 10fps matches the wall clock exactly.
	for i := 0; i < 650; i++ {
		s.FrameCaptured()
	}
	assert.Equal(t, "00:01:05", s.TimestampLabel())
}

func TestSetFPS(t *testing.T) {
	s, _ := newTestSession(defaultEngine())

	assert.Error(t, s.SetFPS(0))
	assert.Error(t, s.SetFPS(61))
	require.NoError(t, s.SetFPS(30))
	assert.Equal(t, 30, s.Status().FPS)

	require.NoError(t, s.Start("out.avi"))
	assert.Error(t, s.SetFPS(15))
}

func TestSetScreen(t *testing.T) {
	engine := defaultEngine()
	engine.screens = append(engine.screens, Screen{ID: 1, Name: "Secondary", Width: 2560, Height: 1440})
	s, _ := newTestSession(engine)

	assert.Error(t, s.SetScreen(-1))
	assert.Error(t, s.SetScreen(2))
	require.NoError(t, s.SetScreen(1))
	assert.Equal(t, "Secondary", s.Status().ScreenName)
}
