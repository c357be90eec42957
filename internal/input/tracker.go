// Package input implements sliding-window rate tracking over discrete
// keyboard and mouse event streams.
package input

import (
	"sync"
	"time"
)

// DefaultHistoryCapacity bounds each event history (10 minutes at 1s cadence)
const DefaultHistoryCapacity = 600

// Class identifies an input event stream
type Class int

const (
	ClassKey Class = iota
	ClassClick
	ClassScroll
	ClassMovement
	classCount
)

// String returns the class name used in logs
func (c Class) String() string {
	switch c {
	case ClassKey:
		return "key"
	case ClassClick:
		return "click"
	case ClassScroll:
		return "scroll"
	case ClassMovement:
		return "movement"
	default:
		return "unknown"
	}
}

// Rates holds per-minute input rates over the configured window.
// Movement is the summed pixel distance inside the window; unlike the
// count-based rates it is not renormalized to a 60s basis.
type Rates struct {
	Key      float64
	Click    float64
	Scroll   float64
	Movement float64
}

// Totals holds lifetime counters since start or the last reset
type Totals struct {
	Keys     int64
	Clicks   int64
	Scroll   float64
	Distance float64
}

// HistorySummary describes the retained event histories
type HistorySummary struct {
	RecentKeys    int
	RecentClicks  int
	RecentScroll  int
	HistoryKeys   int
	HistoryClicks int
	HistoryScroll int
}

type event struct {
	at        time.Time
	magnitude float64
}

// history is a fixed-capacity ring of events, oldest evicted first.
// Entries are appended in chronological order.
type history struct {
	buf  []event
	head int
	size int
}

func newHistory(capacity int) *history {
	return &history{buf: make([]event, capacity)}
}

func (h *history) append(e event) {
	if h.size == len(h.buf) {
		h.buf[h.head] = e
		h.head = (h.head + 1) % len(h.buf)
		return
	}
	h.buf[(h.head+h.size)%len(h.buf)] = e
	h.size++
}

func (h *history) countAfter(cutoff time.Time) int {
	n := 0
	for i := 0; i < h.size; i++ {
		if h.buf[(h.head+i)%len(h.buf)].at.After(cutoff) {
			n++
		}
	}
	return n
}

func (h *history) sumAfter(cutoff time.Time) float64 {
	var sum float64
	for i := 0; i < h.size; i++ {
		e := h.buf[(h.head+i)%len(h.buf)]
		if e.at.After(cutoff) {
			sum += e.magnitude
		}
	}
	return sum
}

func (h *history) clear() {
	h.head = 0
	h.size = 0
}

// Tracker accumulates input events and computes windowed rates.
// It is safe for a concurrent writer (the input source) and readers
// (the sampling loop, diagnostics).
type Tracker struct {
	mu        sync.Mutex
	histories [classCount]*history

	keyCount      int64
	clickCount    int64
	scrollTotal   float64
	distanceTotal float64

	startedAt time.Time
}

// NewTracker creates a tracker with the given per-class history capacity
func NewTracker(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	t := &Tracker{startedAt: time.Now()}
	for i := range t.histories {
		t.histories[i] = newHistory(capacity)
	}
	return t
}

// Record appends an event to the class history and bumps lifetime totals.
// magnitude carries the scroll delta or movement distance; it is ignored
// for key and click events.
func (t *Tracker) Record(class Class, at time.Time, magnitude float64) {
	if class < 0 || class >= classCount {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.histories[class].append(event{at: at, magnitude: magnitude})

	switch class {
	case ClassKey:
		t.keyCount++
	case ClassClick:
		t.clickCount++
	case ClassScroll:
		if magnitude < 0 {
			magnitude = -magnitude
		}
		t.scrollTotal += magnitude
	case ClassMovement:
		t.distanceTotal += magnitude
	}
}

// Rates computes per-minute rates over the trailing window ending at now.
// Count-based classes are normalized to a 60-second basis; movement is the
// raw distance sum inside the window.
func (t *Tracker) Rates(now time.Time, window time.Duration) Rates {
	cutoff := now.Add(-window)
	factor := 60.0 / window.Seconds()

	t.mu.Lock()
	defer t.mu.Unlock()

	return Rates{
		Key:      float64(t.histories[ClassKey].countAfter(cutoff)) * factor,
		Click:    float64(t.histories[ClassClick].countAfter(cutoff)) * factor,
		Scroll:   float64(t.histories[ClassScroll].countAfter(cutoff)) * factor,
		Movement: t.histories[ClassMovement].sumAfter(cutoff),
	}
}

// Totals returns lifetime counters since start or the last reset
func (t *Tracker) Totals() Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Totals{
		Keys:     t.keyCount,
		Clicks:   t.clickCount,
		Scroll:   t.scrollTotal,
		Distance: t.distanceTotal,
	}
}

// HistorySummary reports in-window and retained event counts
func (t *Tracker) HistorySummary(now time.Time, window time.Duration) HistorySummary {
	cutoff := now.Add(-window)

	t.mu.Lock()
	defer t.mu.Unlock()

	return HistorySummary{
		RecentKeys:    t.histories[ClassKey].countAfter(cutoff),
		RecentClicks:  t.histories[ClassClick].countAfter(cutoff),
		RecentScroll:  t.histories[ClassScroll].countAfter(cutoff),
		HistoryKeys:   t.histories[ClassKey].size,
		HistoryClicks: t.histories[ClassClick].size,
		HistoryScroll: t.histories[ClassScroll].size,
	}
}

// HistoryLen returns the number of retained events for the class
func (t *Tracker) HistoryLen(class Class) int {
	if class < 0 || class >= classCount {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.histories[class].size
}

// UptimeMinutes returns whole minutes since start or the last reset
func (t *Tracker) UptimeMinutes(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(now.Sub(t.startedAt).Minutes())
}

// Reset clears all histories and counters and restarts the uptime clock
func (t *Tracker) Reset(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, h := range t.histories {
		h.clear()
	}
	t.keyCount = 0
	t.clickCount = 0
	t.scrollTotal = 0
	t.distanceTotal = 0
	t.startedAt = now
}
