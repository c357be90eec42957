// Package telemetry defines the per-tick snapshot and the bounded in-memory
// log the exporters read.
package telemetry

import (
	"sync"
	"time"
)

// DefaultLogCapacity bounds the telemetry log ring buffer
const DefaultLogCapacity = 1000

// Snapshot is the immutable per-tick display record
type Snapshot struct {
	Timestamp    time.Time
	AppName      string
	WindowTitle  string
	KeyRate      float64
	MovementRate float64
	ClickRate    float64
	ScrollRate   float64
	CPUPercent   float64
	CPUSpeedGHz  float64
	MemPercent   float64
	MemUsedGB    float64
	MemTotalGB   float64
	NetworkMBps  float64
	DiskMBps     float64
}

// Entry is one logged telemetry row: the snapshot subset shown in the table
// plus the active activity name and the recording timestamp label
type Entry struct {
	Timestamp    time.Time
	AppName      string
	WindowTitle  string
	KeyRate      float64
	MovementRate float64
	ClickRate    float64
	ScrollRate   float64
	CPUPercent   float64
	MemPercent   float64
	NetworkMBps  float64
	DiskMBps     float64
	Activity     string
	RecTimestamp string
}

// Log is a capacity-bounded ring buffer of entries, oldest evicted first.
// Single writer (the sampling loop), many readers (display, export).
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	head    int
	size    int
}

// NewLog creates a log holding at most capacity entries
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &Log{entries: make([]Entry, capacity)}
}

// Append adds an entry, evicting the oldest once full
func (l *Log) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.size == len(l.entries) {
		l.entries[l.head] = e
		l.head = (l.head + 1) % len(l.entries)
		return
	}
	l.entries[(l.head+l.size)%len(l.entries)] = e
	l.size++
}

// Entries returns a copy of the retained entries in chronological order
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.entries[(l.head+i)%len(l.entries)]
	}
	return out
}

// Len returns the number of retained entries
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// Clear discards all entries
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.head = 0
	l.size = 0
}
