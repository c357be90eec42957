// Package activity implements exclusive elapsed-time accounting for named
// user activities. At most one activity is running at any instant; activating
// one pauses whatever was running before.
package activity

import (
	"time"

	"telemon/internal/timefmt"
)

// Interval is a closed span during which an activity was running
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns the interval length
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Activity tracks accumulated running time for one named task
type Activity struct {
	name      string
	total     time.Duration
	startedAt time.Time
	active    bool
	intervals []Interval
}

func newActivity(name string) *Activity {
	return &Activity{name: name}
}

// Name returns the activity name
func (a *Activity) Name() string { return a.name }

// Active reports whether the activity is currently running
func (a *Activity) Active() bool { return a.active }

// Intervals returns a copy of the closed intervals in chronological order
func (a *Activity) Intervals() []Interval {
	out := make([]Interval, len(a.intervals))
	copy(out, a.intervals)
	return out
}

// start opens a new interval at now. No-op when already running.
func (a *Activity) start(now time.Time) {
	if a.active {
		return
	}
	a.startedAt = now
	a.active = true
}

// pause closes the open interval at now and accrues its duration.
// No-op when not running.
func (a *Activity) pause(now time.Time) {
	if !a.active {
		return
	}
	a.total += now.Sub(a.startedAt)
	a.intervals = append(a.intervals, Interval{Start: a.startedAt, End: now})
	a.startedAt = time.Time{}
	a.active = false
}

// Elapsed returns the accumulated duration, including the open interval up
// to now when the activity is running
func (a *Activity) Elapsed(now time.Time) time.Duration {
	total := a.total
	if a.active {
		total += now.Sub(a.startedAt)
	}
	return total
}

// Summary is the exportable view of one activity
type Summary struct {
	Name              string
	TotalDuration     time.Duration
	FormattedDuration string
	History           []Interval
}

// Summary builds the exportable view at now
func (a *Activity) Summary(now time.Time) Summary {
	return Summary{
		Name:              a.name,
		TotalDuration:     a.Elapsed(now),
		FormattedDuration: timefmt.Clock(a.Elapsed(now)),
		History:           a.Intervals(),
	}
}
