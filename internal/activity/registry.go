package activity

import (
	"sync"
	"time"
)

// NoneName is the sentinel reported when no activity is running
const NoneName = "None"

// RegistrySummary is the exportable view of the whole registry
type RegistrySummary struct {
	CurrentActivity string
	Activities      []Summary
}

// Registry owns all activities and the exclusive-activation invariant.
/// All operations are total: unknown names and duplicates report false
// rather than failing.
type Registry struct {
	mu         sync.Mutex
	activities map[string]*Activity
	order      []string
	current    string // empty when nothing is running

	now func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		activities: make(map[string]*Activity),
		now:        time.Now,
	}
}

// Add registers a new activity. It returns false without mutation when the
// name is already present. Names are case-sensitive.
func (r *Registry) Add(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.activities[name]; ok {
		return false
	}
	r.activities[name] = newActivity(name)
	r.order = append(r.order, name)
	return true
}

// Activate makes name the running activity, pausing whatever ran before.
// Activating the already-running name closes its interval and immediately
// opens a new one at the same instant; this is deliberate, not a no-op.
// Returns false without mutation when name is not registered.
func (r *Registry) Activate(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, ok := r.activities[name]
	if !ok {
		return false
	}

	now := r.now()
	if r.current != "" {
		if prev, ok := r.activities[r.current]; ok {
			prev.pause(now)
		}
	}

	r.current = name
	next.start(now)
	return true
}

// PauseCurrent closes the running activity's interval, if any
func (r *Registry) PauseCurrent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pauseCurrentLocked(r.now())
}

func (r *Registry) pauseCurrentLocked(now time.Time) {
	if r.current == "" {
		return
	}
	if a, ok := r.activities[r.current]; ok {
		a.pause(now)
	}
	r.current = ""
}

// CurrentName returns the running activity's name, or "" when none
func (r *Registry) CurrentName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// CurrentOrNone returns the running activity's name, or the NoneName sentinel
func (r *Registry) CurrentOrNone() string {
	if name := r.CurrentName(); name != "" {
		return name
	}
	return NoneName
}

// Elapsed returns the accumulated duration for name at now, including the
// open interval when it is running. Unknown names report 0.
func (r *Registry) Elapsed(name string, now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[name]
	if !ok {
		return 0
	}
	return a.Elapsed(now)
}

// Count returns the number of registered activities
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.activities)
}

// Reset pauses the running activity and clears the registry entirely
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pauseCurrentLocked(r.now())
	r.activities = make(map[string]*Activity)
	r.order = nil
	r.current = ""
}

// ActivityForTimestamp returns the name of the activity whose closed or live
// interval contains t, scanning in insertion order; "" when no interval
// matches
func (r *Registry) ActivityForTimestamp(t time.Time) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		a := r.activities[name]
		for _, iv := range a.intervals {
			if !t.Before(iv.Start) && !t.After(iv.End) {
				return name
			}
		}
		if a.active && !t.Before(a.startedAt) {
			return name
		}
	}
	return ""
}

// Summary builds the exportable registry view at now. Activities appear in
// insertion order; CurrentActivity is the NoneName sentinel when idle.
func (r *Registry) Summary(now time.Time) RegistrySummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := RegistrySummary{CurrentActivity: NoneName}
	if r.current != "" {
		out.CurrentActivity = r.current
	}
	for _, name := range r.order {
		out.Activities = append(out.Activities, r.activities[name].Summary(now))
	}
	return out
}
