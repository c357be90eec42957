package input

// Source feeds OS-level input events into a Tracker. Implementations wrap
// platform keyboard/mouse hooks; Start and Stop must be idempotent.
type Source interface {
	// Start begins delivering events to the tracker
	Start(t *Tracker) error

	// Stop halts event delivery
	Stop() error
}

// NopSource is a Source that delivers nothing. It is used on platforms
// without hook support and in tests, where events are recorded directly.
type NopSource struct{}

// Start implements Source
func (NopSource) Start(*Tracker) error { return nil }

// Stop implements Source
func (NopSource) Stop() error { return nil }
