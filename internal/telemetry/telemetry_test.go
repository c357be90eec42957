package telemetry

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_AppendAndOrder(t *testing.T) {
	l := NewLog(10)
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		l.Append(Entry{Timestamp: base.Add(time.Duration(i) * time.Second), AppName: fmt.Sprintf("app-%d", i)})
	}

	entries := l.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "app-0", entries[0].AppName)
	assert.Equal(t, "app-2", entries[2].AppName)
	assert.Equal(t, 3, l.Len())
}

func TestLog_EvictsOldestAtCapacity(t *testing.T) {
	l := NewLog(4)

	for i := 0; i < 7; i++ {
		l.Append(Entry{AppName: fmt.Sprintf("app-%d", i)})
	}

	entries := l.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "app-3", entries[0].AppName)
	assert.Equal(t, "app-6", entries[3].AppName)
}

func TestLog_EntriesReturnsCopy(t *testing.T) {
	l := NewLog(4)
	l.Append(Entry{AppName: "original"})

	entries := l.Entries()
	entries[0].AppName = "mutated"
	assert.Equal(t, "original", l.Entries()[0].AppName)
}

func TestLog_Clear(t *testing.T) {
	l := NewLog(4)
	l.Append(Entry{})
	l.Append(Entry{})
	l.Clear()

	assert.Zero(t, l.Len())
	assert.Empty(t, l.Entries())

	// Usable after clear.
	l.Append(Entry{AppName: "fresh"})
	assert.Equal(t, 1, l.Len())
}
