// Package timefmt provides human-readable duration formatting shared by the
// activity accumulator, the recording clock and the exporters.
package timefmt

import (
	"fmt"
	"time"
)

// Clock formats a duration as MM:SS, or HH:MM:SS once it reaches an hour.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// LongClock always formats a duration as HH:MM:SS.
func LongClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// Brief formats a duration as "45s" below a minute and "3m 20s" above.
func Brief(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}
