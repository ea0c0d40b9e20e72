// Package schedule decides which sources are due for polling based on
// their cadence class and last-fetch timestamp.
package schedule

import (
	"time"

	"github.com/starford/lustro/internal/models"
	"github.com/starford/lustro/internal/state"
)

// cadenceDays maps a cadence class to its minimum interval in days.
// Unknown classes fall back to one day.
var cadenceDays = map[string]int{
	models.CadenceDaily:       0,
	models.CadenceTwiceWeekly: 2,
	models.CadenceWeekly:      5,
	models.CadenceBiweekly:    10,
	models.CadenceMonthly:     25,
}

// MinInterval returns the minimum polling interval for a cadence class.
func MinInterval(cadence string) time.Duration {
	days, ok := cadenceDays[cadence]
	if !ok {
		days = 1
	}
	return time.Duration(days) * 24 * time.Hour
}

// IsDue reports whether a source should be polled now. A source with no
// recorded timestamp is due; so is one whose timestamp fails to parse —
// a malformed entry must never permanently starve a source.
func IsDue(st state.FetchState, name, cadence string, now time.Time) bool {
	raw, ok := st[name]
	if !ok || raw == "" {
		return true
	}
	last, ok := state.ParseTime(raw)
	if !ok {
		return true
	}
	return now.Sub(last) >= MinInterval(cadence)
}
