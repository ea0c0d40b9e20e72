package breaking

import (
	"time"

	"github.com/starford/lustro/internal/state"
)

const (
	// MaxAlertsPerDay caps dispatched alerts per UTC calendar day.
	MaxAlertsPerDay = 3

	// Cooldown is the minimum interval between two dispatched alerts.
	Cooldown = 60 * time.Minute

	// MaxSeenIDs bounds the persisted ring of seen article digests.
	MaxSeenIDs = 200
)

// ResetDailyCounter zeroes the daily quota on a UTC day transition,
// detected by comparing the stored date marker against now. It must run
// before any quota or cooldown evaluation and is idempotent.
func ResetDailyCounter(st *state.BreakingState, now time.Time) {
	today := now.UTC().Format("2006-01-02")
	if st.TodayDate != today {
		st.AlertsToday = 0
		st.TodayDate = today
	}
}

// CanAlert reports whether the throttle permits an alert now: the daily
// quota must have headroom and the cooldown since the last alert must
// have elapsed. A missing or unparseable last-alert timestamp counts as
// "no prior alert" — the throttle fails open, never silences forever.
func CanAlert(st *state.BreakingState, now time.Time) bool {
	if st.AlertsToday >= MaxAlertsPerDay {
		return false
	}
	if st.LastAlertTime == "" {
		return true
	}
	last, ok := state.ParseTime(st.LastAlertTime)
	if !ok {
		return true
	}
	return now.Sub(last) >= Cooldown
}

// RecordAlert accounts for a dispatched alert.
func RecordAlert(st *state.BreakingState, now time.Time) {
	st.AlertsToday++
	st.LastAlertTime = now.UTC().Format(time.RFC3339)
}
