package schedule

import (
	"testing"
	"time"

	"github.com/starford/lustro/internal/models"
	"github.com/starford/lustro/internal/state"
)

var now = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func TestUnknownSourceIsDue(t *testing.T) {
	if !IsDue(state.FetchState{}, "New Source", models.CadenceWeekly, now) {
		t.Error("source absent from state should be due")
	}
}

func TestJustFetchedIsNotDue(t *testing.T) {
	st := state.FetchState{}
	st.Touch("A", now)
	if IsDue(st, "A", models.CadenceWeekly, now) {
		t.Error("source fetched now should not be due")
	}
}

func TestDueAfterInterval(t *testing.T) {
	st := state.FetchState{}
	st.Touch("A", now.Add(-5*24*time.Hour))
	if !IsDue(st, "A", models.CadenceWeekly, now) {
		t.Error("weekly source fetched 5 days ago should be due")
	}
	st.Touch("B", now.Add(-4*24*time.Hour))
	if IsDue(st, "B", models.CadenceWeekly, now) {
		t.Error("weekly source fetched 4 days ago should not be due")
	}
}

func TestDailyIsAlwaysDue(t *testing.T) {
	st := state.FetchState{}
	st.Touch("A", now)
	if !IsDue(st, "A", models.CadenceDaily, now) {
		t.Error("daily cadence has a zero-day minimum")
	}
}

func TestMalformedTimestampFailsOpen(t *testing.T) {
	st := state.FetchState{"A": "definitely not a timestamp"}
	if !IsDue(st, "A", models.CadenceMonthly, now) {
		t.Error("malformed timestamp must never suppress a source")
	}
}

func TestUnknownCadenceDefaultsToOneDay(t *testing.T) {
	st := state.FetchState{}
	st.Touch("A", now.Add(-12*time.Hour))
	if IsDue(st, "A", "hourly", now) {
		t.Error("unknown cadence should use a one-day minimum")
	}
	st.Touch("B", now.Add(-25*time.Hour))
	if !IsDue(st, "B", "hourly", now) {
		t.Error("unknown cadence should be due after a day")
	}
}

func TestNaiveTimestampTreatedAsUTC(t *testing.T) {
	st := state.FetchState{"A": "2026-08-31T06:00:00"}
	if IsDue(st, "A", models.CadenceTwiceWeekly, now) {
		t.Error("6 hours ago (naive UTC) is inside a 2-day cadence")
	}
}

func TestMinInterval(t *testing.T) {
	cases := []struct {
		cadence string
		days    int
	}{
		{models.CadenceDaily, 0},
		{models.CadenceTwiceWeekly, 2},
		{models.CadenceWeekly, 5},
		{models.CadenceBiweekly, 10},
		{models.CadenceMonthly, 25},
		{"bogus", 1},
	}
	for _, c := range cases {
		want := time.Duration(c.days) * 24 * time.Hour
		if got := MinInterval(c.cadence); got != want {
			t.Errorf("MinInterval(%q) = %v, want %v", c.cadence, got, want)
		}
	}
}
