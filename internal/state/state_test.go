package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func statePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "state.json")
}

func TestFetchStateRoundTrip(t *testing.T) {
	path := statePath(t)
	st := FetchState{
		"Anthropic News": "2026-08-30T10:00:00Z",
		"_zeros:Quiet":   "3",
	}
	if err := st.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got := LoadFetch(path)
	if len(got) != len(st) {
		t.Fatalf("len = %d, want %d", len(got), len(st))
	}
	for k, v := range st {
		if got[k] != v {
			t.Errorf("key %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestFetchStateRoundTripEmpty(t *testing.T) {
	path := statePath(t)
	if err := (FetchState{}).Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := LoadFetch(path); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestLoadFetchMissingFile(t *testing.T) {
	got := LoadFetch(filepath.Join(t.TempDir(), "nope.json"))
	if got == nil || len(got) != 0 {
		t.Errorf("missing file should load as empty state, got %v", got)
	}
}

func TestLoadFetchCorruptFile(t *testing.T) {
	path := statePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := LoadFetch(path); len(got) != 0 {
		t.Errorf("corrupt file should load as empty state, got %v", got)
	}
}

func TestSaveSurvivesStrandedTempFile(t *testing.T) {
	// A crash between temp-file write and rename leaves a stranded temp
	// file; the committed state must stay fully readable.
	path := statePath(t)
	st := FetchState{"A": "2026-08-30T10:00:00Z"}
	if err := st.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	stranded := filepath.Join(filepath.Dir(path), ".state.json.crashed")
	if err := os.WriteFile(stranded, []byte(`{"A": "half-writ`), 0o644); err != nil {
		t.Fatal(err)
	}
	got := LoadFetch(path)
	if got["A"] != "2026-08-30T10:00:00Z" {
		t.Errorf("committed state damaged: %v", got)
	}
}

func TestZerosCounters(t *testing.T) {
	st := FetchState{}
	if st.Zeros("X") != 0 {
		t.Error("fresh counter should be 0")
	}
	if n := st.BumpZeros("X"); n != 1 {
		t.Errorf("first bump = %d, want 1", n)
	}
	if n := st.BumpZeros("X"); n != 2 {
		t.Errorf("second bump = %d, want 2", n)
	}
	st.ClearZeros("X")
	if st.Zeros("X") != 0 {
		t.Error("cleared counter should be 0")
	}
}

func TestTouchIsRFC3339UTC(t *testing.T) {
	st := FetchState{}
	loc := time.FixedZone("HKT", 8*3600)
	st.Touch("A", time.Date(2026, 8, 30, 20, 0, 0, 0, loc))
	got, ok := st.LastFetch("A")
	if !ok {
		t.Fatal("LastFetch not found")
	}
	want := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LastFetch = %v, want %v", got, want)
	}
}

func TestLastScanDate(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	st := FetchState{
		"A":        "2026-08-20T10:00:00Z",
		"B":        "2026-08-29T10:00:00Z",
		"_zeros:A": "2",
		"C":        "garbage",
	}
	if got := st.LastScanDate(now); got != "2026-08-29" {
		t.Errorf("LastScanDate = %q, want 2026-08-29", got)
	}
	if got := (FetchState{}).LastScanDate(now); got != "2026-08-30" {
		t.Errorf("empty state LastScanDate = %q, want yesterday", got)
	}
}

func TestParseTimeNaiveIsUTC(t *testing.T) {
	got, ok := ParseTime("2026-08-30T10:00:00")
	if !ok {
		t.Fatal("ParseTime failed")
	}
	want := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, ok := ParseTime("not-a-time"); ok {
		t.Error("garbage should not parse")
	}
}

func TestBreakingStateRoundTrip(t *testing.T) {
	path := statePath(t)
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	st := &BreakingState{
		LastCheck:     "2026-08-31T08:00:00Z",
		SeenIDs:       []string{"aa", "bb"},
		AlertsToday:   2,
		TodayDate:     "2026-08-31",
		LastAlertTime: "2026-08-31T08:30:00Z",
	}
	if err := st.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got := LoadBreaking(path, now)
	if got.AlertsToday != 2 || got.TodayDate != "2026-08-31" || len(got.SeenIDs) != 2 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLoadBreakingDefaults(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	got := LoadBreaking(filepath.Join(t.TempDir(), "nope.json"), now)
	if got.AlertsToday != 0 || got.TodayDate != "2026-08-31" {
		t.Errorf("defaults wrong: %+v", got)
	}
	if got.SeenIDs == nil || len(got.SeenIDs) != 0 {
		t.Errorf("SeenIDs should be empty, got %v", got.SeenIDs)
	}
}

func TestLoadBreakingCorruptFallsBack(t *testing.T) {
	path := statePath(t)
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	if err := os.WriteFile(path, []byte("]["), 0o644); err != nil {
		t.Fatal(err)
	}
	got := LoadBreaking(path, now)
	if got.AlertsToday != 0 || got.TodayDate != "2026-08-31" {
		t.Errorf("corrupt file should fall back to defaults: %+v", got)
	}
}

func TestBreakingStateFieldNames(t *testing.T) {
	// The persisted JSON schema is an external contract.
	path := statePath(t)
	st := &BreakingState{SeenIDs: []string{}, TodayDate: "2026-08-31"}
	if err := st.Save(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"last_check", "seen_ids", "alerts_today", "today_date", "last_alert_time"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing field %q", key)
		}
	}
}

func TestWriteAtomicCleansTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	if err := WriteAtomic(path, []byte("{}")); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}
