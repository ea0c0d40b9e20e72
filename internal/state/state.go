// Package state owns the on-disk run state: per-source fetch timestamps
// and breaking-news bookkeeping. All writes go through an atomic
// temp-file + fsync + rename sequence so a crash never leaves a torn
// file; the previously committed version stays readable.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// zerosPrefix keys the consecutive zero-result counters that live next
// to the fetch timestamps in the same flat map.
const zerosPrefix = "_zeros:"

// FetchState maps source name to its last-successful-fetch timestamp
// (ISO-8601). Keys starting with "_zeros:" carry per-source counters of
// consecutive empty fetches, stored as decimal strings.
type FetchState map[string]string

// LoadFetch reads the fetch state file. A missing or unparseable file
// yields an empty state; state corruption is never fatal.
func LoadFetch(path string) FetchState {
	data, err := os.ReadFile(path)
	if err != nil {
		return FetchState{}
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return FetchState{}
	}
	return FetchState(raw)
}

// Save writes the state atomically with sorted keys.
func (s FetchState) Save(path string) error {
	payload, err := json.MarshalIndent(map[string]string(s), "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal fetch state: %w", err)
	}
	return WriteAtomic(path, payload)
}

// LastFetch returns the parsed last-fetch time for a source, or false
// when the source has no recorded timestamp or it fails to parse.
func (s FetchState) LastFetch(name string) (time.Time, bool) {
	raw, ok := s[name]
	if !ok || raw == "" {
		return time.Time{}, false
	}
	return ParseTime(raw)
}

// Touch records a successful fetch at now.
func (s FetchState) Touch(name string, now time.Time) {
	s[name] = now.UTC().Format(time.RFC3339)
}

// Zeros returns the consecutive zero-result count for a source.
func (s FetchState) Zeros(name string) int {
	n, err := strconv.Atoi(s[zerosPrefix+name])
	if err != nil {
		return 0
	}
	return n
}

// BumpZeros increments and returns the consecutive zero-result count.
func (s FetchState) BumpZeros(name string) int {
	n := s.Zeros(name) + 1
	s[zerosPrefix+name] = strconv.Itoa(n)
	return n
}

// ClearZeros resets the zero-result counter after a productive fetch.
func (s FetchState) ClearZeros(name string) {
	delete(s, zerosPrefix+name)
}

// LastScanDate returns the most recent fetch date across all sources as
// YYYY-MM-DD, used as the "new since" cutoff. With no parseable
// timestamps it falls back to yesterday.
func (s FetchState) LastScanDate(now time.Time) string {
	var latest time.Time
	for key, value := range s {
		if len(key) >= len(zerosPrefix) && key[:len(zerosPrefix)] == zerosPrefix {
			continue
		}
		if t, ok := ParseTime(value); ok && t.After(latest) {
			latest = t
		}
	}
	if latest.IsZero() {
		return now.UTC().AddDate(0, 0, -1).Format("2006-01-02")
	}
	return latest.UTC().Format("2006-01-02")
}

// SourceNames returns the tracked source names (bookkeeping keys
// excluded), sorted.
func (s FetchState) SourceNames() []string {
	var names []string
	for key := range s {
		if len(key) >= len(zerosPrefix) && key[:len(zerosPrefix)] == zerosPrefix {
			continue
		}
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

// BreakingState is the persisted bookkeeping for the breaking-news run.
// SeenIDs is an insertion-ordered ring of article digests bounded by the
// caller; AlertsToday resets exactly once per UTC day transition,
// detected by comparing TodayDate against the current date.
type BreakingState struct {
	LastCheck     string   `json:"last_check"`
	SeenIDs       []string `json:"seen_ids"`
	AlertsToday   int      `json:"alerts_today"`
	TodayDate     string   `json:"today_date"`
	LastAlertTime string   `json:"last_alert_time"`
}

// LoadBreaking reads the breaking state file, falling back to a fresh
// default state (dated now) when the file is missing or corrupt.
func LoadBreaking(path string, now time.Time) *BreakingState {
	fresh := &BreakingState{
		SeenIDs:   []string{},
		TodayDate: now.UTC().Format("2006-01-02"),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fresh
	}
	var st BreakingState
	if err := json.Unmarshal(data, &st); err != nil {
		return fresh
	}
	if st.SeenIDs == nil {
		st.SeenIDs = []string{}
	}
	if st.TodayDate == "" {
		st.TodayDate = fresh.TodayDate
	}
	return &st
}

// Save writes the breaking state atomically.
func (b *BreakingState) Save(path string) error {
	payload, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal breaking state: %w", err)
	}
	return WriteAtomic(path, payload)
}

// ParseTime parses an ISO-8601 timestamp. Timestamps without a zone are
// treated as UTC. A bare date parses to midnight UTC.
func ParseTime(value string) (time.Time, bool) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// WriteAtomic writes content via temp file -> fsync -> rename. The temp
// file lives in the target directory so the rename stays on one
// filesystem; it is removed on every failure path. Concurrent readers
// only ever observe the rename, never a partial write.
func WriteAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("state: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("state: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("state: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("state: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("state: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("state: rename: %w", err)
	}
	success = true
	return nil
}
