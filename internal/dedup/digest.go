// Package dedup implements the two duplicate-suppression layers: a
// durable insertion-ordered digest set for the breaking-news path and a
// per-run title-signature set for the daily fetch path.
package dedup

import (
	"github.com/starford/lustro/internal/checksum"
)

// DigestLen is the width of an article identity token in hex characters.
const DigestLen = 16

// Digest fingerprints an article by its identity fields. Two articles
// with the same title, link and source always collapse to one token.
func Digest(title, link, source string) string {
	return checksum.Short([]byte(title+"|"+link+"|"+source), DigestLen)
}

// SeenSet is a capacity-bounded set of digests with FIFO eviction:
// membership lookups are order-insensitive but overflow always drops the
// earliest-inserted surviving entry, so disk and memory usage stay flat.
type SeenSet struct {
	cap     int
	order   []string
	members map[string]bool
}

// NewSeenSet builds a set from previously persisted digests, oldest
// first. Entries beyond capacity are evicted immediately.
func NewSeenSet(capacity int, ids []string) *SeenSet {
	s := &SeenSet{
		cap:     capacity,
		order:   make([]string, 0, len(ids)),
		members: make(map[string]bool, len(ids)),
	}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Contains reports membership.
func (s *SeenSet) Contains(id string) bool {
	return s.members[id]
}

// Add inserts a digest, evicting the oldest entries once the set exceeds
// its capacity. Re-adding a present digest is a no-op.
func (s *SeenSet) Add(id string) {
	if s.members[id] {
		return
	}
	s.members[id] = true
	s.order = append(s.order, id)
	for s.cap > 0 && len(s.order) > s.cap {
		evicted := s.order[0]
		s.order = s.order[1:]
		delete(s.members, evicted)
	}
}

// IDs returns the surviving digests in insertion order, for persistence.
func (s *SeenSet) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of digests currently held.
func (s *SeenSet) Len() int {
	return len(s.order)
}
