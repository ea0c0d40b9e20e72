// Package models defines the domain types for Lustro.
package models

// Cadence classes accepted in sources.yaml. Unknown values are tolerated
// by the scheduler (they default to a one-day minimum interval).
const (
	CadenceDaily       = "daily"
	CadenceTwiceWeekly = "twice_weekly"
	CadenceWeekly      = "weekly"
	CadenceBiweekly    = "biweekly"
	CadenceMonthly     = "monthly"
)

// Tier1 sources are eligible for full-text archival and breaking-news
// monitoring.
const Tier1 = 1

// Source is one configured content source. Exactly one of RSS, URL,
// Handle or Bookmarks is normally set; a source with both RSS and URL
// falls back to page scraping when the feed is unreachable.
type Source struct {
	Name    string `yaml:"name"`
	Cadence string `yaml:"cadence"`
	Tier    int    `yaml:"tier"`
	RSS     string `yaml:"rss"`
	URL     string `yaml:"url"`
	Handle  string `yaml:"handle"`

	// Bookmarks marks the pseudo-source backed by the operator's own
	// saved posts; it needs no endpoint of its own.
	Bookmarks bool `yaml:"bookmarks"`
}

// Kind returns a short type label for display ("rss", "web", "x" or
// "bkmk").
func (s Source) Kind() string {
	switch {
	case s.Bookmarks:
		return "bkmk"
	case s.Handle != "":
		return "x"
	case s.RSS != "":
		return "rss"
	default:
		return "web"
	}
}

// Endpoint returns the URL probed by the health check: the feed URL when
// present, otherwise the page URL.
func (s Source) Endpoint() string {
	if s.RSS != "" {
		return s.RSS
	}
	return s.URL
}
