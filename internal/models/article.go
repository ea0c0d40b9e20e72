package models

// Article is one item returned by a fetch. It is transient on the daily
// fetch path (rendered into the news log, never stored); tier-1 articles
// are additionally archived as immutable records.
type Article struct {
	Title   string `json:"title"`
	Link    string `json:"link,omitempty"`
	Date    string `json:"date,omitempty"` // YYYY-MM-DD, may be empty
	Summary string `json:"summary,omitempty"`
}
