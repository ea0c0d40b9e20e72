// Package archive provides SQLite-backed storage of full article
// records for tier-1 sources. Rows are immutable: an article is stored
// once under its derived key and never updated.
package archive

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/lustro/internal/checksum"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS articles (
	key        TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	date       TEXT NOT NULL,
	source     TEXT NOT NULL,
	tier       INTEGER NOT NULL,
	link       TEXT NOT NULL,
	summary    TEXT NOT NULL DEFAULT '',
	body       TEXT,
	fetched_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source);
CREATE INDEX IF NOT EXISTS idx_articles_date ON articles(date);
`

// Record is one archived article. Body is nil when text extraction
// failed; the record is still kept so the fetch is never retried.
type Record struct {
	Key       string
	Title     string
	Date      string
	Source    string
	Tier      int
	Link      string
	Summary   string
	Body      *string
	FetchedAt time.Time
}

// Store wraps the archive database.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the archive database and applies the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("archive: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("archive: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("archive: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug normalizes a source name for use in archive keys.
func Slug(name string) string {
	slug := nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	if len(slug) > 60 {
		slug = slug[:60]
	}
	return strings.Trim(slug, "-")
}

// Key derives the immutable archive key {date}_{source-slug}_{title-hash}.
func Key(date, source, title string) string {
	return fmt.Sprintf("%s_%s_%s", date, Slug(source), checksum.Short([]byte(title), 8))
}

// Has reports whether a record with this key already exists.
func (s *Store) Has(key string) (bool, error) {
	var one int
	err := s.conn.QueryRow(`SELECT 1 FROM articles WHERE key = ?`, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("archive: has %s: %w", key, err)
	}
	return true, nil
}

// Insert stores a record. An existing key is left untouched.
func (s *Store) Insert(rec Record) error {
	_, err := s.conn.Exec(
		`INSERT OR IGNORE INTO articles (key, title, date, source, tier, link, summary, body, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Key, rec.Title, rec.Date, rec.Source, rec.Tier, rec.Link, rec.Summary, rec.Body,
		rec.FetchedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("archive: insert %s: %w", rec.Key, err)
	}
	return nil
}

// Count returns the number of archived articles, for the status command.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("archive: count: %w", err)
	}
	return n, nil
}
