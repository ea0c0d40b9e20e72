// Package newslog renders fetched articles into the append-only,
// human-readable markdown log and scans that log to rebuild the
// title-signature index for near-duplicate suppression.
package newslog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/starford/lustro/internal/dedup"
	"github.com/starford/lustro/internal/models"
	"github.com/starford/lustro/internal/state"
)

// Marker is the fixed line in the log after which new entries are
// inserted, keeping any hand-written preamble above the feed.
const Marker = "<!-- News entries below -->"

var (
	// boldTitle matches **Title** and **[Title](link)** entries, with
	// optional straight or curly quotes around the title.
	boldTitle = regexp.MustCompile(`\*\*["\x{201c}]?(?:\[)?(.+?)(?:\]\([^)]*\))?["\x{201d}]?\*\*`)

	// quotedTitle matches quoted strings long enough to be headlines.
	quotedTitle = regexp.MustCompile(`["\x{201c}]([^"\x{201d}]{15,})["\x{201d}]`)
)

// LoadTitlePrefixes scans historical log text and returns the signature
// set of every title it mentions. The index is rebuilt each run and is
// only as deep as the log retention allows.
func LoadTitlePrefixes(logPath string) dedup.SignatureSet {
	prefixes := dedup.SignatureSet{}
	data, err := os.ReadFile(logPath)
	if err != nil {
		return prefixes
	}
	content := string(data)

	for _, match := range boldTitle.FindAllStringSubmatch(content, -1) {
		prefixes.Add(dedup.TitlePrefix(strings.TrimSpace(match[1])))
	}
	for _, match := range quotedTitle.FindAllStringSubmatch(content, -1) {
		prefixes.Add(dedup.TitlePrefix(strings.TrimSpace(match[1])))
	}
	return prefixes
}

// sanitize collapses whitespace and escapes a leading markdown control
// character so a hostile title cannot inject headings or lists into the
// log.
func sanitize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if strings.HasPrefix(text, "#") || strings.HasPrefix(text, "-") ||
		strings.HasPrefix(text, ">") || strings.HasPrefix(text, "!") {
		text = "\\" + text
	}
	return text
}

// FormatDaily renders one day-stamped batch of per-source articles as
// markdown. sourceOrder fixes the section order (maps do not).
func FormatDaily(results map[string][]models.Article, sourceOrder []string, dateStr string) string {
	lines := []string{fmt.Sprintf("## %s (Automated Daily Scan)\n", dateStr)}
	for _, source := range sourceOrder {
		articles := results[source]
		if len(articles) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("### %s\n", source))
		for _, a := range articles {
			lines = append(lines, formatEntry(a, "- "))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// FormatBreaking renders the log section for dispatched breaking alerts.
func FormatBreaking(matches []Match, dateStr string) string {
	lines := []string{
		fmt.Sprintf("## %s (Breaking Alerts)\n", dateStr),
		"### Breaking AI News\n",
	}
	for _, m := range matches {
		a := models.Article{Title: m.Title, Link: m.Link}
		lines = append(lines, formatEntry(a, "- 🚨 ")+fmt.Sprintf(" (%s)", m.Source))
	}
	return strings.Join(lines, "\n") + "\n"
}

// Match is one breaking-classified article headed for the log.
type Match struct {
	Title  string
	Link   string
	Source string
}

func formatEntry(a models.Article, bullet string) string {
	title := sanitize(a.Title)
	titlePart := title
	if a.Link != "" {
		titlePart = fmt.Sprintf("[%s](%s)", title, a.Link)
	}
	datePart := ""
	if a.Date != "" {
		datePart = fmt.Sprintf(" (%s)", a.Date)
	}
	summaryPart := ""
	if a.Summary != "" {
		summaryPart = " — " + sanitize(a.Summary)
	}
	return fmt.Sprintf("%s**%s**%s%s", bullet, titlePart, datePart, summaryPart)
}

// Append inserts markdown into the log, directly after the marker line
// when present, appended at the end otherwise. The rewrite is atomic.
// Only a genuinely absent log starts fresh; any other read failure is
// returned so an unreadable log is never overwritten.
func Append(logPath, markdown string) error {
	data, err := os.ReadFile(logPath)
	if errors.Is(err, fs.ErrNotExist) {
		return state.WriteAtomic(logPath, []byte(markdown))
	}
	if err != nil {
		return fmt.Errorf("newslog: read log: %w", err)
	}
	content := string(data)
	if strings.Contains(content, Marker) {
		content = strings.Replace(content, Marker, Marker+"\n\n"+markdown, 1)
	} else {
		content += "\n\n" + markdown
	}
	return state.WriteAtomic(logPath, []byte(content))
}
