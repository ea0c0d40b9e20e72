package fetch

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/starford/lustro/internal/models"
)

const summaryMaxRunes = 120

var sentenceEnd = regexp.MustCompile(`[.!?。！？]`)

// Feed fetches and parses an RSS/Atom feed, returning up to maxItems
// articles newer than sinceDate (YYYY-MM-DD). The feed is overscanned
// 2x so that undated or stale leading entries do not starve the result.
func (c *Client) Feed(ctx context.Context, url, sinceDate string, maxItems int) ([]models.Article, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch: feed %s: %w", url, err)
	}
	defer resp.Body.Close()

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: parse feed %s: %w", url, err)
	}

	articles := make([]models.Article, 0, maxItems)
	scan := feed.Items
	if len(scan) > maxItems*2 {
		scan = scan[:maxItems*2]
	}
	for _, entry := range scan {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}
		date := entryDate(entry)
		if date != "" && date <= sinceDate {
			continue
		}
		articles = append(articles, models.Article{
			Title:   title,
			Link:    entry.Link,
			Date:    date,
			Summary: extractSummary(entry.Description),
		})
		if len(articles) >= maxItems {
			break
		}
	}
	return articles, nil
}

func entryDate(entry *gofeed.Item) string {
	for _, t := range []*time.Time{entry.PublishedParsed, entry.UpdatedParsed} {
		if t != nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return ""
}

// extractSummary reduces a feed entry description to the first sentence
// of its plain text, capped at 120 runes.
func extractSummary(description string) string {
	if description == "" {
		return ""
	}
	text := description
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(description)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")
	if loc := sentenceEnd.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > summaryMaxRunes {
		text = string(runes[:summaryMaxRunes])
	}
	return text
}
