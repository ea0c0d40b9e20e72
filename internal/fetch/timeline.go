package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/starford/lustro/internal/models"
)

const (
	tweetDateLayout = "Mon Jan 02 15:04:05 -0700 2006"
	minTweetRunes   = 20
	tweetTitleRunes = 120
)

type tweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
	Author    struct {
		Username string `json:"username"`
	} `json:"author"`
}

// Timeline fetches recent posts for a handle via the external `bird`
// CLI. The CLI being absent is a degraded-but-working condition: posts
// are skipped with a warning, the run continues.
func (c *Client) Timeline(ctx context.Context, handle, sinceDate string, maxItems int) ([]models.Article, error) {
	clean := strings.TrimPrefix(handle, "@")
	if c.birdPath == "" {
		c.logger.Warn("bird CLI not found, skipping timeline fetch", slog.String("handle", clean))
		return nil, nil
	}
	tweets, err := c.birdJSON(ctx, "@"+clean, "user-tweets", clean, "-n", strconv.Itoa(maxItems*2), "--json")
	if err != nil {
		return nil, err
	}
	return tweetArticles(tweets, clean, sinceDate, maxItems), nil
}

// Bookmarks fetches the operator's saved posts via the external `bird`
// CLI, degrading the same way Timeline does when it is missing.
func (c *Client) Bookmarks(ctx context.Context, sinceDate string, maxItems int) ([]models.Article, error) {
	if c.birdPath == "" {
		c.logger.Warn("bird CLI not found, skipping bookmarks fetch")
		return nil, nil
	}
	tweets, err := c.birdJSON(ctx, "bookmarks", "bookmarks", "-n", strconv.Itoa(maxItems*2), "--json")
	if err != nil {
		return nil, err
	}
	return tweetArticles(tweets, "", sinceDate, maxItems), nil
}

func (c *Client) birdJSON(ctx context.Context, scope string, args ...string) ([]tweet, error) {
	ctx, cancel := context.WithTimeout(ctx, birdTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.birdPath, args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("fetch: bird %s: %w", scope, err)
	}
	var tweets []tweet
	if err := json.Unmarshal(out, &tweets); err != nil {
		return nil, fmt.Errorf("fetch: bird %s: decode: %w", scope, err)
	}
	return tweets, nil
}

// tweetArticles converts decoded tweets into articles: date cutoff,
// minimum length, truncated titles, a status link when the id allows.
func tweetArticles(tweets []tweet, fallbackUser, sinceDate string, maxItems int) []models.Article {
	articles := make([]models.Article, 0, maxItems)
	for _, tw := range tweets {
		date := parseTweetDate(tw.CreatedAt)
		if date != "" && date <= sinceDate {
			continue
		}
		text := strings.TrimSpace(tw.Text)
		if len([]rune(text)) < minTweetRunes {
			continue
		}
		username := tw.Author.Username
		if username == "" {
			username = fallbackUser
		}
		link := ""
		if tw.ID != "" && username != "" {
			link = "https://x.com/" + username + "/status/" + tw.ID
		}
		articles = append(articles, models.Article{
			Title: truncateRunes(text, tweetTitleRunes),
			Link:  link,
			Date:  date,
		})
		if len(articles) >= maxItems {
			break
		}
	}
	return articles
}

func parseTweetDate(raw string) string {
	t, err := time.Parse(tweetDateLayout, raw)
	if err != nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
