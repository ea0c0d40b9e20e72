// Package fetch retrieves articles from the outside world: RSS/Atom
// feeds, plain web pages and social-media timelines. It is a thin
// collaborator boundary — all real decisions (cadence, dedup,
// classification) happen in the callers. Every fetch carries a fixed
// timeout and a failing source yields an empty result, never a fatal
// error for the run.
package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"os/exec"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/starford/lustro/internal/models"
)

const (
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Lustro-Bot/1.0"

	httpTimeout  = 15 * time.Second
	probeTimeout = 10 * time.Second
	birdTimeout  = 30 * time.Second
)

// Fetcher is the capability the orchestrator depends on. The retrieval
// methods mirror the ways a source can be fetched; callers never know
// which transport backs a given source.
type Fetcher interface {
	// Feed fetches an RSS/Atom feed. An error signals the feed is
	// unreachable or unparseable so the caller may fall back to Page.
	Feed(ctx context.Context, url, sinceDate string, maxItems int) ([]models.Article, error)

	// Page scrapes headlines from an HTML page.
	Page(ctx context.Context, url string, maxItems int) ([]models.Article, error)

	// Timeline fetches recent posts for a social-media handle. A missing
	// timeline client degrades to an empty result with a warning.
	Timeline(ctx context.Context, handle, sinceDate string, maxItems int) ([]models.Article, error)

	// Bookmarks fetches the operator's saved posts. Degrades like
	// Timeline when the timeline client is missing.
	Bookmarks(ctx context.Context, sinceDate string, maxItems int) ([]models.Article, error)

	// Extract downloads a page and returns its readable text, for
	// tier-1 archival.
	Extract(ctx context.Context, url string) (string, error)

	// Probe checks reachability of a source endpoint for the health
	// check, returning an HTTP status code or a short error marker.
	Probe(ctx context.Context, url string) string
}

// Client is the production Fetcher backed by HTTP and the external
// `bird` CLI for timelines.
type Client struct {
	http     *http.Client
	parser   *gofeed.Parser
	birdPath string
	logger   *slog.Logger
}

// Verify Client satisfies Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// NewClient builds a Client. birdPath may be empty, in which case the
// CLI is looked up on PATH; timeline fetches degrade to no-ops when it
// cannot be found.
func NewClient(logger *slog.Logger, birdPath string) *Client {
	if birdPath == "" {
		if found, err := exec.LookPath("bird"); err == nil {
			birdPath = found
		}
	}
	return &Client{
		http:     &http.Client{Timeout: httpTimeout},
		parser:   gofeed.NewParser(),
		birdPath: birdPath,
		logger:   logger,
	}
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return c.http.Do(req)
}
