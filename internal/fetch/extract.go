package fetch

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extract downloads a page and returns its readable text for archival:
// chrome elements stripped, the article/main region preferred over the
// whole body, whitespace collapsed. The URL must already have passed
// the SSRF guard.
func (c *Client) Extract(ctx context.Context, pageURL string) (string, error) {
	resp, err := c.get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch: extract %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch: extract %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetch: extract %s: %w", pageURL, err)
	}

	doc.Find("script, style, nav, header, footer, aside, form, iframe").Remove()

	region := doc.Find("article")
	if region.Length() == 0 {
		region = doc.Find("main")
	}
	if region.Length() == 0 {
		region = doc.Find("body")
	}
	text := strings.Join(strings.Fields(region.Text()), " ")
	return text, nil
}
