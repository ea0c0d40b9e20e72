package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/starford/lustro/internal/models"
)

// headlineSelectors covers the common article-listing markup; the
// looser fallback catches sites whose headlines are bare h2/h3 tags.
const (
	headlineSelectors = "article h2 a, article h3 a, h2 a, h3 a, .post-title a"
	fallbackSelectors = "h2, h3"

	minLinkedTitleLen = 10
	minBareTitleLen   = 20
)

// Page scrapes up to maxItems headlines from an HTML page. Relative
// links are resolved against the page URL; pages with no recognizable
// listing markup fall back to bare heading text without links.
func (c *Client) Page(ctx context.Context, pageURL string, maxItems int) ([]models.Article, error) {
	resp, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: page %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch: page %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: parse page %s: %w", pageURL, err)
	}

	base, _ := url.Parse(pageURL)
	var articles []models.Article
	doc.Find(headlineSelectors).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Text())
		if len(title) <= minLinkedTitleLen {
			return true
		}
		link, _ := sel.Attr("href")
		articles = append(articles, models.Article{
			Title: title,
			Link:  resolveLink(base, link),
		})
		return len(articles) < maxItems
	})

	if len(articles) == 0 {
		doc.Find(fallbackSelectors).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			title := strings.TrimSpace(sel.Text())
			if len(title) > minBareTitleLen {
				articles = append(articles, models.Article{Title: title})
			}
			return len(articles) < maxItems
		})
	}
	return articles, nil
}

func resolveLink(base *url.URL, link string) string {
	if link == "" || strings.HasPrefix(link, "http") {
		return link
	}
	if base == nil {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}
