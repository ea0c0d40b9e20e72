package internal

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lustro/internal/models"
	pkgconfig "github.com/starford/lustro/pkg/config"
)

// Sources is the parsed sources.yaml: web/RSS sources, social accounts
// and saved-post bookmarks in separate sections.
type Sources struct {
	WebSources []models.Source `yaml:"web_sources"`
	XAccounts  []models.Source `yaml:"x_accounts"`
	XBookmarks []models.Source `yaml:"x_bookmarks"`
}

// Validate checks every configured source.
func (s *Sources) Validate() error {
	for _, src := range append(append([]models.Source{}, s.WebSources...), s.XAccounts...) {
		if err := validateSource(src); err != nil {
			return fmt.Errorf("source %q: %w", src.Name, err)
		}
	}
	for _, src := range s.XBookmarks {
		src = withBookmarkDefaults(src)
		if err := validateSource(src); err != nil {
			return fmt.Errorf("source %q: %w", src.Name, err)
		}
	}
	return nil
}

func validateSource(src models.Source) error {
	if err := validation.ValidateStruct(&src,
		validation.Field(&src.Name, validation.Required),
		validation.Field(&src.Tier, validation.Min(0), validation.Max(3)),
	); err != nil {
		return err
	}
	if !src.Bookmarks && src.RSS == "" && src.URL == "" && src.Handle == "" {
		return fmt.Errorf("needs one of rss, url, handle or bookmarks")
	}
	return nil
}

// withBookmarkDefaults marks an x_bookmarks entry as a bookmark source;
// the section itself is the fetch descriptor, so entries carry only
// name/tier/cadence.
func withBookmarkDefaults(src models.Source) models.Source {
	src.Bookmarks = true
	if src.Name == "" {
		src.Name = "X Bookmarks"
	}
	return src
}

// All returns every source with defaults applied: tier 2 and daily
// cadence unless configured otherwise.
func (s *Sources) All() []models.Source {
	out := make([]models.Source, 0, len(s.WebSources)+len(s.XAccounts)+len(s.XBookmarks))
	for _, src := range s.WebSources {
		out = append(out, withDefaults(src))
	}
	for _, src := range s.XAccounts {
		if src.Name == "" {
			src.Name = src.Handle
		}
		out = append(out, withDefaults(src))
	}
	for _, src := range s.XBookmarks {
		out = append(out, withDefaults(withBookmarkDefaults(src)))
	}
	return out
}

// Tier1Candidates returns the web/RSS sources monitored by the breaking
// path: tier 1 with a fetchable endpoint.
func (s *Sources) Tier1Candidates() []models.Source {
	var out []models.Source
	for _, src := range s.WebSources {
		src = withDefaults(src)
		if src.Tier == models.Tier1 && (src.RSS != "" || src.URL != "") {
			out = append(out, src)
		}
	}
	return out
}

func withDefaults(src models.Source) models.Source {
	if src.Tier == 0 {
		src.Tier = 2
	}
	if src.Cadence == "" {
		src.Cadence = models.CadenceDaily
	}
	return src
}

// LoadSources reads sources.yaml. A missing file yields an empty set;
// `lustro init` writes a starter file.
func LoadSources(path string) (*Sources, error) {
	var s Sources
	if err := pkgconfig.LoadOptional(path, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DefaultSourcesYAML is the starter sources file written by `lustro init`.
const DefaultSourcesYAML = `# Lustro sources.
#
# web_sources take an rss and/or url; when both are set the page is a
# fallback for an unreachable feed. x_accounts take a handle;
# x_bookmarks pulls your own saved posts and needs no endpoint.
# tier 1 sources are archived in full and watched for breaking news.
# cadence: daily | twice_weekly | weekly | biweekly | monthly

web_sources:
  - name: Anthropic News
    url: https://www.anthropic.com/news
    tier: 1
    cadence: daily
  - name: OpenAI Blog
    rss: https://openai.com/blog/rss.xml
    url: https://openai.com/blog
    tier: 1
    cadence: daily
  - name: Google DeepMind Blog
    rss: https://deepmind.google/blog/rss.xml
    tier: 1
    cadence: daily
  - name: Simon Willison
    rss: https://simonwillison.net/atom/everything/
    tier: 2
    cadence: twice_weekly

x_accounts:
  - name: AnthropicAI
    handle: "@AnthropicAI"
    tier: 1
    cadence: daily

# x_bookmarks:
#   - name: X Bookmarks
#     tier: 2
#     cadence: daily
`
