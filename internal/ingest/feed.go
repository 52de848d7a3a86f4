package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedSource pulls candidates from one RSS/Atom feed.
type FeedSource struct {
	url     string
	name    string
	country string
	maxItem int
	parser  *gofeed.Parser
}

// NewFeedSource creates a feed source. An empty name is derived from
// the feed host.
func NewFeedSource(feedURL, name, country string, maxItems int) *FeedSource {
	if name == "" {
		name = sourceNameFromURL(feedURL)
	}
	return &FeedSource{
		url:     feedURL,
		name:    name,
		country: country,
		maxItem: maxItems,
		parser:  gofeed.NewParser(),
	}
}

func (f *FeedSource) Name() string { return f.name }

// Fetch parses the feed and returns its newest items.
func (f *FeedSource) Fetch(ctx context.Context) ([]Candidate, error) {
	feed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", f.url, err)
	}

	var candidates []Candidate
	for _, item := range feed.Items {
		if f.maxItem > 0 && len(candidates) >= f.maxItem {
			break
		}

		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		candidates = append(candidates, Candidate{
			Title:        title,
			Description:  stripHTML(item.Description),
			URL:          itemURL(item),
			PublishedRaw: publishedRaw(item),
			CountryHint:  f.country,
		})
	}
	return candidates, nil
}

func itemURL(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	return item.GUID
}

// publishedRaw prefers the feed's own timestamp string so admission
// parses exactly what the source emitted; the parsed form is a
// fallback for feeds gofeed normalizes away.
func publishedRaw(item *gofeed.Item) string {
	if item.Published != "" {
		return item.Published
	}
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	if item.Updated != "" {
		return item.Updated
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC().Format(time.RFC3339)
	}
	return ""
}

func stripHTML(text string) string {
	// Simple HTML tag removal
	var result strings.Builder
	inTag := false
	for _, r := range text {
		if r == '<' {
			inTag = true
			result.WriteRune(' ')
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}

	s := result.String()
	// Decode common entities
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")

	// Normalize whitespace
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func sourceNameFromURL(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil {
		return feedURL
	}
	host := strings.ToLower(u.Hostname())

	for _, prefix := range []string{"www.", "rss.", "feeds."} {
		host = strings.TrimPrefix(host, prefix)
	}

	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		name := parts[len(parts)-2]
		return strings.ToUpper(name[:1]) + name[1:]
	}
	if host == "" {
		return feedURL
	}
	return strings.ToUpper(host[:1]) + host[1:]
}
