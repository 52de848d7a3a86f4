// Package fetch pulls full article text for stored events. Scoring
// works from titles and descriptions alone; full text feeds the same
// city extraction and can upgrade an event to the city tier, so
// fetching is best-effort.
package fetch

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/riskwatch/riskwatch/internal/database"
)

// Result holds the results of a content fetch run.
type Result struct {
	Fetched int
	Failed  int
}

// ContentFetcher fetches full event text via HTTP + readability extraction.
type ContentFetcher struct {
	db     *database.DB
	client *http.Client
	limit  int
}

// NewContentFetcher creates a new content fetcher.
func NewContentFetcher(db *database.DB, timeout time.Duration, limit int) *ContentFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if limit <= 0 {
		limit = 100
	}
	return &ContentFetcher{
		db:    db,
		limit: limit,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// FetchMissingContent fetches full text for events that have none yet.
// A domain that fails once is skipped for the rest of the run.
func (f *ContentFetcher) FetchMissingContent() *Result {
	events, err := f.db.GetEventsNeedingFetch(f.limit)
	if err != nil {
		log.Printf("Error getting events needing fetch: %v", err)
		return &Result{}
	}

	if len(events) == 0 {
		log.Println("No events need content fetching")
		return &Result{}
	}

	result := &Result{}
	failedDomains := make(map[string]struct{})

	for _, event := range events {
		if event.URL == nil {
			continue
		}
		eventURL := *event.URL

		u, _ := url.Parse(eventURL)
		domain := ""
		if u != nil {
			domain = strings.ToLower(u.Host)
		}

		if _, failed := failedDomains[domain]; failed {
			f.db.MarkEventFetchAttempted(event.ID)
			result.Failed++
			continue
		}

		content, httpErr := f.fetchEventContent(eventURL)
		if httpErr != nil {
			f.db.MarkEventFetchAttempted(event.ID)
			result.Failed++
			if domain != "" {
				failedDomains[domain] = struct{}{}
			}
			log.Printf("HTTP error for %s, skipping remaining from %s", eventURL, domain)
			continue
		}

		if content != "" {
			f.db.UpdateEventContent(event.ID, &content)
			result.Fetched++
		} else {
			f.db.MarkEventFetchAttempted(event.ID)
			result.Failed++
		}
	}

	log.Printf("Content fetch complete: %d fetched, %d failed", result.Fetched, result.Failed)
	return result
}

func (f *ContentFetcher) fetchEventContent(eventURL string) (string, error) {
	req, err := http.NewRequest("GET", eventURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "riskwatch/1.0 (supply-chain-monitor)")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil // connection error, not HTTP error
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(eventURL)
	article, err := readability.FromReader(strings.NewReader(string(bodyBytes)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) > 100 {
		return text, nil
	}
	return "", nil
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
