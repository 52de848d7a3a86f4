package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

const newsAPIBaseURL = "https://newsapi.org/v2/everything"

// NewsAPISource queries NewsAPI's everything endpoint for disruption
// coverage matching a query.
type NewsAPISource struct {
	apiKey   string
	query    string
	daysBack int
	pageSize int
	client   *http.Client
}

// NewNewsAPISource creates a NewsAPI source reading its key from the
// given environment variable.
func NewNewsAPISource(apiKeyEnv, query string, daysBack, pageSize int) *NewsAPISource {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}
	return &NewsAPISource{
		apiKey:   os.Getenv(apiKeyEnv),
		query:    query,
		daysBack: daysBack,
		pageSize: pageSize,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *NewsAPISource) Name() string { return "NewsAPI" }

// IsConfigured returns whether the API key is available.
func (s *NewsAPISource) IsConfigured() bool {
	return s.apiKey != ""
}

// Fetch queries NewsAPI for articles within the lookback window.
func (s *NewsAPISource) Fetch(ctx context.Context) ([]Candidate, error) {
	if s.apiKey == "" {
		return nil, nil
	}

	now := time.Now().UTC()
	params := url.Values{
		"q":        {s.query},
		"from":     {now.AddDate(0, 0, -s.daysBack).Format("2006-01-02")},
		"to":       {now.Format("2006-01-02")},
		"language": {"en"},
		"pageSize": {fmt.Sprintf("%d", s.pageSize)},
		"sortBy":   {"publishedAt"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, newsAPIBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building NewsAPI request: %w", err)
	}
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("NewsAPI request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NewsAPI request: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Status   string `json:"status"`
		Articles []struct {
			URL         string `json:"url"`
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding NewsAPI response: %w", err)
	}
	if result.Status != "ok" {
		return nil, fmt.Errorf("NewsAPI status %q", result.Status)
	}

	var candidates []Candidate
	for _, a := range result.Articles {
		if a.Title == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Title:        a.Title,
			Description:  a.Description,
			URL:          a.URL,
			PublishedRaw: a.PublishedAt,
		})
	}
	return candidates, nil
}
