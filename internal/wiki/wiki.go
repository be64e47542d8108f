// Package wiki is the encyclopedic evidence adapter: title search followed
// by per-title summary fetch against the Wikipedia APIs.
package wiki

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/evidence"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// #region config
// Config holds encyclopedic lookup parameters.
// Reads from env vars: WIKI_MAX_RESULTS, WIKI_TIMEOUT.
type Config struct {
	APIBase    string // MediaWiki action API, e.g. https://en.wikipedia.org/w/api.php
	RESTBase   string // REST API base, e.g. https://en.wikipedia.org/api/rest_v1
	MaxResults int
	Timeout    time.Duration
}

// DefaultConfig returns the English Wikipedia endpoints.
func DefaultConfig() Config {
	cfg := Config{
		APIBase:    "https://en.wikipedia.org/w/api.php",
		RESTBase:   "https://en.wikipedia.org/api/rest_v1",
		MaxResults: 2,
		Timeout:    6 * time.Second,
	}
	if v := os.Getenv("WIKI_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxResults = n
		}
	}
	if v := os.Getenv("WIKI_TIMEOUT"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			cfg.Timeout = time.Duration(sec) * time.Second
		}
	}
	return cfg
}

// #endregion config

// #region adapter
// Adapter looks up topically matching article summaries. Scores are left
// unset; the retriever fills them in during its scoring pass.
type Adapter struct {
	config Config
	client *http.Client
}

// New creates an encyclopedic adapter with the given config.
func New(config Config) *Adapter {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Adapter{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Name implements evidence.Source.
func (a *Adapter) Name() string { return "wikipedia" }

// #endregion adapter

// #region search
// Search resolves matching titles, then fetches a summary per title.
// Titles that fail to resolve are skipped individually; any search-level
// failure degrades to an empty result.
func (a *Adapter) Search(ctx context.Context, query string, limit int) []evidence.Item {
	if limit <= 0 || limit > a.config.MaxResults {
		limit = a.config.MaxResults
	}

	titles, err := a.searchTitles(ctx, query, limit)
	if err != nil {
		log.Printf("[WIKI] title search failed: %v", err)
		return nil
	}

	var items []evidence.Item
	for _, title := range titles {
		summary, err := a.fetchSummary(ctx, title)
		if err != nil || summary == "" {
			continue
		}
		items = append(items, evidence.Item{
			Text:   summary,
			Source: "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(title, " ", "_"),
		})
	}
	return items
}

// #endregion search

// #region title-search
func (a *Adapter) searchTitles(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("format", "json")

	body, err := a.get(ctx, a.config.APIBase+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	// opensearch replies with a positional array:
	// [query, [titles], [descriptions], [urls]]
	var payload []jsoniter.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse opensearch: %w", err)
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("opensearch reply too short")
	}
	var titles []string
	if err := json.Unmarshal(payload[1], &titles); err != nil {
		return nil, fmt.Errorf("parse titles: %w", err)
	}
	return titles, nil
}

// #endregion title-search

// #region summary-fetch
func (a *Adapter) fetchSummary(ctx context.Context, title string) (string, error) {
	body, err := a.get(ctx, a.config.RESTBase+"/page/summary/"+url.PathEscape(title))
	if err != nil {
		return "", err
	}

	var summary struct {
		Extract string `json:"extract"`
	}
	if err := json.Unmarshal(body, &summary); err != nil {
		return "", fmt.Errorf("parse summary: %w", err)
	}
	return summary.Extract, nil
}

// #endregion summary-fetch

// #region http-helpers
func (a *Adapter) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// #endregion http-helpers
