// Package newsapi is the live-news evidence adapter. It is inert unless an
// API key is configured, and every failure degrades to an empty result.
package newsapi

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/evidence"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// #region config
// Config holds news search parameters.
// Reads from env vars: NEWSAPI_KEY, NEWSAPI_PAGE_SIZE, NEWSAPI_TIMEOUT,
// NEWSAPI_LANGUAGE.
type Config struct {
	Endpoint      string // e.g. https://newsapi.org/v2/everything
	APIKey        string
	Language      string
	PageSize      int
	Timeout       time.Duration
	MaxSnippetLen int
}

// DefaultConfig returns defaults; the adapter stays inert without a key.
func DefaultConfig() Config {
	cfg := Config{
		Endpoint:      "https://newsapi.org/v2/everything",
		APIKey:        os.Getenv("NEWSAPI_KEY"),
		Language:      "en",
		PageSize:      3,
		Timeout:       8 * time.Second,
		MaxSnippetLen: 1000,
	}
	if v := os.Getenv("NEWSAPI_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("NEWSAPI_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
	if v := os.Getenv("NEWSAPI_TIMEOUT"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			cfg.Timeout = time.Duration(sec) * time.Second
		}
	}
	return cfg
}

// #endregion config

// #region adapter
// Adapter queries the news search API. Requests are rate limited client-side;
// waiting is bounded by the request timeout.
type Adapter struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter
}

// New creates a news adapter with the given config.
func New(config Config) *Adapter {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.MaxSnippetLen <= 0 {
		config.MaxSnippetLen = DefaultConfig().MaxSnippetLen
	}
	return &Adapter{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

// Name implements evidence.Source.
func (a *Adapter) Name() string { return "newsapi" }

// Enabled reports whether a credential is configured.
func (a *Adapter) Enabled() bool { return a.config.APIKey != "" }

// #endregion adapter

// #region search
type articlesResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
	} `json:"articles"`
}

// Search queries the news endpoint. Without a key no request is made.
// Snippets are truncated to MaxSnippetLen; scores are left for the
// retriever's scoring pass.
func (a *Adapter) Search(ctx context.Context, query string, limit int) []evidence.Item {
	if !a.Enabled() {
		return nil
	}
	if limit <= 0 || limit > a.config.PageSize {
		limit = a.config.PageSize
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	if err := a.limiter.Wait(ctx); err != nil {
		log.Printf("[NEWS] rate limit wait aborted: %v", err)
		return nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", a.config.Language)
	params.Set("pageSize", strconv.Itoa(limit))
	params.Set("apiKey", a.config.APIKey)

	resp, err := a.fetch(ctx, a.config.Endpoint+"?"+params.Encode())
	if err != nil {
		log.Printf("[NEWS] search failed: %v", err)
		return nil
	}

	items := make([]evidence.Item, 0, len(resp.Articles))
	for _, art := range resp.Articles {
		snippet := truncate(art.Title+". "+art.Description, a.config.MaxSnippetLen)
		source := art.URL
		if source == "" {
			source = "newsapi"
		}
		items = append(items, evidence.Item{Text: snippet, Source: source})
	}
	return items
}

// #endregion search

// #region http-helpers
func (a *Adapter) fetch(ctx context.Context, rawURL string) (articlesResponse, error) {
	var out articlesResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return out, fmt.Errorf("build request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return out, fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("parse articles: %w", err)
	}
	return out, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// #endregion http-helpers
