// Package codec wraps the HTTP connection to the sidecar inference service,
// which exposes text generation and embedding.
package codec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/tao"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// #region config
// Config holds the inference service endpoint and model names.
type Config struct {
	Endpoint      string // base URL, e.g. http://localhost:11434
	GenerateModel string
	EmbedModel    string
	Timeout       time.Duration
}

// DefaultConfig returns defaults for a local inference sidecar.
func DefaultConfig() Config {
	return Config{
		Endpoint:      "http://localhost:11434",
		GenerateModel: "flan-verifier",
		EmbedModel:    "all-minilm",
		Timeout:       30 * time.Second,
	}
}

// #endregion config

// #region client-struct
// Client talks to the inference service over HTTP JSON.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a client for the inference service.
func NewClient(config Config) *Client {
	if config.Endpoint == "" {
		config.Endpoint = DefaultConfig().Endpoint
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
	}
}

// #endregion client-struct

// #region available
// Available reports whether the inference service answers on its tags
// endpoint. Used at startup to decide whether generation is wired at all.
func (c *Client) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// #endregion available

// #region generate
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature       float64 `json:"temperature"`
	NumBeams          int     `json:"num_beams"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends a prompt with decoding parameters to the inference service
// and returns the raw generated text.
func (c *Client) Generate(ctx context.Context, prompt string, params tao.DecodingParams) (string, error) {
	body := generateRequest{
		Model:  c.config.GenerateModel,
		Prompt: prompt,
		Options: generateOptions{
			Temperature:       params.Temperature,
			NumBeams:          params.NumBeams,
			RepetitionPenalty: params.RepetitionPenalty,
		},
	}

	var resp generateResponse
	if err := c.post(ctx, "/api/generate", body, &resp); err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return resp.Response, nil
}

// #endregion generate

// #region embed
type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns a dense embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embedResponse
	if err := c.post(ctx, "/api/embeddings", embedRequest{Model: c.config.EmbedModel, Prompt: text}, &resp); err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("embed: empty embedding from service")
	}
	return resp.Embedding, nil
}

// #endregion embed

// #region http-helpers
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post %s: status %d: %s", path, resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// #endregion http-helpers
