package retrieval

import (
	"os"
	"strconv"
)

// #region config
// Config holds limits for the retrieval pipeline.
type Config struct {
	TopK       int  // max items after ranking
	Concurrent bool // dispatch source lookups in parallel
}

// DefaultConfig returns sensible retrieval defaults.
// Reads from env vars: RETRIEVAL_TOP_K, RETRIEVAL_CONCURRENT.
func DefaultConfig() Config {
	cfg := Config{
		TopK:       5,
		Concurrent: true,
	}
	if v := os.Getenv("RETRIEVAL_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TopK = n
		}
	}
	if v := os.Getenv("RETRIEVAL_CONCURRENT"); v != "" {
		cfg.Concurrent = v == "true" || v == "1"
	}
	return cfg
}

// #endregion config
