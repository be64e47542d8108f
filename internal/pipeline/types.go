package pipeline

import (
	"os"
	"strconv"
)

// #region config
// Config holds orchestration knobs.
type Config struct {
	TopK int // evidence items requested per call
}

// DefaultConfig returns pipeline defaults.
// Reads from env vars: CLAIMCHECK_TOP_K.
func DefaultConfig() Config {
	cfg := Config{TopK: 6}
	if v := os.Getenv("CLAIMCHECK_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TopK = n
		}
	}
	return cfg
}

// #endregion config
