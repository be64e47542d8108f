// Package config loads the top-level pipeline configuration from an
// optional YAML file, with environment overrides applied last.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// #region config
// Config covers process-level wiring; per-adapter knobs stay with their
// packages' DefaultConfig readers.
type Config struct {
	CodecEndpoint string `yaml:"codec_endpoint"`
	GenerateModel string `yaml:"generate_model"`
	EmbedModel    string `yaml:"embed_model"`
	IndexPath     string `yaml:"index_path"`
	LogPath       string `yaml:"log_path"`
	TopK          int    `yaml:"top_k"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CodecEndpoint: "http://localhost:11434",
		GenerateModel: "flan-verifier",
		EmbedModel:    "all-minilm",
		IndexPath:     "data/evidence_index.db",
		LogPath:       "claimcheck.db",
		TopK:          6,
	}
}

// #endregion config

// #region load
// Load reads the YAML file at path (empty path = defaults only) and then
// applies env overrides: CODEC_ADDR, CODEC_GENERATE_MODEL, CODEC_EMBED_MODEL,
// CLAIMCHECK_INDEX, CLAIMCHECK_DB, CLAIMCHECK_TOP_K.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml config: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CODEC_ADDR"); v != "" {
		cfg.CodecEndpoint = v
	}
	if v := os.Getenv("CODEC_GENERATE_MODEL"); v != "" {
		cfg.GenerateModel = v
	}
	if v := os.Getenv("CODEC_EMBED_MODEL"); v != "" {
		cfg.EmbedModel = v
	}
	if v := os.Getenv("CLAIMCHECK_INDEX"); v != "" {
		cfg.IndexPath = v
	}
	if v := os.Getenv("CLAIMCHECK_DB"); v != "" {
		cfg.LogPath = v
	}
	if v := os.Getenv("CLAIMCHECK_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TopK = n
		}
	}
}

// #endregion load
