package config

import (
	"os"
	"path/filepath"
	"testing"
)

// #region default-tests
func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.CodecEndpoint != "http://localhost:11434" {
		t.Errorf("CodecEndpoint = %q", cfg.CodecEndpoint)
	}
	if cfg.GenerateModel != "flan-verifier" || cfg.EmbedModel != "all-minilm" {
		t.Errorf("model defaults wrong: %+v", cfg)
	}
	if cfg.TopK != 6 {
		t.Errorf("TopK = %d, want 6", cfg.TopK)
	}
}

// #endregion default-tests

// #region load-tests
func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "codec_endpoint: http://inference:9000\ntop_k: 4\nlog_path: /var/lib/claims.db\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CodecEndpoint != "http://inference:9000" {
		t.Errorf("CodecEndpoint = %q", cfg.CodecEndpoint)
	}
	if cfg.TopK != 4 {
		t.Errorf("TopK = %d, want 4", cfg.TopK)
	}
	if cfg.LogPath != "/var/lib/claims.db" {
		t.Errorf("LogPath = %q", cfg.LogPath)
	}
	// untouched keys keep their defaults
	if cfg.GenerateModel != "flan-verifier" {
		t.Errorf("GenerateModel = %q", cfg.GenerateModel)
	}
}

func TestLoad_MissingFileIsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_MalformedYAMLIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("top_k: [not an int"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

// #endregion load-tests

// #region env-tests
func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("top_k: 4\nembed_model: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CLAIMCHECK_TOP_K", "9")
	t.Setenv("CODEC_EMBED_MODEL", "from-env")
	t.Setenv("CLAIMCHECK_DB", "env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TopK != 9 {
		t.Errorf("TopK = %d, want env override 9", cfg.TopK)
	}
	if cfg.EmbedModel != "from-env" {
		t.Errorf("EmbedModel = %q", cfg.EmbedModel)
	}
	if cfg.LogPath != "env.db" {
		t.Errorf("LogPath = %q", cfg.LogPath)
	}
}

func TestLoad_InvalidEnvTopKIgnored(t *testing.T) {
	t.Setenv("CLAIMCHECK_TOP_K", "zero")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TopK != 6 {
		t.Errorf("TopK = %d, want default 6", cfg.TopK)
	}
}

// #endregion env-tests
