package localindex

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

// #region fixtures
type stubEmbedder struct {
	vec []float32
	err error
}

func (e *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return e.vec, e.err
}

func buildIndex(t *testing.T, entries []struct {
	text, source string
	vec          []float32
}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	for i, e := range entries {
		if _, err := db.Exec(`INSERT INTO corpus_meta (id, text, source_url) VALUES (?, ?, ?)`,
			i, e.text, e.source); err != nil {
			t.Fatalf("insert meta: %v", err)
		}
		if _, err := db.Exec(`INSERT INTO corpus_vectors (id, dim, embedding) VALUES (?, ?, ?)`,
			i, len(e.vec), encodeVector(e.vec)); err != nil {
			t.Fatalf("insert vector: %v", err)
		}
	}
	return path
}

// #endregion fixtures

// #region degraded-tests
func TestNew_MissingIndexIsInert(t *testing.T) {
	a := New(filepath.Join(t.TempDir(), "absent.db"), &stubEmbedder{vec: []float32{1, 0}})

	if a.Loaded() {
		t.Error("adapter should not report loaded for a missing artifact")
	}
	if got := a.Search(context.Background(), "query", 3); got != nil {
		t.Errorf("inert adapter returned items: %v", got)
	}
}

func TestNew_EmptyPathIsInert(t *testing.T) {
	a := New("", &stubEmbedder{vec: []float32{1, 0}})
	if a.Loaded() {
		t.Error("adapter should be inert without an index path")
	}
}

func TestSearch_EmbedFailureReturnsEmpty(t *testing.T) {
	path := buildIndex(t, []struct {
		text, source string
		vec          []float32
	}{
		{"doc", "https://example.org/doc", []float32{1, 0}},
	})
	a := New(path, &stubEmbedder{err: errors.New("embed down")})

	if got := a.Search(context.Background(), "query", 3); got != nil {
		t.Errorf("expected empty result on embed failure, got %v", got)
	}
}

// #endregion degraded-tests

// #region search-tests
func TestSearch_RanksByCosine(t *testing.T) {
	path := buildIndex(t, []struct {
		text, source string
		vec          []float32
	}{
		{"orthogonal", "https://example.org/a", []float32{0, 1}},
		{"aligned", "https://example.org/b", []float32{2, 0}}, // normalizes to (1,0)
		{"opposed", "https://example.org/c", []float32{-1, 0}},
	})
	a := New(path, &stubEmbedder{vec: []float32{1, 0}})
	if !a.Loaded() {
		t.Fatal("index failed to load")
	}

	got := a.Search(context.Background(), "query", 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Text != "aligned" || got[1].Text != "orthogonal" {
		t.Errorf("unexpected ranking: %q, %q", got[0].Text, got[1].Text)
	}
	for _, it := range got {
		if it.Score == nil {
			t.Fatal("missing score")
		}
		if *it.Score < -1 || *it.Score > 1 {
			t.Errorf("score %v out of [-1, 1]", *it.Score)
		}
	}
	if *got[0].Score < 0.999 {
		t.Errorf("aligned score = %v, want ~1.0", *got[0].Score)
	}
	if got[0].Source != "https://example.org/b" {
		t.Errorf("provenance lost: %s", got[0].Source)
	}
}

func TestSearch_LimitClampedToCorpus(t *testing.T) {
	path := buildIndex(t, []struct {
		text, source string
		vec          []float32
	}{
		{"only", "https://example.org/a", []float32{1, 0}},
	})
	a := New(path, &stubEmbedder{vec: []float32{1, 0}})

	if got := a.Search(context.Background(), "query", 10); len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
	if got := a.Search(context.Background(), "query", 0); got != nil {
		t.Errorf("limit 0 should return nothing, got %v", got)
	}
}

// #endregion search-tests

// #region encoding-tests
func TestVectorEncoding_RoundTrip(t *testing.T) {
	in := []float32{0.5, -1.25, 3.75, 0}
	out, err := decodeVector(encodeVector(in), len(in))
	if err != nil {
		t.Fatal(err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("element %d: %v != %v", i, in[i], out[i])
		}
	}
}

func TestVectorEncoding_DimMismatch(t *testing.T) {
	if _, err := decodeVector([]byte{1, 2, 3}, 1); err == nil {
		t.Error("expected error for short blob")
	}
	if _, err := decodeVector(encodeVector([]float32{1, 2}), 3); err == nil {
		t.Error("expected error for dim mismatch")
	}
}

// #endregion encoding-tests
