// Package localindex is the evidence adapter backed by a prebuilt SQLite
// vector index over a fixed corpus. The index is produced by the corpus
// build tooling; this package only reads it.
package localindex

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"os"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/embed"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/evidence"
)

// #region schema
// Expected artifact schema. corpus_meta holds the aligned text/provenance
// table, corpus_vectors the embedding blobs (little-endian float32).
const schema = `
CREATE TABLE IF NOT EXISTS corpus_meta (
	id          INTEGER PRIMARY KEY,
	text        TEXT NOT NULL,
	source_url  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS corpus_vectors (
	id         INTEGER PRIMARY KEY,
	dim        INTEGER NOT NULL,
	embedding  BLOB NOT NULL,
	FOREIGN KEY (id) REFERENCES corpus_meta(id)
);
`

// Schema returns the artifact schema, for tooling that builds fixtures.
func Schema() string { return schema }

// #endregion schema

// #region adapter
type entry struct {
	text   string
	source string
	vec    []float32
}

// Adapter serves nearest-neighbor lookups over the corpus. A missing or
// unreadable index leaves the adapter inert: Search returns nothing and the
// pipeline runs degraded, never fatal.
type Adapter struct {
	embedder embed.Embedder
	entries  []entry
	loaded   bool
}

// New opens the index at dbPath and loads all vectors into memory.
// The corpus is small enough for an exhaustive scan per query.
func New(dbPath string, embedder embed.Embedder) *Adapter {
	a := &Adapter{embedder: embedder}
	if err := a.load(dbPath); err != nil {
		log.Printf("[INDEX] index unavailable, running degraded: %v", err)
		return a
	}
	a.loaded = true
	log.Printf("[INDEX] loaded %d corpus entries from %s", len(a.entries), dbPath)
	return a
}

// Loaded reports whether the index artifact was readable at construction.
func (a *Adapter) Loaded() bool { return a.loaded }

// Name implements evidence.Source.
func (a *Adapter) Name() string { return "local-index" }

// #endregion adapter

// #region load
func (a *Adapter) load(dbPath string) error {
	if dbPath == "" {
		return fmt.Errorf("no index path configured")
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("stat index: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(
		`SELECT m.text, m.source_url, v.dim, v.embedding
		 FROM corpus_meta m JOIN corpus_vectors v ON v.id = m.id
		 ORDER BY m.id`,
	)
	if err != nil {
		return fmt.Errorf("query corpus: %w", err)
	}
	defer rows.Close()

	var entries []entry
	for rows.Next() {
		var e entry
		var dim int
		var blob []byte
		if err := rows.Scan(&e.text, &e.source, &dim, &blob); err != nil {
			return fmt.Errorf("scan corpus row: %w", err)
		}
		vec, err := decodeVector(blob, dim)
		if err != nil {
			return fmt.Errorf("decode embedding: %w", err)
		}
		embed.Normalize(vec)
		e.vec = vec
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate corpus: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("index is empty")
	}

	a.entries = entries
	return nil
}

// #endregion load

// #region search
// Search embeds the query and returns the closest limit entries with
// cosine-similarity scores in [-1, 1]. Any failure degrades to an empty
// result.
func (a *Adapter) Search(ctx context.Context, query string, limit int) []evidence.Item {
	if !a.loaded || limit <= 0 {
		return nil
	}

	qv, err := a.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("[INDEX] query embedding failed: %v", err)
		return nil
	}
	embed.Normalize(qv)

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, 0, len(a.entries))
	for i, e := range a.entries {
		ranked = append(ranked, scored{idx: i, score: embed.Dot(qv, e.vec)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if limit > len(ranked) {
		limit = len(ranked)
	}
	items := make([]evidence.Item, 0, limit)
	for _, r := range ranked[:limit] {
		e := a.entries[r.idx]
		items = append(items, evidence.Item{Text: e.text, Source: e.source}.Scored(r.score))
	}
	return items
}

// #endregion search

// #region vector-encoding
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte, dim int) ([]float32, error) {
	if dim <= 0 || len(b) != dim*4 {
		return nil, fmt.Errorf("blob length %d does not match dim %d", len(b), dim)
	}
	v := make([]float32, dim)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

// #endregion vector-encoding
