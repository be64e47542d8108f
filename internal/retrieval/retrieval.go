// Package retrieval merges evidence from all source adapters and ranks it
// by embedding similarity against the query.
package retrieval

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/embed"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/evidence"
)

// #region retriever
// Retriever fans out to its sources in a fixed order, scores the merged
// candidates against the query, and truncates to top-K.
type Retriever struct {
	sources  []evidence.Source
	embedder embed.Embedder
	config   Config
}

// NewRetriever creates a retriever over the given sources. Source order is
// significant: it fixes the merge order and the tie-break order.
func NewRetriever(embedder embed.Embedder, sources []evidence.Source, config Config) *Retriever {
	if config.TopK <= 0 {
		config.TopK = DefaultConfig().TopK
	}
	return &Retriever{sources: sources, embedder: embedder, config: config}
}

// #endregion retriever

// #region retrieve
// Retrieve runs the fan-out / score / rank pipeline:
//  1. Query every source; a failing source contributes nothing and does not
//     abort the others.
//  2. Concatenate in fixed source order, source-internal order preserved.
//  3. Score each candidate as cosine similarity between its text embedding
//     and the query embedding, overwriting any adapter-supplied score.
//  4. Stable-sort descending and truncate to topK.
//
// An empty query or an all-empty fan-out returns an empty set without a
// scoring pass. A failed scoring pass degrades to the unsorted concatenation.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) []evidence.Item {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if topK <= 0 {
		topK = r.config.TopK
	}

	merged := r.fanOut(ctx, query, topK)
	if len(merged) == 0 {
		log.Printf("[RETRIEVE] no evidence found for query")
		return nil
	}

	scored, ok := r.score(ctx, query, merged)
	if !ok {
		// Degraded: keep the concatenation as-is rather than fail the call.
		return merged
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return *scored[i].Score > *scored[j].Score
	})
	if topK < len(scored) {
		scored = scored[:topK]
	}
	log.Printf("[RETRIEVE] returning %d ranked evidence items", len(scored))
	return scored
}

// #endregion retrieve

// #region fan-out
// fanOut queries all sources and rejoins results in fixed source order.
// Dispatch may be concurrent; ordering never depends on completion time.
func (r *Retriever) fanOut(ctx context.Context, query string, topK int) []evidence.Item {
	perSource := make([][]evidence.Item, len(r.sources))

	if r.config.Concurrent {
		var wg sync.WaitGroup
		for i, src := range r.sources {
			wg.Add(1)
			go func(slot int, s evidence.Source) {
				defer wg.Done()
				perSource[slot] = s.Search(ctx, query, topK)
			}(i, src)
		}
		wg.Wait()
	} else {
		for i, src := range r.sources {
			perSource[i] = src.Search(ctx, query, topK)
		}
	}

	var merged []evidence.Item
	for i, items := range perSource {
		log.Printf("[RETRIEVE] source %s returned %d items", r.sources[i].Name(), len(items))
		merged = append(merged, items...)
	}
	return merged
}

// #endregion fan-out

// #region scoring
// score embeds the query and every candidate text, unit-normalizes the
// vectors, and assigns the dot product as the final score. Any
// adapter-supplied score is overwritten, never blended.
func (r *Retriever) score(ctx context.Context, query string, items []evidence.Item) ([]evidence.Item, bool) {
	qv, err := r.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("[RETRIEVE] scoring pass failed on query embedding: %v", err)
		return nil, false
	}
	embed.Normalize(qv)

	scored := make([]evidence.Item, len(items))
	for i, it := range items {
		tv, err := r.embedder.Embed(ctx, it.Text)
		if err != nil {
			log.Printf("[RETRIEVE] scoring pass failed on item %d: %v", i, err)
			return nil, false
		}
		embed.Normalize(tv)
		scored[i] = it.Scored(embed.Dot(tv, qv))
	}
	return scored, true
}

// #endregion scoring
