package evidence

import "context"

// #region item
// Item is a single piece of retrieved evidence with provenance.
// Score is nil until the retriever's scoring pass assigns a relevance
// score; adapters may pre-fill it but the retriever always overwrites.
type Item struct {
	Text   string   `json:"text"`
	Source string   `json:"source"`
	Score  *float64 `json:"score"`
}

// Scored returns a copy of the item with the given score set.
func (it Item) Scored(score float64) Item {
	it.Score = &score
	return it
}

// #endregion item

// #region source
// Source is implemented by every evidence lookup backend.
// Search never fails: recoverable conditions (missing credential, missing
// index, network error, empty result) degrade to an empty slice and are
// logged by the adapter itself. limit is advisory; adapters clamp it to
// their own configured maximum.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, limit int) []Item
}

// #endregion source

// #region helpers
// Texts extracts the non-empty text of each item, preserving order.
func Texts(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Text != "" {
			out = append(out, it.Text)
		}
	}
	return out
}

// Sources extracts the source identifier of each item, preserving order.
func Sources(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Source)
	}
	return out
}

// #endregion helpers
