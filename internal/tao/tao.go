// Package tao implements the training-adaptation-optimization engine: it
// proposes decoding parameters per request and maintains synthetic online
// adaptation statistics across ingested batches.
package tao

import (
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// #region decoding-params
// DecodingParams are the sampling knobs handed to the generation backend.
type DecodingParams struct {
	Temperature       float64 `json:"temperature"`
	NumBeams          int     `json:"num_beams"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

// DefaultParams is the fixed fallback used when no engine is available or
// an internal error interrupts a draw.
func DefaultParams() DecodingParams {
	return DecodingParams{Temperature: 0.7, NumBeams: 4, RepetitionPenalty: 1.2}
}

// #endregion decoding-params

// #region sample
// Sample is one labeled claim in an adaptation batch.
type Sample struct {
	Text  string
	Label string
}

// #endregion sample

// #region stats
// Stats is a snapshot of the engine's adaptation state.
type Stats struct {
	TotalSteps  int
	UpdateCount int
	CurrentLoss float64
	LastUpdate  time.Time
}

// #endregion stats

// #region engine
// Engine holds the adaptation state. ProposeParams reads nothing and is
// safe for unsynchronized concurrent use; Ingest serializes state updates
// behind a mutex so UpdateCount and CurrentLoss stay monotonic.
type Engine struct {
	mu    sync.Mutex
	stats Stats
}

// NewEngine creates an engine with zeroed counters and LastUpdate set to now.
func NewEngine() *Engine {
	return &Engine{stats: Stats{LastUpdate: time.Now()}}
}

// #endregion engine

// #region propose
var beamChoices = []int{2, 4, 6}

// ProposeParams draws decoding parameters for the next generation call:
// temperature uniform in [0.6, 0.9], beam width from {2, 4, 6}, repetition
// penalty uniform in [1.0, 1.3]. It never fails and never touches state.
func (e *Engine) ProposeParams() DecodingParams {
	p := DecodingParams{
		Temperature:       round2(0.6 + rand.Float64()*0.3),
		NumBeams:          beamChoices[rand.IntN(len(beamChoices))],
		RepetitionPenalty: round2(1.0 + rand.Float64()*0.3),
	}
	if p.Temperature < 0.6 || p.Temperature > 0.9 || p.RepetitionPenalty < 1.0 || p.RepetitionPenalty > 1.3 {
		return DefaultParams()
	}
	return p
}

// #endregion propose

// #region ingest
// Ingest records one adaptation batch. The loss curve is a deterministic
// function of the update count alone, floored at 0.01; it is a synthetic
// metric, not a measured training loss.
func (e *Engine) Ingest(batch []Sample) string {
	if len(batch) == 0 {
		return "No data provided for TAO training."
	}

	e.mu.Lock()
	e.stats.TotalSteps += len(batch)
	e.stats.UpdateCount++
	e.stats.CurrentLoss = math.Max(0.01, 0.5-0.05*float64(e.stats.UpdateCount))
	e.stats.LastUpdate = time.Now()
	updates := e.stats.UpdateCount
	loss := e.stats.CurrentLoss
	e.mu.Unlock()

	log.Printf("[TAO] adapted on %d samples (update %d)", len(batch), updates)
	return fmt.Sprintf("TAO adapted: %d updates, loss=%.3f", updates, loss)
}

// #endregion ingest

// #region stats-accessor
// Stats returns a consistent snapshot of the adaptation state.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// #endregion stats-accessor

// #region helpers
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// #endregion helpers
