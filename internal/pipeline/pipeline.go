// Package pipeline sequences retrieval, adaptive decoding, generation, and
// continual adaptation for one truth-assessment call.
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/evidence"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/logging"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/reason"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/retrieval"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/tao"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// #region result
// Result is the externally visible unit of the pipeline, rebuilt per call.
// Its JSON shape is the contract consumed by the presentation layer.
type Result struct {
	reason.Verdict
	TAOStatus  string          `json:"tao_status"`
	LastUpdate string          `json:"last_update,omitempty"`
	Evidence   []evidence.Item `json:"_evidence"`
}

// #endregion result

// #region pipeline-struct
// Pipeline owns one instance of each collaborator. Any of them may be nil;
// Analyze skips the corresponding stage and proceeds with defaults.
type Pipeline struct {
	retriever *retrieval.Retriever
	engine    *tao.Engine
	reasoner  *reason.Reasoner
	logDB     *sql.DB
	config    Config
}

// NewPipeline wires the pipeline. Collaborators are passed explicitly;
// there is no ambient or singleton access. logDB may be nil to disable
// verdict provenance logging.
func NewPipeline(retriever *retrieval.Retriever, engine *tao.Engine, reasoner *reason.Reasoner, logDB *sql.DB, config Config) *Pipeline {
	if config.TopK <= 0 {
		config.TopK = DefaultConfig().TopK
	}
	return &Pipeline{
		retriever: retriever,
		engine:    engine,
		reasoner:  reasoner,
		logDB:     logDB,
		config:    config,
	}
}

// #endregion pipeline-struct

// #region analyze
// Analyze runs Retrieve → Propose → Generate → Ingest with a skip-forward
// rule at each transition. It always returns a well-formed Result; no stage
// failure propagates to the caller.
func (p *Pipeline) Analyze(ctx context.Context, text string) Result {
	claim := cleanText(text)
	if claim == "" {
		return Result{
			Verdict:   reason.Verdict{Label: reason.LabelUncertain, Confidence: 0.0, Explanation: "Empty input."},
			TAOStatus: "No input provided.",
			Evidence:  []evidence.Item{},
		}
	}

	log.Printf("[PIPE] analyzing claim: %.80s", claim)

	// Stage 1: retrieve. A missing retriever means empty evidence, not failure.
	items := []evidence.Item{}
	if p.retriever != nil {
		if got := p.retriever.Retrieve(ctx, claim, p.config.TopK); got != nil {
			items = got
		}
	}
	texts := evidence.Texts(items)

	// Stage 2: propose decoding parameters.
	var params *tao.DecodingParams
	if p.engine != nil {
		drawn := p.engine.ProposeParams()
		params = &drawn
	}

	// Stage 3: generate. Missing generator short-circuits with evidence attached.
	if p.reasoner == nil {
		return Result{
			Verdict:   reason.Verdict{Label: reason.LabelUncertain, Confidence: 0.5, Explanation: "Generator not available."},
			TAOStatus: "Skipped (no generator)",
			Evidence:  items,
		}
	}
	verdict, err := p.reasoner.Verdict(ctx, claim, texts, params)
	if err != nil {
		log.Printf("[PIPE] generation failed: %v", err)
		verdict = reason.Verdict{Label: reason.LabelUncertain, Confidence: 0.5, Explanation: err.Error()}
	}

	// Stage 4: ingest the outcome. Never affects the verdict already produced.
	result := Result{Verdict: verdict, Evidence: items}
	if p.engine != nil {
		result.TAOStatus = p.ingest(claim, verdict)
		result.LastUpdate = p.engine.Stats().LastUpdate.Format(time.ANSIC)
	} else {
		result.TAOStatus = "TAO module not loaded."
	}

	p.logResult(claim, result)
	return result
}

// #endregion analyze

// #region ingest
// ingest converts any engine failure into a status string at the stage
// boundary instead of letting it escape Analyze.
func (p *Pipeline) ingest(claim string, verdict reason.Verdict) (status string) {
	defer func() {
		if r := recover(); r != nil {
			status = fmt.Sprintf("TAO failed: %v", r)
		}
	}()
	return p.engine.Ingest([]tao.Sample{{Text: claim, Label: string(verdict.Label)}})
}

// #endregion ingest

// #region provenance
func (p *Pipeline) logResult(claim string, result Result) {
	if p.logDB == nil {
		return
	}

	refs, _ := json.Marshal(evidence.Sources(result.Evidence))
	err := logging.LogVerdict(p.logDB, logging.VerdictEntry{
		VerdictID:    uuid.New().String(),
		Claim:        claim,
		Label:        string(result.Label),
		Confidence:   result.Confidence,
		TAOStatus:    result.TAOStatus,
		EvidenceRefs: string(refs),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		log.Printf("[PIPE] failed to log verdict: %v", err)
	}
}

// #endregion provenance

// #region helpers
// cleanText trims and collapses internal whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// #endregion helpers
