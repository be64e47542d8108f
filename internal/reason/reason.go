// Package reason turns a claim plus evidence into a structured verdict:
// prompt construction, generation, structured-output parsing with heuristic
// fallback, and evidence-consistency correction.
package reason

import (
	"context"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/tao"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// #region verdict
// Label is the truth assessment of a claim.
type Label string

const (
	LabelTrue      Label = "True"
	LabelFake      Label = "Fake"
	LabelUncertain Label = "Uncertain"
)

// Verdict is the structured output of the reasoning step.
type Verdict struct {
	Label          Label    `json:"label"`
	Confidence     float64  `json:"confidence"`
	Explanation    string   `json:"explanation"`
	Counterfactual string   `json:"counterfactual"`
	Reasoning      []string `json:"reasoning"`
}

// #endregion verdict

// #region generator
// Generator is the opaque generation capability: prompt in, text out.
// *codec.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string, params tao.DecodingParams) (string, error)
}

// #endregion generator

// #region reasoner
const maxPromptEvidence = 5

// Reasoner produces verdicts via a Generator.
type Reasoner struct {
	gen Generator
}

// NewReasoner wraps a generation backend.
func NewReasoner(gen Generator) *Reasoner {
	return &Reasoner{gen: gen}
}

// Verdict runs the full reasoning step. The correction pass always runs,
// independent of which backend produced the raw text. The only error path
// is the generation call itself; parse failures recover locally.
func (r *Reasoner) Verdict(ctx context.Context, claim string, evidenceTexts []string, params *tao.DecodingParams) (Verdict, error) {
	if strings.TrimSpace(claim) == "" {
		return Verdict{Label: LabelUncertain, Confidence: 0.0, Explanation: "Empty claim"}, nil
	}

	p := tao.DefaultParams()
	if params != nil {
		p = *params
	}

	raw, err := r.gen.Generate(ctx, buildPrompt(claim, evidenceTexts), p)
	if err != nil {
		return Verdict{}, fmt.Errorf("generate verdict: %w", err)
	}

	v := parseOutput(raw)
	return applyCorrections(v, claim, evidenceTexts), nil
}

// #endregion reasoner

// #region prompt
func buildPrompt(claim string, evidenceTexts []string) string {
	context := "No relevant evidence found."
	if len(evidenceTexts) > 0 {
		n := len(evidenceTexts)
		if n > maxPromptEvidence {
			n = maxPromptEvidence
		}
		context = strings.Join(evidenceTexts[:n], " ")
	}

	return fmt.Sprintf(
		"You are a fact verification model.\n"+
			"Claim: %s\n\n"+
			"Evidence:\n%s\n\n"+
			"Decide whether the claim is True, Fake, or Uncertain based only on the evidence. "+
			"Then explain briefly why and give a counterfactual — what would make the claim true. "+
			"Respond ONLY in JSON format with keys: label, confidence, explanation, counterfactual.",
		claim, context,
	)
}

// #endregion prompt

// #region parse
type structuredOutput struct {
	Label          string   `json:"label"`
	Confidence     *float64 `json:"confidence"`
	Explanation    string   `json:"explanation"`
	Counterfactual string   `json:"counterfactual"`
	Reasoning      []string `json:"reasoning"`
}

// parseOutput maps raw generated text to a Verdict. Structured output is
// parsed with per-field defaults; anything else falls back to keyword
// heuristics; a parse failure recovers to Uncertain with the raw text as
// the explanation.
func parseOutput(raw string) Verdict {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Verdict{Label: LabelUncertain, Confidence: 0.5, Explanation: "No output"}
	}

	if strings.HasPrefix(text, "{") {
		var out structuredOutput
		if err := json.Unmarshal([]byte(text), &out); err != nil {
			return Verdict{Label: LabelUncertain, Confidence: 0.5, Explanation: text}
		}
		confidence := 0.6
		if out.Confidence != nil {
			confidence = *out.Confidence
		}
		reasoning := out.Reasoning
		if reasoning == nil {
			reasoning = []string{}
		}
		return Verdict{
			Label:          normalizeLabel(out.Label),
			Confidence:     confidence,
			Explanation:    out.Explanation,
			Counterfactual: out.Counterfactual,
			Reasoning:      reasoning,
		}
	}

	// Unstructured free text: keyword heuristics on the lower-cased output.
	// The Fake check runs first because "not true" contains "true".
	lower := strings.ToLower(text)
	label := LabelUncertain
	switch {
	case strings.Contains(lower, "false") || strings.Contains(lower, "not true"):
		label = LabelFake
	case strings.Contains(lower, "true"):
		label = LabelTrue
	}
	confidence := 0.5
	if label != LabelUncertain {
		confidence = 0.8
	}
	return Verdict{Label: label, Confidence: confidence, Explanation: text, Reasoning: []string{}}
}

// normalizeLabel clamps arbitrary model output to the three-value enum.
func normalizeLabel(s string) Label {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return LabelTrue
	case "fake", "false":
		return LabelFake
	default:
		return LabelUncertain
	}
}

// #endregion parse
