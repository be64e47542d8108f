package reason

import (
	"math"
	"strings"
)

// #region rules
// correctionRule is one deterministic override reconciling the generated
// verdict with explicit evidence keywords.
type correctionRule struct {
	name  string
	match func(evidence, claim string) bool
	apply func(v *Verdict)
}

// correctionRules is evaluated in order; the first match wins and later
// rules are not evaluated. Rule order is part of the contract.
var correctionRules = []correctionRule{
	{
		name: "contradiction-terms",
		match: func(ev, _ string) bool {
			return containsAny(ev, "anti-scientific", "not true", "false", "hoax", "conspiracy", "debunked")
		},
		apply: func(v *Verdict) {
			v.Label = LabelFake
			v.Confidence = math.Max(v.Confidence, 0.9)
			v.Explanation = "Evidence indicates the claim contradicts scientific consensus."
			v.Counterfactual = "If verified empirical data supported the claim, it could be true."
		},
	},
	{
		name: "consensus-vs-flat",
		match: func(ev, claim string) bool {
			return strings.Contains(ev, "scientific consensus") && strings.Contains(claim, "flat")
		},
		apply: func(v *Verdict) {
			v.Label = LabelFake
			v.Confidence = 0.95
			v.Explanation = "Scientific consensus confirms Earth is spherical, not flat."
			v.Counterfactual = "If all scientific and satellite data were falsified, the claim might appear true."
		},
	},
	{
		name: "confirmation-terms",
		match: func(ev, _ string) bool {
			return containsAny(ev, "confirm", "proves")
		},
		apply: func(v *Verdict) {
			v.Label = LabelTrue
			v.Confidence = 0.9
		},
	},
	{
		name: "inconclusive-terms",
		match: func(ev, _ string) bool {
			return containsAny(ev, "no evidence", "unclear")
		},
		apply: func(v *Verdict) {
			v.Label = LabelUncertain
			v.Confidence = 0.6
		},
	},
}

// #endregion rules

// #region apply
// applyCorrections runs the ordered rule table over the joined evidence
// text. It is independent of the generation backend and runs on every
// verdict, including heuristic fallbacks.
func applyCorrections(v Verdict, claim string, evidenceTexts []string) Verdict {
	ev := strings.ToLower(strings.Join(evidenceTexts, " "))
	cl := strings.ToLower(claim)

	for _, rule := range correctionRules {
		if rule.match(ev, cl) {
			rule.apply(&v)
			break
		}
	}
	return v
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// #endregion apply
