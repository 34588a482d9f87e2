// Package feedback extracts structured scoring data out of free-form
// evaluator text. The evaluator is a natural-language collaborator whose
// output drifts in format, so extraction degrades gracefully: anything it
// cannot match is simply absent from the report, never an error.
package feedback

// Criterion is one of the four fixed evaluation dimensions.
type Criterion string

const (
	CriterionTaskAchievement Criterion = "Task Achievement"
	CriterionVocabulary      Criterion = "Vocabulary"
	CriterionGrammar         Criterion = "Grammatical Range & Accuracy"
	CriterionCoherence       Criterion = "Coherence & Cohesion"
)

// Criteria lists the fixed labels in their canonical presentation order.
var Criteria = []Criterion{
	CriterionTaskAchievement,
	CriterionVocabulary,
	CriterionGrammar,
	CriterionCoherence,
}

// CriterionScore is one matched criterion line: the fixed label, the numeric
// band found immediately after it, and the single-line comment that follows.
type CriterionScore struct {
	Label   Criterion `json:"label"`
	Band    float64   `json:"band"`
	Comment string    `json:"comment"`
}

// Report is the structured result of parsing one evaluator response.
// Criteria holds at most one entry per fixed label, in the order each was
// first encountered in the source text. A report with zero matched criteria
// is still valid; its OverallScore is absent (HasOverallScore false).
type Report struct {
	Criteria        []CriterionScore `json:"criteria"`
	OverallComment  string           `json:"overall_comment"`
	OverallScore    float64          `json:"overall_score"`
	HasOverallScore bool             `json:"has_overall_score"`
	RawText         string           `json:"-"`
}

// Score returns the entry for label, if one was matched.
func (r Report) Score(label Criterion) (CriterionScore, bool) {
	for _, c := range r.Criteria {
		if c.Label == label {
			return c, true
		}
	}
	return CriterionScore{}, false
}

// Bands returns the matched band values in criteria order.
func (r Report) Bands() []float64 {
	bands := make([]float64, 0, len(r.Criteria))
	for _, c := range r.Criteria {
		bands = append(bands, c.Band)
	}
	return bands
}
