package feedback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wellFormed mirrors the format the evaluator is prompted to produce.
const wellFormed = `Task Achievement: 7 - Good understanding but lacks detail.
Vocabulary: 8 - Rich vocabulary with only a few inaccuracies.
Grammatical Range & Accuracy: 7 - Some errors affect clarity.
Coherence & Cohesion: 8 - Well structured with logical flow.

Overall: The essay presents a clear position with mostly accurate language throughout.
`

func TestParse_WellFormed(t *testing.T) {
	report := Parse(wellFormed)

	require.Len(t, report.Criteria, 4)
	assert.Equal(t, []Criterion{
		CriterionTaskAchievement,
		CriterionVocabulary,
		CriterionGrammar,
		CriterionCoherence,
	}, labelsOf(report))

	ta, ok := report.Score(CriterionTaskAchievement)
	require.True(t, ok)
	assert.Equal(t, 7.0, ta.Band)
	assert.Equal(t, "Good understanding but lacks detail.", ta.Comment)

	require.True(t, report.HasOverallScore)
	assert.Equal(t, 7.5, report.OverallScore)
	assert.Equal(t, "The essay presents a clear position with mostly accurate language throughout.", report.OverallComment)
}

func TestParse_FormatDrift(t *testing.T) {
	// The extractor is exercised against a corpus of drifted outputs; each
	// entry is one drift class observed from the evaluator.
	tests := []struct {
		name      string
		raw       string
		wantBands map[Criterion]float64
	}{
		{
			name: "criteria out of order",
			raw: "Coherence & Cohesion: 6 - Logical but repetitive.\n" +
				"Task Achievement: 5 - Addresses only part of the task.\n",
			wantBands: map[Criterion]float64{
				CriterionCoherence:       6,
				CriterionTaskAchievement: 5,
			},
		},
		{
			name: "lowercase labels with and connective",
			raw: "task achievement: 6 - Adequate.\n" +
				"vocabulary: 7 - Varied word choice shown here.\n" +
				"grammatical range and accuracy: 6 - Frequent minor slips.\n" +
				"coherence and cohesion: 7 - Paragraphs link well enough.\n",
			wantBands: map[Criterion]float64{
				CriterionTaskAchievement: 6,
				CriterionVocabulary:      7,
				CriterionGrammar:         6,
				CriterionCoherence:       7,
			},
		},
		{
			name: "en dash separators and decimal band",
			raw:  "Vocabulary: 6.5 – Reasonable range, some imprecision.\n",
			wantBands: map[Criterion]float64{
				CriterionVocabulary: 6.5,
			},
		},
		{
			name: "digits embedded in comment do not shift the band",
			raw:  "Grammatical Range & Accuracy: 6 - At least 3 grammar errors in 2 paragraphs.\n",
			wantBands: map[Criterion]float64{
				CriterionGrammar: 6,
			},
		},
		{
			name: "final line without trailing newline",
			raw:  "Task Achievement: 7 - Solid response overall",
			wantBands: map[Criterion]float64{
				CriterionTaskAchievement: 7,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Parse(tt.raw)
			require.Len(t, report.Criteria, len(tt.wantBands))
			for label, want := range tt.wantBands {
				got, ok := report.Score(label)
				require.True(t, ok, "criterion %s not matched", label)
				assert.Equal(t, want, got.Band)
			}
		})
	}
}

func TestParse_FirstMatchOrderPreserved(t *testing.T) {
	raw := "Vocabulary: 8 - Strong lexical choices.\n" +
		"Task Achievement: 7 - Covers the prompt.\n"
	report := Parse(raw)
	require.Len(t, report.Criteria, 2)
	assert.Equal(t, CriterionVocabulary, report.Criteria[0].Label)
	assert.Equal(t, CriterionTaskAchievement, report.Criteria[1].Label)
}

func TestParse_CommentTruncatedAtLineBreak(t *testing.T) {
	raw := "Task Achievement: 7 - First line of the comment.\nSecond line that is not part of it.\n"
	report := Parse(raw)
	ta, ok := report.Score(CriterionTaskAchievement)
	require.True(t, ok)
	assert.Equal(t, "First line of the comment.", ta.Comment)
}

func TestParse_NoStructure(t *testing.T) {
	report := Parse("The model refused to evaluate this input for unrelated reasons.")

	assert.Empty(t, report.Criteria)
	assert.False(t, report.HasOverallScore)
	assert.Contains(t, report.Summary(), NoBandScores)
}

func TestParse_DuplicateCriterionLinesKeepFirst(t *testing.T) {
	raw := "Vocabulary: 8 - First occurrence wins.\n" +
		"Vocabulary: 5 - Should be ignored entirely.\n"
	report := Parse(raw)
	require.Len(t, report.Criteria, 1)
	assert.Equal(t, 8.0, report.Criteria[0].Band)
}

func TestSummary_WellFormed(t *testing.T) {
	report := Parse(wellFormed)
	summary := report.Summary()

	assert.True(t, strings.HasPrefix(summary, "Band Score Breakdown:"))
	assert.Contains(t, summary, "Task Achievement: 7")
	assert.Contains(t, summary, "Vocabulary: 8")
	assert.Contains(t, summary, "Overall Band Score: 7.5")
	assert.NotContains(t, summary, NoBandScores)
}

func labelsOf(r Report) []Criterion {
	labels := make([]Criterion, 0, len(r.Criteria))
	for _, c := range r.Criteria {
		labels = append(labels, c.Label)
	}
	return labels
}
