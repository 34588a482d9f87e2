package feedback

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"bandcheck/internal/band"
)

// criterionPatterns pairs each fixed label with the pattern that matches its
// line in evaluator output. The band capture sits immediately after the
// label, so digits embedded later in the comment cannot be mistaken for the
// band. The comment capture runs to the next line break; end of text counts
// as a terminator because the last criterion line often arrives without a
// trailing newline.
var criterionPatterns = map[Criterion]*regexp.Regexp{
	CriterionTaskAchievement: regexp.MustCompile(`(?i)task achievement[:\-\s]*([\d.]+)\s*[-–—]\s*(.*?)(?:\r?\n|$)`),
	CriterionVocabulary:      regexp.MustCompile(`(?i)vocabulary[:\-\s]*([\d.]+)\s*[-–—]\s*(.*?)(?:\r?\n|$)`),
	CriterionGrammar:         regexp.MustCompile(`(?i)grammatical range(?: and| &)? accuracy[:\-\s]*([\d.]+)\s*[-–—]\s*(.*?)(?:\r?\n|$)`),
	CriterionCoherence:       regexp.MustCompile(`(?i)coherence(?: and| &)? cohesion[:\-\s]*([\d.]+)\s*[-–—]\s*(.*?)(?:\r?\n|$)`),
}

// Parse turns raw evaluator text into a structured Report. It never fails:
// criteria that do not match are absent, and the overall comment falls back
// through the strategy chain in overall.go.
func Parse(raw string) Report {
	report := Report{RawText: raw}

	type located struct {
		score CriterionScore
		pos   int
	}
	var found []located

	for _, label := range Criteria {
		m := criterionPatterns[label].FindStringSubmatchIndex(raw)
		if m == nil {
			continue
		}
		bandValue, err := strconv.ParseFloat(raw[m[2]:m[3]], 64)
		if err != nil {
			continue
		}
		found = append(found, located{
			score: CriterionScore{
				Label:   label,
				Band:    bandValue,
				Comment: strings.TrimSpace(raw[m[4]:m[5]]),
			},
			pos: m[0],
		})
	}

	// Insertion order is first-match order in the source text.
	sort.Slice(found, func(i, j int) bool { return found[i].pos < found[j].pos })
	for _, f := range found {
		report.Criteria = append(report.Criteria, f.score)
	}

	if len(report.Criteria) > 0 {
		report.OverallScore = band.Overall(report.Bands())
		report.HasOverallScore = true
	}

	report.OverallComment = extractOverallComment(raw)
	return report
}
