package feedback

import (
	"regexp"
	"strings"
)

// NoOverallComment is the sentinel returned when every extraction strategy
// comes up empty.
const NoOverallComment = "No overall comment found."

// minOverallWords guards against accepting a bare "Overall:" label line with
// no content behind it.
const minOverallWords = 5

var (
	overallLabelRe  = regexp.MustCompile(`(?i)^overall(?: impression)?[:\-\s]*`)
	disclaimerRe    = regexp.MustCompile(`(?i)this essay would likely score[^\n]*`)
	coherenceParaRe = regexp.MustCompile(`(?is)coherence(?: and| &)? cohesion[:\-\s]*[\d.]+.*?\n\n(.*)`)
)

// overallStrategy is one way of locating the overall comment in raw text.
// Strategies return ("", false) when they yield nothing acceptable.
type overallStrategy func(raw string) (string, bool)

// overallStrategies is the ordered fallback chain: an explicit "Overall" line
// first, then the paragraph following the Coherence & Cohesion criterion.
var overallStrategies = []overallStrategy{
	overallLine,
	coherenceParagraph,
}

func extractOverallComment(raw string) string {
	for _, strategy := range overallStrategies {
		if comment, ok := strategy(raw); ok {
			return comment
		}
	}
	return NoOverallComment
}

// overallLine accepts the first line whose trimmed text begins with the word
// "overall", with the label and any band-prediction disclaimer stripped, as
// long as enough content remains.
func overallLine(raw string) (string, bool) {
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if !overallLabelRe.MatchString(trimmed) {
			continue
		}
		cleaned := strings.TrimSpace(overallLabelRe.ReplaceAllString(trimmed, ""))
		cleaned = stripDisclaimer(cleaned)
		if len(strings.Fields(cleaned)) >= minOverallWords {
			return cleaned, true
		}
	}
	return "", false
}

// coherenceParagraph falls back to the first paragraph that follows the
// Coherence & Cohesion criterion line.
func coherenceParagraph(raw string) (string, bool) {
	m := coherenceParaRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	paragraph := strings.SplitN(strings.TrimSpace(m[1]), "\n", 2)[0]
	cleaned := stripDisclaimer(paragraph)
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}

// stripDisclaimer removes the evaluator's standard band-prediction sentence,
// which the prompt asks it to omit but it sometimes emits anyway.
func stripDisclaimer(s string) string {
	return strings.TrimSpace(disclaimerRe.ReplaceAllString(s, ""))
}
