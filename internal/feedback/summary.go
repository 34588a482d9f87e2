package feedback

import (
	"fmt"
	"strconv"
	"strings"
)

// NoBandScores is the summary sentinel for a report with zero matched
// criteria.
const NoBandScores = "Band scores not found."

// Summary renders the matched criteria and the rounded overall score as the
// text block sent back to the user alongside the structured report.
func (r Report) Summary() string {
	var b strings.Builder
	b.WriteString("Band Score Breakdown:\n")
	for _, c := range r.Criteria {
		fmt.Fprintf(&b, "\n%s: %s\n%s\n", c.Label, FormatBand(c.Band), c.Comment)
	}
	b.WriteString("\n")
	if r.HasOverallScore {
		fmt.Fprintf(&b, "Overall Band Score: %s", FormatBand(r.OverallScore))
	} else {
		b.WriteString(NoBandScores)
	}
	return b.String()
}

// FormatBand renders a band value without trailing zeros: 7 not 7.0, but 7.5
// stays 7.5.
func FormatBand(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
