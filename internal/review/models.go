package review

import "bandcheck/internal/feedback"

// AnalysisResult is what a completed analysis hands back to the caller.
type AnalysisResult struct {
	Report    feedback.Report
	Summary   string
	WordCount int
}
