package review

import (
	"context"

	"bandcheck/internal/feedback"
)

// ReportStore persists the most recent report per user. Saving replaces any
// prior report; there is no history.
type ReportStore interface {
	// SaveReport stores rep as the user's current report.
	SaveReport(ctx context.Context, userID string, rep feedback.Report) error
	// GetReport returns the user's current report, or sentinel.ErrNotFound
	// when the user has never completed an analysis.
	GetReport(ctx context.Context, userID string) (feedback.Report, error)
}
