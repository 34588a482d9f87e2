package review

import (
	"context"
	"sync"

	"bandcheck/internal/feedback"
	"bandcheck/pkg/platform/sentinel"
)

// InMemoryReportStore keeps one report per user in process memory. Suitable
// for development and tests.
type InMemoryReportStore struct {
	mu      sync.RWMutex
	reports map[string]feedback.Report
}

func NewInMemoryReportStore() *InMemoryReportStore {
	return &InMemoryReportStore{
		reports: make(map[string]feedback.Report),
	}
}

func (s *InMemoryReportStore) SaveReport(_ context.Context, userID string, rep feedback.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy the criteria slice so later mutations by the caller cannot
	// reach the stored report.
	stored := rep
	stored.Criteria = append([]feedback.CriterionScore(nil), rep.Criteria...)
	s.reports[userID] = stored
	return nil
}

func (s *InMemoryReportStore) GetReport(_ context.Context, userID string) (feedback.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rep, ok := s.reports[userID]
	if !ok {
		return feedback.Report{}, sentinel.ErrNotFound
	}
	out := rep
	out.Criteria = append([]feedback.CriterionScore(nil), rep.Criteria...)
	return out, nil
}
