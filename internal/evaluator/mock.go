package evaluator

import (
	"context"
	"time"
)

// MockEvaluator returns canned feedback text with a configurable latency to
// mimic real-world calls. It backs local development when no API key is
// configured.
type MockEvaluator struct {
	Latency time.Duration
	Text    string
	Err     error
}

// DefaultMockFeedback is well-formed output in the format the prompt asks
// for, so the full extraction and rendering path stays exercisable offline.
const DefaultMockFeedback = `Task Achievement: 7 - Addresses the task with mostly relevant support.
Vocabulary: 7 - Adequate range with occasional imprecise choices.
Grammatical Range & Accuracy: 6 - A mix of structures with several slips.
Coherence & Cohesion: 7 - Clear progression with workable linking.

Overall: A solid response whose arguments would land harder with sharper examples.
`

func (m MockEvaluator) Evaluate(_ context.Context, _ string) (string, error) {
	time.Sleep(m.Latency)
	if m.Err != nil {
		return "", m.Err
	}
	if m.Text != "" {
		return m.Text, nil
	}
	return DefaultMockFeedback, nil
}
