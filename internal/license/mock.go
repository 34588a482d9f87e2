package license

import (
	"context"
	"time"

	"bandcheck/internal/access"
)

// MockVerifier is a deterministic stand-in for the verification collaborator
// used when no verifier endpoint is configured. The configurable latency
// mimics real-world calls.
type MockVerifier struct {
	Latency time.Duration
	Uses    int
	Err     error
}

func (m MockVerifier) Verify(_ context.Context, _ string) (access.Verification, error) {
	time.Sleep(m.Latency)
	if m.Err != nil {
		return access.Verification{}, m.Err
	}
	return access.Verification{Uses: m.Uses}, nil
}
