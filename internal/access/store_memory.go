package access

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps access state for the lifetime of the process. It
// intentionally favors clarity over performance: one mutex covers both maps,
// which makes every Store operation, including license-claim adjudication,
// trivially atomic.
type InMemoryStore struct {
	mu       sync.Mutex
	users    map[string]*UserAccessState
	licenses map[string]string // license key -> bound user id
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:    make(map[string]*UserAccessState),
		licenses: make(map[string]string),
	}
}

func (s *InMemoryStore) GetUser(_ context.Context, userID string) (UserAccessState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		return *u, nil
	}
	return UserAccessState{}, nil
}

func (s *InMemoryStore) IncrementAnalyzed(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)
	u.EssaysAnalyzed++
	return u.EssaysAnalyzed, nil
}

func (s *InMemoryStore) SetLicenseExpiry(_ context.Context, userID string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)
	u.LicenseExpiry = &expiry
	return nil
}

func (s *InMemoryStore) ClaimLicense(_ context.Context, key, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.licenses[key]; ok {
		return owner, nil
	}
	s.licenses[key] = userID
	return userID, nil
}

// user returns the record for userID, creating it lazily. Callers must hold
// the mutex.
func (s *InMemoryStore) user(userID string) *UserAccessState {
	u, ok := s.users[userID]
	if !ok {
		u = &UserAccessState{}
		s.users[userID] = u
	}
	return u
}
