package access

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "bandcheck/pkg/domain-errors"
	"bandcheck/pkg/testutil"
)

// =============================================================================
// Access Service Test Suite
// =============================================================================
// Justification for unit tests: the access service carries the quota/license
// precedence rules and the first-claim-wins binding decision, both of which
// need precise clock and concurrency control that end-to-end tests cannot
// provide.

type stubVerifier struct {
	mu    sync.Mutex
	uses  int
	err   error
	calls int
}

func (v *stubVerifier) Verify(_ context.Context, _ string) (Verification, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	if v.err != nil {
		return Verification{}, v.err
	}
	return Verification{Uses: v.uses}, nil
}

type AccessServiceSuite struct {
	suite.Suite
	store    *InMemoryStore
	verifier *stubVerifier
	service  *Service
	now      time.Time
}

func TestAccessServiceSuite(t *testing.T) {
	suite.Run(t, new(AccessServiceSuite))
}

func (s *AccessServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.verifier = &stubVerifier{}
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var err error
	s.service, err = NewService(s.store, s.verifier, WithClock(func() time.Time { return s.now }))
	s.Require().NoError(err)
}

func (s *AccessServiceSuite) TestCheckQuota_NewUserAllowed() {
	allowed, err := s.service.CheckQuota(context.Background(), "u1")
	s.Require().NoError(err)
	s.True(allowed)
}

func (s *AccessServiceSuite) TestCheckQuota_ExhaustedAfterFreeAllowance() {
	ctx := context.Background()
	for i := 0; i < FreeQuota; i++ {
		s.Require().NoError(s.service.RecordAnalysis(ctx, "u1"))
	}

	allowed, err := s.service.CheckQuota(ctx, "u1")
	s.Require().NoError(err)
	s.False(allowed)
}

func (s *AccessServiceSuite) TestCheckQuota_LicenseOverridesExhaustion() {
	ctx := context.Background()
	for i := 0; i < FreeQuota; i++ {
		s.Require().NoError(s.service.RecordAnalysis(ctx, "u1"))
	}

	_, err := s.service.Redeem(ctx, "u1", "KEY-1")
	s.Require().NoError(err)

	// The counter is unchanged; the license alone re-opens access.
	state, err := s.store.GetUser(ctx, "u1")
	s.Require().NoError(err)
	s.Equal(FreeQuota, state.EssaysAnalyzed)

	allowed, err := s.service.CheckQuota(ctx, "u1")
	s.Require().NoError(err)
	s.True(allowed)
}

func (s *AccessServiceSuite) TestCheckQuota_ExpiredLicenseFallsBackToCounter() {
	ctx := context.Background()
	for i := 0; i < FreeQuota; i++ {
		s.Require().NoError(s.service.RecordAnalysis(ctx, "u1"))
	}
	_, err := s.service.Redeem(ctx, "u1", "KEY-1")
	s.Require().NoError(err)

	s.now = s.now.Add(LicenseDuration + time.Hour)

	allowed, err := s.service.CheckQuota(ctx, "u1")
	s.Require().NoError(err)
	s.False(allowed)
}

func (s *AccessServiceSuite) TestRedeem_SetsThirtyDayExpiry() {
	result, err := s.service.Redeem(context.Background(), "u1", "KEY-1")
	s.Require().NoError(err)
	s.Equal(s.now.Add(LicenseDuration), result.ExpiresAt)
}

func (s *AccessServiceSuite) TestRedeem_FailsClosedOnVerifierError() {
	s.verifier.err = errors.New("upstream timeout")

	_, err := s.service.Redeem(context.Background(), "u1", "KEY-1")
	s.True(dErrors.Is(err, dErrors.CodeLicenseInvalid))
}

func (s *AccessServiceSuite) TestRedeem_RejectsUsedKey() {
	s.verifier.uses = 1

	_, err := s.service.Redeem(context.Background(), "u1", "KEY-1")
	s.True(dErrors.Is(err, dErrors.CodeLicenseInvalid))
}

func (s *AccessServiceSuite) TestRedeem_KeyNeverRebinds() {
	ctx := context.Background()
	_, err := s.service.Redeem(ctx, "u1", "KEY-1")
	s.Require().NoError(err)

	// The upstream verifier still reports the key fresh, but the local
	// binding is immutable for the life of the process.
	_, err = s.service.Redeem(ctx, "u2", "KEY-1")
	s.True(dErrors.Is(err, dErrors.CodeLicenseInvalid))
}

func (s *AccessServiceSuite) TestRedeem_IdempotentForBoundUser() {
	ctx := context.Background()
	_, err := s.service.Redeem(ctx, "u1", "KEY-1")
	s.Require().NoError(err)

	s.now = s.now.Add(24 * time.Hour)

	result, err := s.service.Redeem(ctx, "u1", "KEY-1")
	s.Require().NoError(err)
	s.Equal(s.now.Add(LicenseDuration), result.ExpiresAt)
}

func (s *AccessServiceSuite) TestRedeem_ConcurrentClaimHasOneWinner() {
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, user := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			_, errs[i] = s.service.Redeem(ctx, user, "KEY-RACE")
		}(i, user)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			s.True(dErrors.Is(err, dErrors.CodeLicenseInvalid))
		}
	}
	s.Equal(1, winners)
}

func (s *AccessServiceSuite) TestRecordAnalysis_ConcurrentIncrementsAreNotLost() {
	ctx := context.Background()
	const submissions = 50

	var wg sync.WaitGroup
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.service.RecordAnalysis(ctx, "u1")
		}()
	}
	wg.Wait()

	state, err := s.store.GetUser(ctx, "u1")
	s.Require().NoError(err)
	s.Equal(submissions, state.EssaysAnalyzed)
}

func TestStatusProjection(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store := NewInMemoryStore()
	service, err := NewService(store, &stubVerifier{}, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}

	testutil.Given(t, "a user with one analysis spent", func(t *testing.T) {
		if err := service.RecordAnalysis(ctx, "u1"); err != nil {
			t.Fatal(err)
		}

		testutil.Then(t, "status reports free with the remaining allowance", func(t *testing.T) {
			status, err := service.Status(ctx, "u1")
			if err != nil {
				t.Fatal(err)
			}
			if status.State != StateFree || status.Remaining != FreeQuota-1 {
				t.Fatalf("got %+v", status)
			}
		})
	})

	testutil.Given(t, "a user past the free allowance", func(t *testing.T) {
		for i := 0; i < FreeQuota; i++ {
			if err := service.RecordAnalysis(ctx, "u2"); err != nil {
				t.Fatal(err)
			}
		}

		testutil.Then(t, "status reports exhausted", func(t *testing.T) {
			status, err := service.Status(ctx, "u2")
			if err != nil {
				t.Fatal(err)
			}
			if status.State != StateExhausted {
				t.Fatalf("got %+v", status)
			}
		})
	})

	testutil.Given(t, "a licensed user", func(t *testing.T) {
		if _, err := service.Redeem(ctx, "u3", "KEY-3"); err != nil {
			t.Fatal(err)
		}

		testutil.Then(t, "status reports licensed with the expiry", func(t *testing.T) {
			status, err := service.Status(ctx, "u3")
			if err != nil {
				t.Fatal(err)
			}
			if status.State != StateLicensed || status.Expiry == nil {
				t.Fatalf("got %+v", status)
			}
			if !status.Expiry.Equal(now.Add(LicenseDuration)) {
				t.Fatalf("unexpected expiry %v", status.Expiry)
			}
		})
	})
}
