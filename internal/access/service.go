package access

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	dErrors "bandcheck/pkg/domain-errors"
)

// Verifier is the external license-verification collaborator. The gateway
// keeps the interface small so tests can stub quickly.
type Verifier interface {
	Verify(ctx context.Context, key string) (Verification, error)
}

// Service is the access-control state machine. Check/record/redeem/status
// all funnel through the Store so atomicity lives in one place.
type Service struct {
	store    Store
	verifier Verifier
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the service clock; tests use it to cross license
// expiry deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, verifier Verifier, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("access store is required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("license verifier is required")
	}

	svc := &Service{
		store:    store,
		verifier: verifier,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CheckQuota reports whether the user may run another analysis right now.
// An active license allows unconditionally; otherwise the free allowance
// gates.
func (s *Service) CheckQuota(ctx context.Context, userID string) (bool, error) {
	state, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load access state")
	}
	return state.stateAt(s.now()) != StateExhausted, nil
}

// RecordAnalysis counts one completed analysis. Licensed users accumulate a
// count too; it just never gates them while the license is active.
func (s *Service) RecordAnalysis(ctx context.Context, userID string) error {
	count, err := s.store.IncrementAnalyzed(ctx, userID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record analysis")
	}
	s.logger.InfoContext(ctx, "analysis recorded",
		"user_id", userID,
		"essays_analyzed", count,
	)
	return nil
}

// Redeem verifies key with the external collaborator and, when the key is
// fresh and unbound (or already bound to this same user), activates a license
// for LicenseDuration. Every failure path collapses into one generic
// license-invalid error: the caller learns nothing about why a key was
// refused.
func (s *Service) Redeem(ctx context.Context, userID, key string) (ActivationResult, error) {
	verification, err := s.verifier.Verify(ctx, key)
	if err != nil {
		// Fail closed: transport errors and timeouts read as not redeemable.
		s.logger.WarnContext(ctx, "license verification failed",
			"user_id", userID,
			"error", err.Error(),
		)
		return ActivationResult{}, errLicenseInvalid()
	}
	if verification.Uses != 0 {
		s.logger.InfoContext(ctx, "license already used upstream",
			"user_id", userID,
			"uses", verification.Uses,
		)
		return ActivationResult{}, errLicenseInvalid()
	}

	owner, err := s.store.ClaimLicense(ctx, key, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "license claim failed",
			"user_id", userID,
			"error", err.Error(),
		)
		return ActivationResult{}, errLicenseInvalid()
	}
	if owner != userID {
		s.logger.InfoContext(ctx, "license bound to another user",
			"user_id", userID,
		)
		return ActivationResult{}, errLicenseInvalid()
	}

	expiry := s.now().Add(LicenseDuration)
	if err := s.store.SetLicenseExpiry(ctx, userID, expiry); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist license expiry",
			"user_id", userID,
			"error", err.Error(),
		)
		return ActivationResult{}, errLicenseInvalid()
	}

	s.logger.InfoContext(ctx, "license activated",
		"user_id", userID,
		"expires_at", expiry,
	)
	return ActivationResult{ExpiresAt: expiry}, nil
}

// Status is a read-only projection of the user's current state.
func (s *Service) Status(ctx context.Context, userID string) (Status, error) {
	state, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return Status{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load access state")
	}

	switch projected := state.stateAt(s.now()); projected {
	case StateLicensed:
		return Status{State: projected, Expiry: state.LicenseExpiry}, nil
	case StateFree:
		return Status{State: projected, Remaining: FreeQuota - state.EssaysAnalyzed}, nil
	default:
		return Status{State: projected}, nil
	}
}

func errLicenseInvalid() error {
	return dErrors.New(dErrors.CodeLicenseInvalid, "invalid or already-used license key")
}
