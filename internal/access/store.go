package access

import (
	"context"
	"time"
)

// Store persists per-user access records and license-key bindings. Stores are
// interface-driven to keep the domain logic testable and to allow swapping
// in-memory and Redis persistence without rewiring business code.
//
// Implementations must make each method atomic: counter increments may never
// be lost to interleaving, and ClaimLicense must adjudicate first-claim-wins
// under a lock (or equivalent) keyed by the license key itself so two users
// racing on one fresh key cannot both win.
type Store interface {
	// GetUser returns the record for userID, or the zero record if the user
	// has never been seen. Records are created lazily and never deleted.
	GetUser(ctx context.Context, userID string) (UserAccessState, error)

	// IncrementAnalyzed atomically adds one completed analysis to the user's
	// counter and returns the new total.
	IncrementAnalyzed(ctx context.Context, userID string) (int, error)

	// SetLicenseExpiry marks the user as licensed until expiry.
	SetLicenseExpiry(ctx context.Context, userID string, expiry time.Time) error

	// ClaimLicense binds key to userID if the key is unbound and returns the
	// owning user either way. A key, once bound, never rebinds.
	ClaimLicense(ctx context.Context, key, userID string) (string, error)
}
