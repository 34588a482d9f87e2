// Package access implements the per-user state machine that gates essay
// analysis: a free-usage counter combined with a single-use, user-bound
// license with expiry. All state is process-lifetime in-memory unless the
// Redis store is wired in; durability across restarts is explicitly not a
// goal of this core.
package access

import "time"

// FreeQuota is the number of analyses a user may run without a license.
const FreeQuota = 3

// LicenseDuration is how long a redeemed license stays active.
const LicenseDuration = 30 * 24 * time.Hour

// State classifies a user's current access level. An unexpired license wins
// over the counter whenever the two are evaluated together.
type State string

const (
	StateFree      State = "free"
	StateExhausted State = "exhausted"
	StateLicensed  State = "licensed"
)

// UserAccessState is the per-user record. EssaysAnalyzed is monotonically
// non-decreasing and increments exactly once per completed analysis; licensed
// users keep accumulating a count even though it never gates them while the
// license is active.
type UserAccessState struct {
	EssaysAnalyzed int
	LicenseExpiry  *time.Time
}

// stateAt projects the record onto a State for the given instant.
func (u UserAccessState) stateAt(now time.Time) State {
	if u.LicenseExpiry != nil && u.LicenseExpiry.After(now) {
		return StateLicensed
	}
	if u.EssaysAnalyzed < FreeQuota {
		return StateFree
	}
	return StateExhausted
}

// Status is the read-only projection served to user-facing status queries.
type Status struct {
	State State `json:"state"`
	// Remaining is the unspent free allowance; meaningful for StateFree.
	Remaining int `json:"remaining,omitempty"`
	// Expiry is set for StateLicensed.
	Expiry *time.Time `json:"expiry,omitempty"`
}

// ActivationResult reports a successful redemption.
type ActivationResult struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// Verification is the license verifier's answer for one key. Uses is the
// number of redemptions the upstream service has already recorded; only a
// fresh key (zero uses) is redeemable.
type Verification struct {
	Uses int
}
