package access

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bandcheck/pkg/platform/sentinel"
)

// RedisStore is the injectable persistence seam: the same Store contract
// backed by Redis so access state can outlive a single process when that is
// wanted. Counter increments use INCR and license claims use SETNX, so the
// atomicity guarantees match the in-memory store's.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func countKey(userID string) string { return "access:count:" + userID }
func expiryKey(userID string) string { return "access:expiry:" + userID }
func licenseKey(license string) string { return "access:license:" + license }

func (s *RedisStore) GetUser(ctx context.Context, userID string) (UserAccessState, error) {
	vals, err := s.client.MGet(ctx, countKey(userID), expiryKey(userID)).Result()
	if err != nil {
		return UserAccessState{}, fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}

	var state UserAccessState
	if raw, ok := vals[0].(string); ok {
		if _, err := fmt.Sscanf(raw, "%d", &state.EssaysAnalyzed); err != nil {
			return UserAccessState{}, fmt.Errorf("corrupt count for user %s: %w", userID, err)
		}
	}
	if raw, ok := vals[1].(string); ok {
		expiry, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return UserAccessState{}, fmt.Errorf("corrupt expiry for user %s: %w", userID, err)
		}
		state.LicenseExpiry = &expiry
	}
	return state, nil
}

func (s *RedisStore) IncrementAnalyzed(ctx context.Context, userID string) (int, error) {
	n, err := s.client.Incr(ctx, countKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return int(n), nil
}

func (s *RedisStore) SetLicenseExpiry(ctx context.Context, userID string, expiry time.Time) error {
	err := s.client.Set(ctx, expiryKey(userID), expiry.Format(time.RFC3339Nano), 0).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) ClaimLicense(ctx context.Context, key, userID string) (string, error) {
	// SETNX adjudicates the first claim; losers read the winner back.
	claimed, err := s.client.SetNX(ctx, licenseKey(key), userID, 0).Result()
	if err != nil {
		return "", fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	if claimed {
		return userID, nil
	}
	owner, err := s.client.Get(ctx, licenseKey(key)).Result()
	if err != nil {
		return "", fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return owner, nil
}
