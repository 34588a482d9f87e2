package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bandcheck/internal/feedback"
	"bandcheck/pkg/platform/sentinel"
)

// RedisReportStore keeps the current report per user as a JSON blob in
// Redis. SET replaces unconditionally, which gives replace-on-save for free.
type RedisReportStore struct {
	client *redis.Client
}

func NewRedisReportStore(client *redis.Client) *RedisReportStore {
	return &RedisReportStore{client: client}
}

func reportKey(userID string) string { return "review:report:" + userID }

func (s *RedisReportStore) SaveReport(ctx context.Context, userID string, rep feedback.Report) error {
	raw, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report for user %s: %w", userID, err)
	}
	if err := s.client.Set(ctx, reportKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisReportStore) GetReport(ctx context.Context, userID string) (feedback.Report, error) {
	raw, err := s.client.Get(ctx, reportKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return feedback.Report{}, sentinel.ErrNotFound
	}
	if err != nil {
		return feedback.Report{}, fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}

	var rep feedback.Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		return feedback.Report{}, fmt.Errorf("corrupt report for user %s: %w", userID, err)
	}
	return rep, nil
}
