package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bandcheck/internal/feedback"
	"bandcheck/pkg/platform/sentinel"
)

func TestInMemoryReportStoreRoundtrip(t *testing.T) {
	store := NewInMemoryReportStore()
	ctx := context.Background()

	rep := feedback.Report{
		Criteria: []feedback.CriterionScore{
			{Label: feedback.CriterionTaskAchievement, Band: 7, Comment: "solid"},
		},
		OverallScore:    7,
		HasOverallScore: true,
	}
	require.NoError(t, store.SaveReport(ctx, "u1", rep))

	got, err := store.GetReport(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, rep, got)
}

func TestInMemoryReportStoreReplaces(t *testing.T) {
	store := NewInMemoryReportStore()
	ctx := context.Background()

	require.NoError(t, store.SaveReport(ctx, "u1", feedback.Report{OverallScore: 6, HasOverallScore: true}))
	require.NoError(t, store.SaveReport(ctx, "u1", feedback.Report{OverallScore: 8, HasOverallScore: true}))

	got, err := store.GetReport(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 8.0, got.OverallScore)
}

func TestInMemoryReportStoreNotFound(t *testing.T) {
	store := NewInMemoryReportStore()

	_, err := store.GetReport(context.Background(), "missing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryReportStoreIsolatesStoredSlice(t *testing.T) {
	store := NewInMemoryReportStore()
	ctx := context.Background()

	rep := feedback.Report{
		Criteria: []feedback.CriterionScore{
			{Label: feedback.CriterionVocabulary, Band: 8, Comment: "original"},
		},
	}
	require.NoError(t, store.SaveReport(ctx, "u1", rep))
	rep.Criteria[0].Comment = "mutated"

	got, err := store.GetReport(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "original", got.Criteria[0].Comment)
}
