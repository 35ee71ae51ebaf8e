package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ablackman/reviewpulse/internal/review"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "reviews.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertBatchAssignsIDsAndTimestamps(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	inserted, err := s.InsertBatch(ctx, []review.Review{
		{ProductName: "Widget", ReviewText: "Great!", Rating: 5},
		{ProductName: "Gadget", ReviewText: "Bad.", Rating: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	got, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Widget", got[0].ProductName)
	assert.Equal(t, "Gadget", got[1].ProductName)
	for _, r := range got {
		assert.NotEmpty(t, r.ID)
		assert.False(t, r.CreatedAt.IsZero())
		assert.False(t, r.Analyzed)
		assert.Empty(t, r.Sentiment)
	}
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestListFilterAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.InsertBatch(ctx, []review.Review{
		{ProductName: "A", Rating: 5},
		{ProductName: "B", Rating: 4},
		{ProductName: "C", Rating: 3},
	})
	require.NoError(t, err)

	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.NoError(t, s.SetSentiment(ctx, all[1].ID, review.SentimentPositive))

	pending, err := s.List(ctx, ListOptions{OnlyUnanalyzed: true})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "A", pending[0].ProductName)
	assert.Equal(t, "C", pending[1].ProductName)

	newest, err := s.List(ctx, ListOptions{Descending: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, newest, 1)
	assert.Equal(t, "C", newest[0].ProductName)
}

func TestSetSentiment(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.InsertBatch(ctx, []review.Review{{ProductName: "Widget", Rating: 5}})
	require.NoError(t, err)
	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)

	require.NoError(t, s.SetSentiment(ctx, all[0].ID, review.SentimentNegative))

	got, err := s.Get(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, review.SentimentNegative, got.Sentiment)
	assert.True(t, got.Analyzed)

	err = s.SetSentiment(ctx, "missing-id", review.SentimentPositive)
	assert.ErrorContains(t, err, "not found")
}

func TestCounts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.InsertBatch(ctx, []review.Review{
		{ProductName: "A", Rating: 5},
		{ProductName: "B", Rating: 2},
		{ProductName: "C", Rating: 3},
	})
	require.NoError(t, err)
	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.NoError(t, s.SetSentiment(ctx, all[0].ID, review.SentimentPositive))
	require.NoError(t, s.SetSentiment(ctx, all[1].ID, review.SentimentNegative))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, SentimentCounts{Total: 3, Positive: 1, Negative: 1, Unanalyzed: 1}, counts)

	pending, err := s.CountUnanalyzed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestDailyCountsBucketsByDay(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.InsertBatch(ctx, []review.Review{
		{ProductName: "A", Rating: 5},
		{ProductName: "B", Rating: 1},
	})
	require.NoError(t, err)
	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.NoError(t, s.SetSentiment(ctx, all[0].ID, review.SentimentPositive))
	require.NoError(t, s.SetSentiment(ctx, all[1].ID, review.SentimentNegative))

	days, err := s.DailyCounts(ctx)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 1, days[0].Positive)
	assert.Equal(t, 1, days[0].Negative)
	assert.Equal(t, 0, days[0].Neutral)
}

func TestResetDropsRows(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reviews.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	ctx := context.Background()
	_, err = s.InsertBatch(ctx, []review.Review{{ProductName: "A", Rating: 5}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.NoError(t, Reset(dbPath))

	s, err = Open(dbPath)
	require.NoError(t, err)
	defer s.Close()
	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, counts.Total)
}
