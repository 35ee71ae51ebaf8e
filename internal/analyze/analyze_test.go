package analyze

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ablackman/reviewpulse/internal/llm"
	"github.com/ablackman/reviewpulse/internal/review"
	"github.com/ablackman/reviewpulse/internal/store"
)

type fakeResponse struct {
	content string
	err     error
}

type fakeClient struct {
	responses []fakeResponse
	calls     int
	requests  [][]llm.Message
}

func (f *fakeClient) Complete(ctx context.Context, model string, messages []llm.Message) (string, string, error) {
	f.requests = append(f.requests, messages)
	if f.calls >= len(f.responses) {
		return "", "", errors.New("unexpected call")
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp.content, "req-test", resp.err
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "reviews.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestClassifyValidLabel(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{{content: "  Positive \n"}}}
	c := &Classifier{Client: client, Model: "m"}

	label, err := c.Classify(context.Background(), "Great product")
	require.NoError(t, err)
	assert.Equal(t, review.SentimentPositive, label)

	require.Len(t, client.requests, 1)
	require.Len(t, client.requests[0], 2)
	assert.Contains(t, client.requests[0][0].Content, "sentiment analysis expert")
	assert.Equal(t, "Review: \"Great product\"\n\nSentiment:", client.requests[0][1].Content)
}

func TestClassifyInvalidLabelFallsBackToNeutral(t *testing.T) {
	for _, raw := range []string{"Positive!", "unsure", "I think it's positive", ".", "", "   "} {
		client := &fakeClient{responses: []fakeResponse{{content: raw}}}
		c := &Classifier{Client: client, Model: "m"}

		label, err := c.Classify(context.Background(), "meh")
		require.NoError(t, err)
		assert.Equalf(t, review.SentimentNeutral, label, "reply %q", raw)
	}
}

func TestClassifyEmptyReplyPersistsNeutralOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	}))
	defer server.Close()

	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.InsertBatch(ctx, []review.Review{
		{ProductName: "Widget", ReviewText: "no comment", Rating: 3},
	})
	require.NoError(t, err)

	runner := &Runner{
		Store: s,
		Classifier: &Classifier{
			Client: llm.NewHTTPClient("k", server.URL),
			Model:  "m",
		},
	}

	report, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Classified())

	reviews, err := s.List(ctx, store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, review.SentimentNeutral, reviews[0].Sentiment)
	assert.True(t, reviews[0].Analyzed)
}

func TestClassifyCallFailure(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{{err: errors.New("boom")}}}
	c := &Classifier{Client: client, Model: "m"}

	_, err := c.Classify(context.Background(), "text")
	assert.ErrorContains(t, err, "boom")
}

func TestRunnerEmptyBacklog(t *testing.T) {
	s := openTestStore(t)
	client := &fakeClient{}
	runner := &Runner{Store: s, Classifier: &Classifier{Client: client, Model: "m"}}

	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 0, client.calls)
}

func TestRunnerSkipsFailedItemAndContinues(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.InsertBatch(ctx, []review.Review{
		{ProductName: "Widget", ReviewText: "Great!", Rating: 5},
		{ProductName: "Gadget", ReviewText: "Bad.", Rating: 1},
	})
	require.NoError(t, err)

	client := &fakeClient{responses: []fakeResponse{
		{content: "positive"},
		{err: errors.New("malformed body")},
	}}
	runner := &Runner{Store: s, Classifier: &Classifier{Client: client, Model: "m"}}

	report, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Classified())
	require.Len(t, report.Items, 2)
	assert.Equal(t, ItemClassified, report.Items[0].Status)
	assert.Equal(t, review.SentimentPositive, report.Items[0].Sentiment)
	assert.Equal(t, ItemSkipped, report.Items[1].Status)
	assert.Contains(t, report.Items[1].Reason, "classify")

	reviews, err := s.List(ctx, store.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, review.SentimentPositive, reviews[0].Sentiment)
	assert.True(t, reviews[0].Analyzed)
	assert.Empty(t, reviews[1].Sentiment)
	assert.False(t, reviews[1].Analyzed)
}

func TestRunnerSecondRunIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.InsertBatch(ctx, []review.Review{
		{ProductName: "Widget", ReviewText: "Great!", Rating: 5},
	})
	require.NoError(t, err)

	client := &fakeClient{responses: []fakeResponse{{content: "negative"}}}
	runner := &Runner{Store: s, Classifier: &Classifier{Client: client, Model: "m"}}

	first, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Processed)

	second, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, 1, client.calls)
}

func TestRunnerBatchLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.InsertBatch(ctx, []review.Review{
		{ProductName: "A", ReviewText: "one", Rating: 3},
		{ProductName: "B", ReviewText: "two", Rating: 3},
		{ProductName: "C", ReviewText: "three", Rating: 3},
	})
	require.NoError(t, err)

	client := &fakeClient{responses: []fakeResponse{
		{content: "neutral"},
		{content: "neutral"},
	}}
	runner := &Runner{
		Store:      s,
		Classifier: &Classifier{Client: client, Model: "m"},
		BatchLimit: 2,
	}

	report, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)

	pending, err := s.CountUnanalyzed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestSummarizeEmptySetReturnsSentinel(t *testing.T) {
	s := openTestStore(t)
	client := &fakeClient{}
	sum := &Summarizer{Store: s, Client: client, Model: "m"}

	text, err := sum.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EmptySummary, text)
	assert.Equal(t, 0, client.calls)
}

func TestSummarizeIncludesEveryReview(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.InsertBatch(ctx, []review.Review{
		{ProductName: "Widget", ReviewText: "Love it", Rating: 5},
		{ProductName: "Gadget", ReviewText: "Broke fast", Rating: 1},
		{ProductName: "Gizmo", ReviewText: "It works", Rating: 3},
	})
	require.NoError(t, err)
	all, err := s.List(ctx, store.ListOptions{})
	require.NoError(t, err)
	require.NoError(t, s.SetSentiment(ctx, all[0].ID, review.SentimentPositive))
	require.NoError(t, s.SetSentiment(ctx, all[1].ID, review.SentimentNegative))

	client := &fakeClient{responses: []fakeResponse{{content: "Overall mixed feedback."}}}
	sum := &Summarizer{Store: s, Client: client, Model: "m"}

	text, err := sum.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Overall mixed feedback.", text)

	require.Len(t, client.requests, 1)
	payload := client.requests[0][1].Content
	assert.Contains(t, payload, "Product: Widget\nRating: 5/5\nReview: Love it\nSentiment: positive")
	assert.Contains(t, payload, "Product: Gadget\nRating: 1/5\nReview: Broke fast\nSentiment: negative")
	assert.Contains(t, payload, "Product: Gizmo\nRating: 3/5\nReview: It works\nSentiment: unknown")
	// Newest first: Gizmo block precedes Widget block.
	assert.Less(t, strings.Index(payload, "Product: Gizmo"), strings.Index(payload, "Product: Widget"))
}

func TestSummarizeCallFailureIsFatal(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.InsertBatch(ctx, []review.Review{
		{ProductName: "Widget", ReviewText: "ok", Rating: 4},
	})
	require.NoError(t, err)

	client := &fakeClient{responses: []fakeResponse{{err: errors.New("gateway down")}}}
	sum := &Summarizer{Store: s, Client: client, Model: "m"}

	_, err = sum.Summarize(ctx)
	assert.ErrorContains(t, err, "generate summary")
}
