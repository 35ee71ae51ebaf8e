package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/ablackman/reviewpulse/internal/llm"
	"github.com/ablackman/reviewpulse/internal/review"
	"github.com/ablackman/reviewpulse/internal/store"
)

// EmptySummary is returned when there is nothing to summarize; no external
// call is made in that case.
const EmptySummary = "No reviews available to analyze."

const summarySystemPrompt = `You are a product review analyst. Analyze the provided reviews and create a comprehensive summary that includes:
1. Overall sentiment distribution
2. Top 3-5 positive themes (pros)
3. Top 3-5 negative themes (cons)
4. Key insights and recommendations

Format your response as a structured summary that's easy to read.`

const reviewBlockSeparator = "\n\n---\n\n"

// Summarizer builds one model request over the entire review set.
type Summarizer struct {
	Store  *store.Store
	Client llm.Client
	Model  string
}

// Summarize fetches all reviews newest-first and returns the model's reply
// verbatim. Unlike classification there is no per-item fallback: any call
// failure fails the whole operation.
func (s *Summarizer) Summarize(ctx context.Context) (string, error) {
	reviews, err := s.Store.List(ctx, store.ListOptions{Descending: true})
	if err != nil {
		return "", err
	}
	if len(reviews) == 0 {
		return EmptySummary, nil
	}

	messages := []llm.Message{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: "Analyze these product reviews and provide insights:\n\n" + reviewsText(reviews)},
	}

	content, _, err := s.Client.Complete(ctx, s.Model, messages)
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	return content, nil
}

func reviewsText(reviews []review.Review) string {
	blocks := make([]string, 0, len(reviews))
	for _, r := range reviews {
		sentiment := r.Sentiment
		if sentiment == "" {
			sentiment = "unknown"
		}
		blocks = append(blocks, fmt.Sprintf(
			"Product: %s\nRating: %d/5\nReview: %s\nSentiment: %s",
			r.ProductName, r.Rating, r.ReviewText, sentiment,
		))
	}
	return strings.Join(blocks, reviewBlockSeparator)
}
