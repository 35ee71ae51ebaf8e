// Package analyze runs sentiment classification and summarization of the
// stored review set through an external chat-completions model.
package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/ablackman/reviewpulse/internal/llm"
	"github.com/ablackman/reviewpulse/internal/review"
)

const classifySystemPrompt = "You are a sentiment analysis expert. " +
	"Classify the sentiment of product reviews as positive, neutral, or negative. " +
	"Respond with ONLY one word: positive, neutral, or negative."

// Classifier maps one review text to a sentiment label.
type Classifier struct {
	Client llm.Client
	Model  string
}

// Classify asks the model for a single-word label. A reply outside the
// valid label set falls back to neutral; only transport or response
// failures surface as errors.
func (c *Classifier) Classify(ctx context.Context, text string) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: classifySystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Review: \"%s\"\n\nSentiment:", text)},
	}

	content, _, err := c.Client.Complete(ctx, c.Model, messages)
	if err != nil {
		return "", err
	}

	label := strings.ToLower(strings.TrimSpace(content))
	if !review.ValidSentiment(label) {
		return review.SentimentNeutral, nil
	}
	return label, nil
}
