// Package review holds the canonical review entity and the normalization
// of loosely-structured upload rows into it.
package review

import (
	"strconv"
	"strings"
	"time"
)

const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"

	defaultProductName = "Unknown Product"
	defaultRating      = 5
)

// Review is a single product-review record. Sentiment stays empty until a
// classification attempt finished; Analyzed flips to true exactly once.
type Review struct {
	ID          string    `json:"id"`
	ProductName string    `json:"product_name"`
	ReviewText  string    `json:"review_text"`
	Rating      int       `json:"rating"`
	Sentiment   string    `json:"sentiment,omitempty"`
	Analyzed    bool      `json:"analyzed"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidSentiment reports whether label is one of the closed label set.
func ValidSentiment(label string) bool {
	switch label {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Normalize maps one upload row (header name -> raw value) into a Review
// ready for insertion. Every input maps to some output: malformed values
// are coerced to defaults, never rejected.
func Normalize(record map[string]string) Review {
	return Review{
		ProductName: firstPresent(record, defaultProductName, "product_name", "productName", "product"),
		ReviewText:  firstPresent(record, "", "review_text", "reviewText", "review", "text"),
		Rating:      parseRating(record["rating"]),
		Analyzed:    false,
	}
}

// NormalizeAll normalizes a batch of upload rows in order.
func NormalizeAll(records []map[string]string) []Review {
	out := make([]Review, 0, len(records))
	for _, record := range records {
		out = append(out, Normalize(record))
	}
	return out
}

func firstPresent(record map[string]string, fallback string, keys ...string) string {
	for _, key := range keys {
		if v, ok := record[key]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return fallback
}

func parseRating(raw string) int {
	rating, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || rating == 0 {
		return defaultRating
	}
	return rating
}
