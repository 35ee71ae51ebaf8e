// Package report computes aggregate metrics over the stored review set for
// the CLI report command.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ablackman/reviewpulse/internal/review"
	"github.com/ablackman/reviewpulse/internal/store"
)

const maxWorstProducts = 10

type Metrics struct {
	TotalReviews  int
	AnalyzedCount int
	PendingCount  int

	PositiveCount   int
	NeutralCount    int
	NegativeCount   int
	PositivePercent float64
	NeutralPercent  float64
	NegativePercent float64

	AverageRating float64

	Products      []ProductMetrics
	WorstProducts []ProductMetrics
}

type ProductMetrics struct {
	ProductName   string
	ReviewCount   int
	AverageRating float64
	NegativeCount int
	NegativeShare float64
}

// Build reads every review and aggregates dashboard-level metrics.
func Build(ctx context.Context, s *store.Store) (Metrics, error) {
	reviews, err := s.List(ctx, store.ListOptions{})
	if err != nil {
		return Metrics{}, err
	}

	type productState struct {
		Count     int
		RatingSum int
		Negative  int
	}
	products := map[string]*productState{}

	var m Metrics
	ratingSum := 0
	for _, r := range reviews {
		m.TotalReviews++
		ratingSum += r.Rating
		if r.Analyzed {
			m.AnalyzedCount++
		} else {
			m.PendingCount++
		}
		switch r.Sentiment {
		case review.SentimentPositive:
			m.PositiveCount++
		case review.SentimentNeutral:
			m.NeutralCount++
		case review.SentimentNegative:
			m.NegativeCount++
		}

		p := products[r.ProductName]
		if p == nil {
			p = &productState{}
			products[r.ProductName] = p
		}
		p.Count++
		p.RatingSum += r.Rating
		if r.Sentiment == review.SentimentNegative {
			p.Negative++
		}
	}

	if m.TotalReviews > 0 {
		m.AverageRating = float64(ratingSum) / float64(m.TotalReviews)
	}
	if m.AnalyzedCount > 0 {
		m.PositivePercent = 100.0 * float64(m.PositiveCount) / float64(m.AnalyzedCount)
		m.NeutralPercent = 100.0 * float64(m.NeutralCount) / float64(m.AnalyzedCount)
		m.NegativePercent = 100.0 * float64(m.NegativeCount) / float64(m.AnalyzedCount)
	}

	for name, p := range products {
		pm := ProductMetrics{
			ProductName:   name,
			ReviewCount:   p.Count,
			AverageRating: float64(p.RatingSum) / float64(p.Count),
			NegativeCount: p.Negative,
		}
		if p.Count > 0 {
			pm.NegativeShare = 100.0 * float64(p.Negative) / float64(p.Count)
		}
		m.Products = append(m.Products, pm)
	}
	sort.Slice(m.Products, func(i, j int) bool {
		if m.Products[i].ReviewCount == m.Products[j].ReviewCount {
			return m.Products[i].ProductName < m.Products[j].ProductName
		}
		return m.Products[i].ReviewCount > m.Products[j].ReviewCount
	})

	for _, p := range m.Products {
		if p.NegativeCount > 0 {
			m.WorstProducts = append(m.WorstProducts, p)
		}
	}
	sort.Slice(m.WorstProducts, func(i, j int) bool {
		if m.WorstProducts[i].NegativeShare == m.WorstProducts[j].NegativeShare {
			return m.WorstProducts[i].ProductName < m.WorstProducts[j].ProductName
		}
		return m.WorstProducts[i].NegativeShare > m.WorstProducts[j].NegativeShare
	})
	if len(m.WorstProducts) > maxWorstProducts {
		m.WorstProducts = m.WorstProducts[:maxWorstProducts]
	}

	return m, nil
}

// BuildMarkdown renders the metrics as a markdown report.
func BuildMarkdown(m Metrics) string {
	var b strings.Builder
	b.WriteString("# Review Report\n\n")
	b.WriteString("## Totals\n")
	b.WriteString(fmt.Sprintf("- total_reviews: `%d`\n", m.TotalReviews))
	b.WriteString(fmt.Sprintf("- analyzed: `%d`\n", m.AnalyzedCount))
	b.WriteString(fmt.Sprintf("- pending: `%d`\n", m.PendingCount))
	b.WriteString(fmt.Sprintf("- average_rating: `%.2f`\n\n", m.AverageRating))

	b.WriteString("## Sentiment Distribution\n")
	b.WriteString(fmt.Sprintf("- positive: `%d` (%.2f%%)\n", m.PositiveCount, m.PositivePercent))
	b.WriteString(fmt.Sprintf("- neutral: `%d` (%.2f%%)\n", m.NeutralCount, m.NeutralPercent))
	b.WriteString(fmt.Sprintf("- negative: `%d` (%.2f%%)\n\n", m.NegativeCount, m.NegativePercent))

	b.WriteString("## Products\n")
	if len(m.Products) == 0 {
		b.WriteString("- none\n")
	} else {
		b.WriteString("| product | reviews | avg_rating | negative | negative_share |\n")
		b.WriteString("| --- | ---: | ---: | ---: | ---: |\n")
		for _, p := range m.Products {
			b.WriteString(fmt.Sprintf("| %s | `%d` | `%.2f` | `%d` | `%.2f%%` |\n",
				p.ProductName, p.ReviewCount, p.AverageRating, p.NegativeCount, p.NegativeShare))
		}
	}
	b.WriteString("\n## Worst Products\n")
	if len(m.WorstProducts) == 0 {
		b.WriteString("- none\n")
	} else {
		for _, p := range m.WorstProducts {
			b.WriteString(fmt.Sprintf("- %s: `%d/%d` negative (%.2f%%)\n",
				p.ProductName, p.NegativeCount, p.ReviewCount, p.NegativeShare))
		}
	}
	return b.String()
}
