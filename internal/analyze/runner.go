package analyze

import (
	"context"

	"go.uber.org/zap"

	"github.com/ablackman/reviewpulse/internal/store"
)

const (
	ItemClassified = "classified"
	ItemSkipped    = "skipped"
)

// ItemResult is the per-review outcome of one analysis run.
type ItemResult struct {
	ReviewID  string `json:"review_id"`
	Status    string `json:"status"`
	Sentiment string `json:"sentiment,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Report covers one full analysis run. Processed counts the reviews
// selected for the run, not the subset that classified successfully.
type Report struct {
	Processed int          `json:"processed"`
	Items     []ItemResult `json:"items"`
}

// Classified counts items that ended with a persisted label.
func (r Report) Classified() int {
	n := 0
	for _, item := range r.Items {
		if item.Status == ItemClassified {
			n++
		}
	}
	return n
}

// Runner classifies every unanalyzed review, one at a time. A failed item
// is skipped and stays eligible for the next run.
type Runner struct {
	Store      *store.Store
	Classifier *Classifier
	Log        *zap.SugaredLogger

	// BatchLimit caps how many reviews one run selects; zero means no cap.
	BatchLimit int
}

// Run fetches the unanalyzed backlog oldest-first and classifies each
// review. Only the initial fetch can fail the run; per-item classifier or
// store errors are absorbed into skipped items.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	pending, err := r.Store.List(ctx, store.ListOptions{
		OnlyUnanalyzed: true,
		Limit:          r.BatchLimit,
	})
	if err != nil {
		return Report{}, err
	}
	if len(pending) == 0 {
		return Report{}, nil
	}

	r.log().Infow("analysis run started", "pending", len(pending))

	report := Report{Processed: len(pending)}
	for _, rev := range pending {
		label, err := r.Classifier.Classify(ctx, rev.ReviewText)
		if err != nil {
			r.log().Warnw("classification failed", "review_id", rev.ID, "error", err)
			report.Items = append(report.Items, ItemResult{
				ReviewID: rev.ID,
				Status:   ItemSkipped,
				Reason:   "classify: " + err.Error(),
			})
			continue
		}

		if err := r.Store.SetSentiment(ctx, rev.ID, label); err != nil {
			r.log().Warnw("sentiment update failed", "review_id", rev.ID, "error", err)
			report.Items = append(report.Items, ItemResult{
				ReviewID: rev.ID,
				Status:   ItemSkipped,
				Reason:   "update: " + err.Error(),
			})
			continue
		}

		report.Items = append(report.Items, ItemResult{
			ReviewID:  rev.ID,
			Status:    ItemClassified,
			Sentiment: label,
		})
	}

	r.log().Infow("analysis run finished",
		"processed", report.Processed,
		"classified", report.Classified(),
		"skipped", report.Processed-report.Classified(),
	)
	return report, nil
}

func (r *Runner) log() *zap.SugaredLogger {
	if r.Log != nil {
		return r.Log
	}
	return zap.NewNop().Sugar()
}
