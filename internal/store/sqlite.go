// Package store persists reviews in SQLite via database/sql.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ablackman/reviewpulse/internal/review"
)

const createReviewsTableSQL = `
CREATE TABLE IF NOT EXISTS reviews (
	id TEXT PRIMARY KEY,
	product_name TEXT NOT NULL,
	review_text TEXT NOT NULL,
	rating INTEGER NOT NULL,
	sentiment TEXT,
	analyzed INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
)`

var createReviewsIndexesSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_reviews_analyzed ON reviews(analyzed)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews(created_at)`,
}

const dropReviewsSQL = `DROP TABLE IF EXISTS reviews`

const insertReviewSQL = `
INSERT INTO reviews (
	id,
	product_name,
	review_text,
	rating,
	sentiment,
	analyzed,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?)`

const updateSentimentSQL = `UPDATE reviews SET sentiment = ?, analyzed = 1 WHERE id = ?`

// Store wraps a SQLite handle with review table operations.
type Store struct {
	db *sql.DB
}

// ListOptions controls List filtering and ordering.
type ListOptions struct {
	OnlyUnanalyzed bool
	Descending     bool
	Limit          int
}

// SentimentCounts aggregates reviews per sentiment label.
type SentimentCounts struct {
	Total      int `json:"total"`
	Positive   int `json:"positive"`
	Neutral    int `json:"neutral"`
	Negative   int `json:"negative"`
	Unanalyzed int `json:"unanalyzed"`
}

// DailyCount is one per-day bucket for the trend chart.
type DailyCount struct {
	Date     string `json:"date"`
	Positive int    `json:"positive"`
	Neutral  int    `json:"neutral"`
	Negative int    `json:"negative"`
}

// Open opens the SQLite file and verifies the reviews schema, creating it
// when absent.
func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Reset drops and recreates the reviews table.
func Reset(dbPath string) error {
	s, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.db.Exec(dropReviewsSQL); err != nil {
		return fmt.Errorf("drop reviews table: %w", err)
	}
	return s.ensureSchema()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(createReviewsTableSQL); err != nil {
		return fmt.Errorf("create reviews table: %w", err)
	}
	missing, err := s.missingReviewColumns()
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf(
			"incompatible reviews schema, missing columns: %s; run `reviewpulse setup --db <path>`",
			strings.Join(missing, ", "),
		)
	}
	for _, stmt := range createReviewsIndexesSQL {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create reviews index: %w", err)
		}
	}
	return nil
}

func (s *Store) missingReviewColumns() ([]string, error) {
	required := []string{
		"id",
		"product_name",
		"review_text",
		"rating",
		"sentiment",
		"analyzed",
		"created_at",
	}

	rows, err := s.db.Query(`PRAGMA table_info(reviews)`)
	if err != nil {
		return nil, fmt.Errorf("inspect reviews schema: %w", err)
	}
	defer rows.Close()

	existing := map[string]struct{}{}
	for rows.Next() {
		var cid int
		var name string
		var colType string
		var notNull int
		var defaultValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, fmt.Errorf("scan reviews schema: %w", err)
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews schema: %w", err)
	}

	var missing []string
	for _, col := range required {
		if _, ok := existing[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing, nil
}

// InsertBatch inserts normalized reviews in one transaction, assigning ids
// and created_at. All-or-nothing: any failed row rolls back the batch.
func (s *Store) InsertBatch(ctx context.Context, reviews []review.Review) (int, error) {
	if len(reviews) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertReviewSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare insert review: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, r := range reviews {
		sentiment := sql.NullString{}
		if r.Sentiment != "" {
			sentiment = sql.NullString{String: r.Sentiment, Valid: true}
		}
		// Nudge created_at per row so insertion order survives ordering
		// by timestamp.
		createdAt := now.Add(time.Duration(i) * time.Microsecond)
		if _, err := stmt.ExecContext(
			ctx,
			uuid.NewString(),
			r.ProductName,
			r.ReviewText,
			r.Rating,
			sentiment,
			boolToInt(r.Analyzed),
			createdAt.Format(time.RFC3339Nano),
		); err != nil {
			return 0, fmt.Errorf("insert review: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reviews: %w", err)
	}
	return len(reviews), nil
}

// List returns reviews ordered by created_at, honoring opts.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]review.Review, error) {
	query := `SELECT id, product_name, review_text, rating, sentiment, analyzed, created_at FROM reviews`
	if opts.OnlyUnanalyzed {
		query += ` WHERE analyzed = 0`
	}
	query += ` ORDER BY created_at`
	if opts.Descending {
		query += ` DESC`
	} else {
		query += ` ASC`
	}
	args := []any{}
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var out []review.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return out, nil
}

// Get returns one review by id.
func (s *Store) Get(ctx context.Context, id string) (review.Review, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, product_name, review_text, rating, sentiment, analyzed, created_at FROM reviews WHERE id = ?`,
		id,
	)
	if err != nil {
		return review.Review{}, fmt.Errorf("query review: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return review.Review{}, fmt.Errorf("iterate review: %w", err)
		}
		return review.Review{}, fmt.Errorf("review %s not found", id)
	}
	return scanReview(rows)
}

// SetSentiment stores the label and flips analyzed for exactly one review.
func (s *Store) SetSentiment(ctx context.Context, id, label string) error {
	res, err := s.db.ExecContext(ctx, updateSentimentSQL, label, id)
	if err != nil {
		return fmt.Errorf("update review sentiment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review sentiment: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("review %s not found", id)
	}
	return nil
}

// CountUnanalyzed returns how many reviews still await classification.
func (s *Store) CountUnanalyzed(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE analyzed = 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unanalyzed reviews: %w", err)
	}
	return n, nil
}

// Counts aggregates reviews per sentiment label for the stats cards.
func (s *Store) Counts(ctx context.Context) (SentimentCounts, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sentiment, analyzed FROM reviews`)
	if err != nil {
		return SentimentCounts{}, fmt.Errorf("query review sentiments: %w", err)
	}
	defer rows.Close()

	var counts SentimentCounts
	for rows.Next() {
		var sentiment sql.NullString
		var analyzed int
		if err := rows.Scan(&sentiment, &analyzed); err != nil {
			return SentimentCounts{}, fmt.Errorf("scan review sentiment: %w", err)
		}
		counts.Total++
		if analyzed == 0 {
			counts.Unanalyzed++
		}
		switch sentiment.String {
		case review.SentimentPositive:
			counts.Positive++
		case review.SentimentNeutral:
			counts.Neutral++
		case review.SentimentNegative:
			counts.Negative++
		}
	}
	if err := rows.Err(); err != nil {
		return SentimentCounts{}, fmt.Errorf("iterate review sentiments: %w", err)
	}
	return counts, nil
}

// DailyCounts buckets analyzed sentiments per calendar day, oldest first.
func (s *Store) DailyCounts(ctx context.Context) ([]DailyCount, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT sentiment, created_at FROM reviews ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query review trend: %w", err)
	}
	defer rows.Close()

	var out []DailyCount
	index := map[string]int{}
	for rows.Next() {
		var sentiment sql.NullString
		var createdAt string
		if err := rows.Scan(&sentiment, &createdAt); err != nil {
			return nil, fmt.Errorf("scan review trend row: %w", err)
		}
		day := createdAt
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			day = ts.Format("2006-01-02")
		}
		i, ok := index[day]
		if !ok {
			out = append(out, DailyCount{Date: day})
			i = len(out) - 1
			index[day] = i
		}
		switch sentiment.String {
		case review.SentimentPositive:
			out[i].Positive++
		case review.SentimentNeutral:
			out[i].Neutral++
		case review.SentimentNegative:
			out[i].Negative++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review trend rows: %w", err)
	}
	return out, nil
}

func scanReview(rows *sql.Rows) (review.Review, error) {
	var r review.Review
	var sentiment sql.NullString
	var analyzed int
	var createdAt string
	if err := rows.Scan(&r.ID, &r.ProductName, &r.ReviewText, &r.Rating, &sentiment, &analyzed, &createdAt); err != nil {
		return review.Review{}, fmt.Errorf("scan review row: %w", err)
	}
	r.Sentiment = sentiment.String
	r.Analyzed = analyzed != 0
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		r.CreatedAt = ts
	}
	return r, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
