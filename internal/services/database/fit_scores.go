package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"admissions-engine/internal/models"
)

// FitScoreRepository persists fit results, one per (user, university).
type FitScoreRepository struct {
	db *DB
}

// NewFitScoreRepository creates a new fit score repository.
func NewFitScoreRepository(db *DB) *FitScoreRepository {
	return &FitScoreRepository{db: db}
}

// Upsert stores a freshly computed result, overwriting any earlier score for
// the same user and university.
func (r *FitScoreRepository) Upsert(ctx context.Context, userID, universityID string, result *models.FitScoreResult) (*models.FitScore, error) {
	breakdown, err := json.Marshal(result.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal breakdown: %w", err)
	}
	explanation, err := json.Marshal(result.Explanation)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal explanation: %w", err)
	}

	query := `
		INSERT INTO fit_scores (user_id, university_id, score, category, breakdown, explanation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (user_id, university_id) DO UPDATE SET
			score = EXCLUDED.score,
			category = EXCLUDED.category,
			breakdown = EXCLUDED.breakdown,
			explanation = EXCLUDED.explanation,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`

	fs := &models.FitScore{
		UserID:       userID,
		UniversityID: universityID,
		Score:        result.Score,
		Category:     result.Category,
		Breakdown:    result.Breakdown,
		Explanation:  result.Explanation,
	}

	err = r.db.QueryRowContext(ctx, query,
		userID,
		universityID,
		result.Score,
		string(result.Category),
		string(breakdown),
		string(explanation),
		time.Now().UTC(),
	).Scan(&fs.ID, &fs.CreatedAt, &fs.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert fit score: %w", err)
	}

	return fs, nil
}

// Get retrieves the stored score for a user and university, or nil when none exists.
func (r *FitScoreRepository) Get(ctx context.Context, userID, universityID string) (*models.FitScore, error) {
	query := `
		SELECT id, user_id, university_id, score, category, breakdown, explanation, created_at, updated_at
		FROM fit_scores
		WHERE user_id = $1 AND university_id = $2`

	fs, err := scanFitScore(r.db.QueryRowContext(ctx, query, userID, universityID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fit score: %w", err)
	}
	return fs, nil
}

// ListByUser returns a user's stored scores, best first.
func (r *FitScoreRepository) ListByUser(ctx context.Context, userID string) ([]*models.FitScore, error) {
	query := `
		SELECT id, user_id, university_id, score, category, breakdown, explanation, created_at, updated_at
		FROM fit_scores
		WHERE user_id = $1
		ORDER BY score DESC, university_id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fit scores: %w", err)
	}
	defer rows.Close()

	var scores []*models.FitScore
	for rows.Next() {
		fs, err := scanFitScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fit score: %w", err)
		}
		scores = append(scores, fs)
	}

	return scores, rows.Err()
}

func scanFitScore(row pgx.Row) (*models.FitScore, error) {
	var fs models.FitScore
	var category string
	var breakdown, explanation []byte

	if err := row.Scan(
		&fs.ID, &fs.UserID, &fs.UniversityID, &fs.Score, &category,
		&breakdown, &explanation, &fs.CreatedAt, &fs.UpdatedAt,
	); err != nil {
		return nil, err
	}

	fs.Category = models.FitCategory(category)
	if err := json.Unmarshal(breakdown, &fs.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal breakdown: %w", err)
	}
	if err := json.Unmarshal(explanation, &fs.Explanation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal explanation: %w", err)
	}

	return &fs, nil
}
