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

// ProfileRepository handles users and their student profiles.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// UpsertUser creates a user or refreshes its email and name.
func (r *ProfileRepository) UpsertUser(ctx context.Context, id, email, name string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name`,
		id, email, name,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetByUserID retrieves a user's profile. It returns models.ErrProfileNotFound
// when the user has not filled one in.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	if userID == "" {
		return nil, models.ErrEmptyUserID
	}

	query := `
		SELECT id, user_id, gpa, sat_total, sat_math, sat_ebrw, act_score, ielts_total, toefl_total,
			max_budget, need_financial_aid, extracurriculars, achievements, leadership, volunteer_work,
			created_at, updated_at
		FROM student_profiles
		WHERE user_id = $1`

	var p models.StudentProfile
	var id int64
	var activities, achievements, leadership, volunteer []byte

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&id, &p.UserID, &p.GPA, &p.SATTotal, &p.SATMath, &p.SATEBRW, &p.ACTScore, &p.IELTSTotal, &p.TOEFLTotal,
		&p.MaxBudget, &p.NeedFinancialAid, &activities, &achievements, &leadership, &volunteer,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	p.ID = fmt.Sprintf("%d", id)

	for _, col := range []struct {
		name string
		raw  []byte
		dst  interface{}
	}{
		{"extracurriculars", activities, &p.Extracurriculars},
		{"achievements", achievements, &p.Achievements},
		{"leadership", leadership, &p.Leadership},
		{"volunteer_work", volunteer, &p.VolunteerWork},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", col.name, err)
		}
	}

	return &p, nil
}

// Upsert stores a profile, replacing any previous one for the same user.
func (r *ProfileRepository) Upsert(ctx context.Context, p *models.StudentProfile) error {
	if p.UserID == "" {
		return models.ErrEmptyUserID
	}

	collections := make([]string, 4)
	for i, v := range []interface{}{
		nonNil(p.Extracurriculars),
		nonNil(p.Achievements),
		nonNil(p.Leadership),
		nonNil(p.VolunteerWork),
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal profile collections: %w", err)
		}
		collections[i] = string(b)
	}

	query := `
		INSERT INTO student_profiles (
			user_id, gpa, sat_total, sat_math, sat_ebrw, act_score, ielts_total, toefl_total,
			max_budget, need_financial_aid, extracurriculars, achievements, leadership, volunteer_work,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
		ON CONFLICT (user_id) DO UPDATE SET
			gpa = EXCLUDED.gpa,
			sat_total = EXCLUDED.sat_total,
			sat_math = EXCLUDED.sat_math,
			sat_ebrw = EXCLUDED.sat_ebrw,
			act_score = EXCLUDED.act_score,
			ielts_total = EXCLUDED.ielts_total,
			toefl_total = EXCLUDED.toefl_total,
			max_budget = EXCLUDED.max_budget,
			need_financial_aid = EXCLUDED.need_financial_aid,
			extracurriculars = EXCLUDED.extracurriculars,
			achievements = EXCLUDED.achievements,
			leadership = EXCLUDED.leadership,
			volunteer_work = EXCLUDED.volunteer_work,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		p.UserID, p.GPA, p.SATTotal, p.SATMath, p.SATEBRW, p.ACTScore, p.IELTSTotal, p.TOEFLTotal,
		p.MaxBudget, p.NeedFinancialAid, collections[0], collections[1], collections[2], collections[3],
		time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	p.ID = fmt.Sprintf("%d", id)
	return nil
}

// nonNil stores absent collections as empty JSON arrays rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
