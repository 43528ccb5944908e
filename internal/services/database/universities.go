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

// UniversityRepository handles university catalog operations.
type UniversityRepository struct {
	db *DB
}

// NewUniversityRepository creates a new university repository.
func NewUniversityRepository(db *DB) *UniversityRepository {
	return &UniversityRepository{db: db}
}

const universityColumns = `
	id, name_en, country, city, website,
	min_gpa, avg_gpa, min_sat, avg_sat_25, avg_sat_75, min_act, min_ielts, min_toefl,
	tuition_intl, total_cost,
	has_merit_scholarships, has_need_based, has_full_ride, fin_aid_percentage,
	accepts_common_app, accepts_coalition, has_own_system, own_system_link,
	recommendation_count, requires_portfolio, requires_statement, requires_interview, requires_css_profile,
	supplemental_essays, early_action_date, ed_deadline, regular_deadline,
	created_at, updated_at`

// GetByID retrieves a university. It returns models.ErrUniversityNotFound when
// no row matches.
func (r *UniversityRepository) GetByID(ctx context.Context, id string) (*models.University, error) {
	query := `SELECT ` + universityColumns + ` FROM universities WHERE id = $1`

	u, err := scanUniversity(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUniversityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get university: %w", err)
	}
	return u, nil
}

// List returns every university ordered by name.
func (r *UniversityRepository) List(ctx context.Context) ([]*models.University, error) {
	query := `SELECT ` + universityColumns + ` FROM universities ORDER BY name_en`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query universities: %w", err)
	}
	defer rows.Close()

	var universities []*models.University
	for rows.Next() {
		u, err := scanUniversity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan university: %w", err)
		}
		universities = append(universities, u)
	}

	return universities, rows.Err()
}

// BulkUpsert inserts or refreshes catalog rows in one transaction. A row that
// fails is counted and reported; the others are still written.
func (r *UniversityRepository) BulkUpsert(ctx context.Context, universities []*models.University) (*models.BulkUpsertResult, error) {
	result := &models.BulkUpsertResult{Errors: []string{}}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		for i, u := range universities {
			// A failed statement aborts the transaction, so each row gets a savepoint.
			sp := fmt.Sprintf("university_%d", i)
			if _, err := tx.Exec(ctx, "SAVEPOINT "+sp); err != nil {
				return err
			}

			if err := upsertUniversity(ctx, tx, u, now); err != nil {
				if _, rbErr := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+sp); rbErr != nil {
					return rbErr
				}
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("university %s: %v", u.ID, err))
				continue
			}
			result.UpsertedCount++
		}
		return nil
	})

	if err != nil {
		return result, fmt.Errorf("bulk upsert failed: %w", err)
	}

	return result, nil
}

func upsertUniversity(ctx context.Context, tx pgx.Tx, u *models.University, now time.Time) error {
	essays := u.SupplementalEssays
	if essays == nil {
		essays = []models.EssayPrompt{}
	}
	essaysJSON, err := json.Marshal(essays)
	if err != nil {
		return fmt.Errorf("failed to marshal essays: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO universities (`+universityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $33)
		ON CONFLICT (id) DO UPDATE SET
			name_en = EXCLUDED.name_en,
			country = EXCLUDED.country,
			city = EXCLUDED.city,
			website = EXCLUDED.website,
			min_gpa = EXCLUDED.min_gpa,
			avg_gpa = EXCLUDED.avg_gpa,
			min_sat = EXCLUDED.min_sat,
			avg_sat_25 = EXCLUDED.avg_sat_25,
			avg_sat_75 = EXCLUDED.avg_sat_75,
			min_act = EXCLUDED.min_act,
			min_ielts = EXCLUDED.min_ielts,
			min_toefl = EXCLUDED.min_toefl,
			tuition_intl = EXCLUDED.tuition_intl,
			total_cost = EXCLUDED.total_cost,
			has_merit_scholarships = EXCLUDED.has_merit_scholarships,
			has_need_based = EXCLUDED.has_need_based,
			has_full_ride = EXCLUDED.has_full_ride,
			fin_aid_percentage = EXCLUDED.fin_aid_percentage,
			accepts_common_app = EXCLUDED.accepts_common_app,
			accepts_coalition = EXCLUDED.accepts_coalition,
			has_own_system = EXCLUDED.has_own_system,
			own_system_link = EXCLUDED.own_system_link,
			recommendation_count = EXCLUDED.recommendation_count,
			requires_portfolio = EXCLUDED.requires_portfolio,
			requires_statement = EXCLUDED.requires_statement,
			requires_interview = EXCLUDED.requires_interview,
			requires_css_profile = EXCLUDED.requires_css_profile,
			supplemental_essays = EXCLUDED.supplemental_essays,
			early_action_date = EXCLUDED.early_action_date,
			ed_deadline = EXCLUDED.ed_deadline,
			regular_deadline = EXCLUDED.regular_deadline,
			updated_at = EXCLUDED.updated_at`,
		u.ID, u.NameEn, u.Country, u.City, u.Website,
		u.MinGPA, u.AvgGPA, u.MinSAT, u.AvgSAT25, u.AvgSAT75, u.MinACT, u.MinIELTS, u.MinTOEFL,
		u.TuitionIntl, u.TotalCost,
		u.HasMeritScholarships, u.HasNeedBased, u.HasFullRide, u.FinAidPercentage,
		u.AcceptsCommonApp, u.AcceptsCoalition, u.HasOwnSystem, u.OwnSystemLink,
		u.RecommendationCount, u.RequiresPortfolio, u.RequiresStatement, u.RequiresInterview, u.RequiresCSSProfile,
		string(essaysJSON), u.EarlyActionDate, u.EDDeadline, u.RegularDeadline,
		now,
	)
	return err
}

func scanUniversity(row pgx.Row) (*models.University, error) {
	var u models.University
	var essaysJSON []byte

	err := row.Scan(
		&u.ID, &u.NameEn, &u.Country, &u.City, &u.Website,
		&u.MinGPA, &u.AvgGPA, &u.MinSAT, &u.AvgSAT25, &u.AvgSAT75, &u.MinACT, &u.MinIELTS, &u.MinTOEFL,
		&u.TuitionIntl, &u.TotalCost,
		&u.HasMeritScholarships, &u.HasNeedBased, &u.HasFullRide, &u.FinAidPercentage,
		&u.AcceptsCommonApp, &u.AcceptsCoalition, &u.HasOwnSystem, &u.OwnSystemLink,
		&u.RecommendationCount, &u.RequiresPortfolio, &u.RequiresStatement, &u.RequiresInterview, &u.RequiresCSSProfile,
		&essaysJSON, &u.EarlyActionDate, &u.EDDeadline, &u.RegularDeadline,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(essaysJSON) > 0 {
		if err := json.Unmarshal(essaysJSON, &u.SupplementalEssays); err != nil {
			return nil, fmt.Errorf("failed to unmarshal essays: %w", err)
		}
	}

	return &u, nil
}
