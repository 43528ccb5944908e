package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"admissions-engine/internal/models"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint violation.
const uniqueViolation = "23505"

// ChecklistRepository handles checklists and their items.
type ChecklistRepository struct {
	db *DB
}

// NewChecklistRepository creates a new checklist repository.
func NewChecklistRepository(db *DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

// Exists reports whether the user already has a checklist for the university.
func (r *ChecklistRepository) Exists(ctx context.Context, userID, universityID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM checklists WHERE user_id = $1 AND university_id = $2)`,
		userID, universityID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check checklist: %w", err)
	}
	return exists, nil
}

// CreateWithItems inserts a checklist and all of its items atomically. IDs and
// timestamps are filled in on the passed values. A concurrent duplicate yields
// models.ErrChecklistExists.
func (r *ChecklistRepository) CreateWithItems(ctx context.Context, checklist *models.Checklist) error {
	now := time.Now().UTC()
	checklist.ID = uuid.NewString()
	checklist.CreatedAt = now
	checklist.UpdatedAt = now

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO checklists (id, user_id, university_id, base_deadline, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)`,
			checklist.ID, checklist.UserID, checklist.UniversityID, checklist.BaseDeadline, now,
		)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i := range checklist.Items {
			item := &checklist.Items[i]
			item.ID = uuid.NewString()
			item.ChecklistID = checklist.ID
			if item.Status == "" {
				item.Status = models.ItemStatusPending
			}
			item.CreatedAt = now
			item.UpdatedAt = now

			batch.Queue(`
				INSERT INTO checklist_items (id, checklist_id, title, description, category, status, item_order, deadline, is_custom, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
				item.ID, item.ChecklistID, item.Title, item.Description, string(item.Category),
				string(item.Status), item.Order, item.Deadline, item.IsCustom, now,
			)
		}

		return tx.SendBatch(ctx, batch).Close()
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return models.ErrChecklistExists
	}
	if err != nil {
		return fmt.Errorf("failed to create checklist: %w", err)
	}

	return nil
}

// ListByUser returns the user's checklists, newest first, each with its items
// in order and its completion progress.
func (r *ChecklistRepository) ListByUser(ctx context.Context, userID string) ([]models.ChecklistWithProgress, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.university_id, c.base_deadline, c.created_at, c.updated_at, u.name_en
		FROM checklists c
		JOIN universities u ON u.id = c.university_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query checklists: %w", err)
	}

	var checklists []*models.Checklist
	names := make(map[string]string)
	index := make(map[string]*models.Checklist)
	for rows.Next() {
		var c models.Checklist
		var name string
		if err := rows.Scan(&c.ID, &c.UserID, &c.UniversityID, &c.BaseDeadline, &c.CreatedAt, &c.UpdatedAt, &name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan checklist: %w", err)
		}
		c.Items = []models.ChecklistItem{}
		checklists = append(checklists, &c)
		index[c.ID] = &c
		names[c.ID] = name
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checklists: %w", err)
	}

	if len(checklists) > 0 {
		ids := make([]string, 0, len(checklists))
		for _, c := range checklists {
			ids = append(ids, c.ID)
		}

		itemRows, err := r.db.QueryContext(ctx, `
			SELECT `+itemColumns+`
			FROM checklist_items
			WHERE checklist_id = ANY($1::uuid[])
			ORDER BY item_order, created_at`, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to query checklist items: %w", err)
		}
		defer itemRows.Close()

		for itemRows.Next() {
			item, err := scanItem(itemRows)
			if err != nil {
				return nil, fmt.Errorf("failed to scan checklist item: %w", err)
			}
			if c, ok := index[item.ChecklistID]; ok {
				c.Items = append(c.Items, *item)
			}
		}
		if err := itemRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read checklist items: %w", err)
		}
	}

	result := make([]models.ChecklistWithProgress, 0, len(checklists))
	for _, c := range checklists {
		p := c.WithProgress()
		p.UniversityName = names[c.ID]
		result = append(result, p)
	}
	return result, nil
}

const itemColumns = `id, checklist_id, title, description, category, status, item_order, deadline, is_custom, created_at, updated_at`

func scanItem(row pgx.Row) (*models.ChecklistItem, error) {
	var item models.ChecklistItem
	var category, status string
	err := row.Scan(
		&item.ID, &item.ChecklistID, &item.Title, &item.Description, &category, &status,
		&item.Order, &item.Deadline, &item.IsCustom, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Category = models.ChecklistItemCategory(category)
	item.Status = models.ChecklistItemStatus(status)
	return &item, nil
}

// AddItem appends a user-defined item to a checklist the user owns.
func (r *ChecklistRepository) AddItem(ctx context.Context, userID, checklistID string, item *models.ChecklistItem) error {
	now := time.Now().UTC()
	item.ID = uuid.NewString()
	item.ChecklistID = checklistID
	item.CreatedAt = now
	item.UpdatedAt = now

	affected, err := r.db.ExecContext(ctx, `
		INSERT INTO checklist_items (id, checklist_id, title, description, category, status, item_order, deadline, is_custom, created_at, updated_at)
		SELECT $1, c.id, $3, $4, $5, $6, $7, $8, $9, $10, $10
		FROM checklists c
		WHERE c.id = $2 AND c.user_id = $11`,
		item.ID, checklistID, item.Title, item.Description, string(item.Category),
		string(item.Status), item.Order, item.Deadline, item.IsCustom, now, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add checklist item: %w", err)
	}
	if affected == 0 {
		return models.ErrChecklistNotFound
	}
	return nil
}

// UpdateItem applies a partial update to an item the user owns and returns the result.
func (r *ChecklistRepository) UpdateItem(ctx context.Context, userID, itemID string, req *models.UpdateItemRequest) (*models.ChecklistItem, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if req.Status != nil {
		add("status", string(*req.Status))
	}
	switch {
	case req.ClearDeadline:
		sets = append(sets, "deadline = NULL")
	case req.Deadline != nil:
		add("deadline", *req.Deadline)
	}
	if req.Order != nil {
		add("item_order", *req.Order)
	}

	args = append(args, itemID, userID)
	query := fmt.Sprintf(`
		UPDATE checklist_items i
		SET %s
		FROM checklists c
		WHERE i.id = $%d AND c.id = i.checklist_id AND c.user_id = $%d
		RETURNING i.id, i.checklist_id, i.title, i.description, i.category, i.status, i.item_order,
			i.deadline, i.is_custom, i.created_at, i.updated_at`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	item, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrChecklistItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update checklist item: %w", err)
	}
	return item, nil
}

// DeleteItem removes an item the user owns.
func (r *ChecklistRepository) DeleteItem(ctx context.Context, userID, itemID string) error {
	affected, err := r.db.ExecContext(ctx, `
		DELETE FROM checklist_items i
		USING checklists c
		WHERE i.id = $1 AND c.id = i.checklist_id AND c.user_id = $2`,
		itemID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete checklist item: %w", err)
	}
	if affected == 0 {
		return models.ErrChecklistItemNotFound
	}
	return nil
}

// UpcomingItems returns open items due in [from, to], joined with their owner
// and university, ordered by user then deadline.
func (r *ChecklistRepository) UpcomingItems(ctx context.Context, from, to time.Time) ([]models.UpcomingItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.checklist_id, i.title, i.description, i.category, i.status, i.item_order,
			i.deadline, i.is_custom, i.created_at, i.updated_at,
			c.user_id, usr.email, u.name_en
		FROM checklist_items i
		JOIN checklists c ON c.id = i.checklist_id
		JOIN users usr ON usr.id = c.user_id
		JOIN universities u ON u.id = c.university_id
		WHERE i.status <> $1 AND i.deadline BETWEEN $2 AND $3
		ORDER BY c.user_id, i.deadline, i.item_order`,
		string(models.ItemStatusCompleted), from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming items: %w", err)
	}
	defer rows.Close()

	var items []models.UpcomingItem
	for rows.Next() {
		var up models.UpcomingItem
		var category, status string
		if err := rows.Scan(
			&up.ID, &up.ChecklistID, &up.Title, &up.Description, &category, &status, &up.Order,
			&up.Deadline, &up.IsCustom, &up.CreatedAt, &up.UpdatedAt,
			&up.UserID, &up.UserEmail, &up.UniversityName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan upcoming item: %w", err)
		}
		up.Category = models.ChecklistItemCategory(category)
		up.Status = models.ChecklistItemStatus(status)
		items = append(items, up)
	}

	return items, rows.Err()
}
