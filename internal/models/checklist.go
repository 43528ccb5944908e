// Package models defines the data structures for the admissions engine.
package models

import (
	"math"
	"time"
)

// ChecklistItemCategory is the application phase a task belongs to.
type ChecklistItemCategory string

const (
	CategoryDocuments      ChecklistItemCategory = "DOCUMENTS"
	CategoryEssays         ChecklistItemCategory = "ESSAYS"
	CategoryApplication    ChecklistItemCategory = "APPLICATION"
	CategoryFinancialAid   ChecklistItemCategory = "FINANCIAL_AID"
	CategoryPostSubmission ChecklistItemCategory = "POST_SUBMISSION"
)

// ValidChecklistCategories returns the phases in the order they are planned.
func ValidChecklistCategories() []ChecklistItemCategory {
	return []ChecklistItemCategory{
		CategoryDocuments,
		CategoryEssays,
		CategoryApplication,
		CategoryFinancialAid,
		CategoryPostSubmission,
	}
}

// IsValid checks if the category is a known phase.
func (c ChecklistItemCategory) IsValid() bool {
	for _, valid := range ValidChecklistCategories() {
		if c == valid {
			return true
		}
	}
	return false
}

// ChecklistItemStatus tracks the progress of a persisted checklist item.
type ChecklistItemStatus string

const (
	ItemStatusPending    ChecklistItemStatus = "PENDING"
	ItemStatusInProgress ChecklistItemStatus = "IN_PROGRESS"
	ItemStatusCompleted  ChecklistItemStatus = "COMPLETED"
)

// IsValid checks if the status is known.
func (s ChecklistItemStatus) IsValid() bool {
	switch s {
	case ItemStatusPending, ItemStatusInProgress, ItemStatusCompleted:
		return true
	}
	return false
}

// CustomItemOrder places user-added items after every generated one.
const CustomItemOrder = 999

// ChecklistItemTemplate is one planned, not yet scheduled task.
type ChecklistItemTemplate struct {
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Category    ChecklistItemCategory `json:"category"`
	Order       int                   `json:"order"`
	// DeadlineOffset is the number of days before the base deadline. Nil means
	// the task has no date of its own.
	DeadlineOffset *int `json:"deadline_offset,omitempty"`
}

// Checklist is a user's application plan for one university.
type Checklist struct {
	ID           string          `json:"id" db:"id"`
	UserID       string          `json:"user_id" db:"user_id"`
	UniversityID string          `json:"university_id" db:"university_id"`
	BaseDeadline time.Time       `json:"base_deadline" db:"base_deadline"`
	Items        []ChecklistItem `json:"items"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// ChecklistItem is a persisted, user-editable task.
type ChecklistItem struct {
	ID          string                `json:"id" db:"id"`
	ChecklistID string                `json:"checklist_id" db:"checklist_id"`
	Title       string                `json:"title" db:"title"`
	Description string                `json:"description,omitempty" db:"description"`
	Category    ChecklistItemCategory `json:"category" db:"category"`
	Status      ChecklistItemStatus   `json:"status" db:"status"`
	Order       int                   `json:"order" db:"item_order"`
	Deadline    *time.Time            `json:"deadline,omitempty" db:"deadline"`
	IsCustom    bool                  `json:"is_custom" db:"is_custom"`
	CreatedAt   time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at" db:"updated_at"`
}

// ChecklistWithProgress decorates a checklist with completion counters.
type ChecklistWithProgress struct {
	Checklist
	UniversityName string `json:"university_name,omitempty"`
	Progress       int    `json:"progress"`
	CompletedItems int    `json:"completed_items"`
	TotalItems     int    `json:"total_items"`
}

// WithProgress computes the rounded completion percentage of a checklist.
func (c *Checklist) WithProgress() ChecklistWithProgress {
	completed := 0
	for _, item := range c.Items {
		if item.Status == ItemStatusCompleted {
			completed++
		}
	}

	progress := 0
	if len(c.Items) > 0 {
		progress = int(math.Round(float64(completed) / float64(len(c.Items)) * 100))
	}

	return ChecklistWithProgress{
		Checklist:      *c,
		Progress:       progress,
		CompletedItems: completed,
		TotalItems:     len(c.Items),
	}
}

// CreateChecklistRequest is the body of a checklist creation request.
type CreateChecklistRequest struct {
	UniversityID string `json:"universityId" validate:"required"`
}

// CustomItemRequest adds a user-defined task to an existing checklist.
type CustomItemRequest struct {
	Title       string                `json:"title" validate:"required,min=1,max=200"`
	Description string                `json:"description,omitempty" validate:"max=2000"`
	Category    ChecklistItemCategory `json:"category" validate:"required,checklist_category"`
	Deadline    *time.Time            `json:"deadline,omitempty"`
}

// UpdateItemRequest patches a checklist item. Nil fields are left unchanged.
// ClearDeadline removes the due date.
type UpdateItemRequest struct {
	Status        *ChecklistItemStatus `json:"status,omitempty" validate:"omitempty,item_status"`
	Deadline      *time.Time           `json:"deadline,omitempty"`
	ClearDeadline bool                 `json:"clear_deadline,omitempty"`
	Order         *int                 `json:"order,omitempty" validate:"omitempty,gte=0"`
}

// UpcomingItem is an open checklist item due soon, joined with its owner.
type UpcomingItem struct {
	ChecklistItem
	UserID         string `json:"user_id"`
	UserEmail      string `json:"user_email"`
	UniversityName string `json:"university_name"`
}
