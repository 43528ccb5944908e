package handlers

import (
	"context"
	"time"

	"admissions-engine/internal/models"
	"admissions-engine/internal/services/ses"
)

// The database repositories satisfy these; tests use in-memory fakes.

type ProfileStore interface {
	UpsertUser(ctx context.Context, id, email, name string) error
	GetByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
	Upsert(ctx context.Context, p *models.StudentProfile) error
}

type UniversityReader interface {
	GetByID(ctx context.Context, id string) (*models.University, error)
}

type CatalogStore interface {
	BulkUpsert(ctx context.Context, universities []*models.University) (*models.BulkUpsertResult, error)
}

type FitScoreStore interface {
	Upsert(ctx context.Context, userID, universityID string, result *models.FitScoreResult) (*models.FitScore, error)
	ListByUser(ctx context.Context, userID string) ([]*models.FitScore, error)
}

type ChecklistStore interface {
	Exists(ctx context.Context, userID, universityID string) (bool, error)
	CreateWithItems(ctx context.Context, checklist *models.Checklist) error
	ListByUser(ctx context.Context, userID string) ([]models.ChecklistWithProgress, error)
	AddItem(ctx context.Context, userID, checklistID string, item *models.ChecklistItem) error
	UpdateItem(ctx context.Context, userID, itemID string, req *models.UpdateItemRequest) (*models.ChecklistItem, error)
	DeleteItem(ctx context.Context, userID, itemID string) error
}

type UpcomingItemStore interface {
	UpcomingItems(ctx context.Context, from, to time.Time) ([]models.UpcomingItem, error)
}

// ObjectStore fetches and archives catalog uploads.
type ObjectStore interface {
	DownloadFile(ctx context.Context, bucket, key string) (string, error)
	ArchiveFile(ctx context.Context, bucket, key string) (string, error)
}

// DigestSender delivers reminder emails.
type DigestSender interface {
	SendDeadlineDigest(ctx context.Context, params ses.DigestParams) (*ses.SendEmailResult, error)
}

// Pinger checks a dependency is reachable.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}
