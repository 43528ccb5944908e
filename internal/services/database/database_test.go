package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/models"
)

var testDB *DB

func TestMain(m *testing.M) {
	// Repository tests need a real PostgreSQL instance
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		os.Exit(0)
	}

	var err error
	testDB, err = NewFromURL(url)
	if err != nil {
		panic("Failed to connect to test database: " + err.Error())
	}
	if err := testDB.Migrate(context.Background()); err != nil {
		panic("Failed to migrate test database: " + err.Error())
	}

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seed creates a fresh user and university so tests never collide.
func seed(t *testing.T) (string, *models.University) {
	t.Helper()
	ctx := context.Background()

	userID := "user-" + uuid.NewString()
	require.NoError(t, NewProfileRepository(testDB).UpsertUser(ctx, userID, userID+"@example.com", "Test Student"))

	regular := date(2030, time.January, 1)
	u := &models.University{
		ID:                 "uni-" + uuid.NewString(),
		NameEn:             "Test University",
		AvgGPA:             models.Float(3.8),
		AvgSAT25:           models.Int(1450),
		AvgSAT75:           models.Int(1550),
		MinIELTS:           models.Float(7),
		TotalCost:          models.Float(70000),
		AcceptsCommonApp:   true,
		SupplementalEssays: []models.EssayPrompt{{Topic: "Why us", WordCount: 250}},
		RegularDeadline:    &regular,
	}
	result, err := NewUniversityRepository(testDB).BulkUpsert(ctx, []*models.University{u})
	require.NoError(t, err)
	require.Equal(t, 1, result.UpsertedCount)

	return userID, u
}

func TestDatabaseConnection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, testDB.HealthCheck(ctx))
}

func TestUniversityRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	_, u := seed(t)
	repo := NewUniversityRepository(testDB)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.NameEn, got.NameEn)
	require.NotNil(t, got.AvgGPA)
	assert.InDelta(t, 3.8, *got.AvgGPA, 0.001)
	assert.Nil(t, got.MinGPA)
	assert.Equal(t, u.SupplementalEssays, got.SupplementalEssays)
	require.NotNil(t, got.RegularDeadline)
	assert.True(t, u.RegularDeadline.Equal(*got.RegularDeadline))

	u.NameEn = "Renamed University"
	_, err = repo.BulkUpsert(ctx, []*models.University{u})
	require.NoError(t, err)
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed University", got.NameEn)

	_, err = repo.GetByID(ctx, "missing-"+uuid.NewString())
	assert.ErrorIs(t, err, models.ErrUniversityNotFound)
}

func TestProfileRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	userID, _ := seed(t)
	repo := NewProfileRepository(testDB)

	_, err := repo.GetByUserID(ctx, userID)
	assert.ErrorIs(t, err, models.ErrProfileNotFound)

	profile := &models.StudentProfile{
		UserID:           userID,
		GPA:              models.Float(3.9),
		IELTSTotal:       models.Float(7.5),
		NeedFinancialAid: true,
		Extracurriculars: []models.Activity{{Name: "Robotics", Role: "Captain"}},
	}
	require.NoError(t, repo.Upsert(ctx, profile))
	assert.NotEmpty(t, profile.ID)

	got, err := repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got.GPA)
	assert.InDelta(t, 3.9, *got.GPA, 0.001)
	assert.Nil(t, got.SATTotal)
	assert.True(t, got.NeedFinancialAid)
	assert.Equal(t, profile.Extracurriculars, got.Extracurriculars)
	assert.Empty(t, got.Leadership)
}

func TestFitScoreRepository_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	userID, u := seed(t)
	repo := NewFitScoreRepository(testDB)

	first, err := repo.Upsert(ctx, userID, u.ID, &models.FitScoreResult{
		Score:    35,
		Category: models.FitCategoryReach,
		Explanation: models.FitExplanation{
			Strengths: []string{}, Improvements: []string{"low GPA"}, Recommendations: []string{},
		},
	})
	require.NoError(t, err)

	second, err := repo.Upsert(ctx, userID, u.ID, &models.FitScoreResult{
		Score:     82,
		Category:  models.FitCategorySafety,
		Breakdown: models.FitBreakdown{Academic: 80, Extracurricular: 78, Financial: 90},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := repo.Get(ctx, userID, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 82, got.Score)
	assert.Equal(t, models.FitCategorySafety, got.Category)
	assert.Equal(t, 78, got.Breakdown.Extracurricular)

	scores, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, scores, 1)
}

func TestChecklistRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	userID, u := seed(t)
	repo := NewChecklistRepository(testDB)

	exists, err := repo.Exists(ctx, userID, u.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	due := date(2029, time.December, 2)
	checklist := &models.Checklist{
		UserID:       userID,
		UniversityID: u.ID,
		BaseDeadline: date(2030, time.January, 1),
		Items: []models.ChecklistItem{
			{Title: "Request transcript", Category: models.CategoryDocuments, Order: 1, Deadline: &due},
			{Title: "Wait for decision", Category: models.CategoryPostSubmission, Order: 2},
		},
	}
	require.NoError(t, repo.CreateWithItems(ctx, checklist))
	assert.NotEmpty(t, checklist.ID)
	assert.Equal(t, models.ItemStatusPending, checklist.Items[0].Status)

	duplicate := &models.Checklist{UserID: userID, UniversityID: u.ID, BaseDeadline: checklist.BaseDeadline}
	assert.ErrorIs(t, repo.CreateWithItems(ctx, duplicate), models.ErrChecklistExists)

	custom := &models.ChecklistItem{
		Title:    "Visit campus",
		Category: models.CategoryApplication,
		Status:   models.ItemStatusPending,
		Order:    models.CustomItemOrder,
		IsCustom: true,
	}
	require.NoError(t, repo.AddItem(ctx, userID, checklist.ID, custom))
	assert.ErrorIs(t, repo.AddItem(ctx, "someone-else", checklist.ID, &models.ChecklistItem{
		Title: "x", Category: models.CategoryEssays, Status: models.ItemStatusPending,
	}), models.ErrChecklistNotFound)

	completed := models.ItemStatusCompleted
	updated, err := repo.UpdateItem(ctx, userID, checklist.Items[0].ID, &models.UpdateItemRequest{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusCompleted, updated.Status)
	require.NotNil(t, updated.Deadline)

	lists, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "Test University", lists[0].UniversityName)
	assert.Equal(t, 3, lists[0].TotalItems)
	assert.Equal(t, 1, lists[0].CompletedItems)
	assert.Equal(t, 33, lists[0].Progress)
	assert.Equal(t, "Visit campus", lists[0].Items[2].Title)

	require.NoError(t, repo.DeleteItem(ctx, userID, custom.ID))
	assert.ErrorIs(t, repo.DeleteItem(ctx, userID, custom.ID), models.ErrChecklistItemNotFound)

	_, err = repo.UpdateItem(ctx, "someone-else", checklist.Items[1].ID, &models.UpdateItemRequest{ClearDeadline: true})
	assert.ErrorIs(t, err, models.ErrChecklistItemNotFound)
}

func TestChecklistRepository_UpcomingItems(t *testing.T) {
	ctx := context.Background()
	userID, u := seed(t)
	repo := NewChecklistRepository(testDB)

	soon := date(2031, time.March, 3)
	later := date(2031, time.June, 1)
	done := date(2031, time.March, 2)
	require.NoError(t, repo.CreateWithItems(ctx, &models.Checklist{
		UserID:       userID,
		UniversityID: u.ID,
		BaseDeadline: date(2031, time.June, 30),
		Items: []models.ChecklistItem{
			{Title: "Soon", Category: models.CategoryDocuments, Order: 1, Deadline: &soon},
			{Title: "Later", Category: models.CategoryDocuments, Order: 2, Deadline: &later},
			{Title: "Done", Category: models.CategoryDocuments, Order: 3, Deadline: &done, Status: models.ItemStatusCompleted},
		},
	}))

	items, err := repo.UpcomingItems(ctx, date(2031, time.March, 1), date(2031, time.March, 8))
	require.NoError(t, err)

	var mine []models.UpcomingItem
	for _, item := range items {
		if item.UserID == userID {
			mine = append(mine, item)
		}
	}
	require.Len(t, mine, 1)
	assert.Equal(t, "Soon", mine[0].Title)
	assert.Equal(t, userID+"@example.com", mine[0].UserEmail)
	assert.Equal(t, "Test University", mine[0].UniversityName)
}
