package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/models"
)

const catalogCSV = `id,name_en,country,avg_gpa,total_cost,accepts_common_app,regular_deadline
mit,Massachusetts Institute of Technology,USA,3.9,"$80,000",true,2026-01-01
eth,ETH Zurich,Switzerland,,2000,false,2025-12-15
,Missing Id University,USA,,,,
`

func TestCatalogImportHandler(t *testing.T) {
	objects := &fakeObjects{files: map[string]string{
		"catalog/uploads/universities.csv": catalogCSV,
		"catalog/uploads/bad.csv":          "id,name_en\n,\n",
	}}
	universities := newFakeUniversities()
	h := NewCatalogImportHandler(objects, universities)
	ctx := context.Background()

	t.Run("imports valid rows and archives", func(t *testing.T) {
		result, err := h.Handle(ctx, s3PutEvent("catalog", "uploads/universities.csv"))
		require.NoError(t, err)

		assert.Equal(t, "Catalog imported successfully", result.Message)
		assert.Equal(t, 2, result.Upserted)
		assert.Equal(t, 1, result.Failed)
		assert.Len(t, result.Errors, 1)
		assert.Equal(t, "processed/uploads/universities.csv", result.ArchiveKey)
		assert.Equal(t, []string{"uploads/universities.csv"}, objects.archived)

		mit, err := universities.GetByID(ctx, "mit")
		require.NoError(t, err)
		assert.InDelta(t, 80000, *mit.TotalCost, 1e-9)
		assert.True(t, mit.AcceptsCommonApp)
		require.NotNil(t, mit.RegularDeadline)
		assert.Equal(t, "2026-01-01", mit.RegularDeadline.Format("2006-01-02"))
	})

	t.Run("no valid rows", func(t *testing.T) {
		result, err := h.Handle(ctx, s3PutEvent("catalog", "uploads/bad.csv"))
		require.NoError(t, err)
		assert.Equal(t, "No valid universities found in CSV", result.Message)
		assert.Zero(t, result.Upserted)
		assert.NotEmpty(t, result.Errors)
	})

	t.Run("skips non-CSV objects", func(t *testing.T) {
		result, err := h.Handle(ctx, s3PutEvent("catalog", "uploads/readme.txt"))
		require.NoError(t, err)
		assert.Equal(t, "Skipped non-CSV object", result.Message)
	})

	t.Run("download failure", func(t *testing.T) {
		_, err := h.Handle(ctx, s3PutEvent("catalog", "uploads/missing.csv"))
		assert.Error(t, err)
	})

	t.Run("empty event", func(t *testing.T) {
		result, err := h.Handle(ctx, events.S3Event{})
		require.NoError(t, err)
		assert.Equal(t, "No records to process", result.Message)
	})

	t.Run("url-encoded key", func(t *testing.T) {
		objects.files["catalog/uploads/fall 2025.csv"] = catalogCSV
		result, err := h.Handle(ctx, s3PutEvent("catalog", "uploads/fall+2025.csv"))
		require.NoError(t, err)
		assert.Equal(t, "uploads/fall 2025.csv", result.Key)
	})
}

func upcoming(email, title string, deadline time.Time) models.UpcomingItem {
	return models.UpcomingItem{
		ChecklistItem: models.ChecklistItem{
			Title:    title,
			Category: models.CategoryEssays,
			Status:   models.ItemStatusPending,
			Deadline: &deadline,
		},
		UserID:         email,
		UserEmail:      email,
		UniversityName: "MIT",
	}
}

func TestDeadlineReminderHandler(t *testing.T) {
	today := time.Date(2025, time.November, 20, 9, 30, 0, 0, time.UTC)
	store := &fakeUpcoming{items: []models.UpcomingItem{
		upcoming("a@example.com", "Write personal statement", today.AddDate(0, 0, 1)),
		upcoming("a@example.com", "Pay application fee", today.AddDate(0, 0, 5)),
		upcoming("b@example.com", "Submit application!", today.AddDate(0, 0, 3)),
	}}
	sender := &fakeSender{failTo: "b@example.com"}

	h := NewDeadlineReminderHandler(store, sender, 7, "https://app.example.test/checklists")
	h.now = func() time.Time { return today }

	result, err := h.Handle(context.Background(), events.CloudWatchEvent{DetailType: "Scheduled Event"})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.November, 20, 0, 0, 0, 0, time.UTC), store.from)
	assert.Equal(t, time.Date(2025, time.November, 27, 0, 0, 0, 0, time.UTC), store.to)

	assert.Equal(t, 3, result.Items)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "b@example.com")

	require.Len(t, sender.sent, 1)
	digest := sender.sent[0]
	assert.Equal(t, "a@example.com", digest.UserEmail)
	require.Len(t, digest.Items, 2)
	assert.Equal(t, 1, digest.Items[0].DaysLeft)
	assert.Equal(t, 5, digest.Items[1].DaysLeft)
	assert.Equal(t, "https://app.example.test/checklists", digest.DashboardURL)
}

func TestDeadlineReminderHandler_DefaultWindow(t *testing.T) {
	h := NewDeadlineReminderHandler(&fakeUpcoming{}, &fakeSender{}, 0, "")
	assert.Equal(t, 7, h.windowDays)

	result, err := h.Handle(context.Background(), events.CloudWatchEvent{})
	require.NoError(t, err)
	assert.Zero(t, result.Sent)
	assert.Equal(t, "Sent 0 of 0 reminder digests", result.Message)
}

func TestTriggerHandler(t *testing.T) {
	objects := &fakeObjects{files: map[string]string{"catalog/uploads/u.csv": catalogCSV}}
	sender := &fakeSender{}
	reminders := NewDeadlineReminderHandler(&fakeUpcoming{items: []models.UpcomingItem{
		upcoming("a@example.com", "Pay application fee", time.Now().UTC().AddDate(0, 0, 2)),
	}}, sender, 7, "")
	importer := NewCatalogImportHandler(objects, newFakeUniversities())
	h := NewTriggerHandler(reminders, importer, "catalog")
	ctx := context.Background()

	resp, err := h.Handle(ctx, apiRequest(http.MethodPost, `{"workflow_type":"reminders"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
	assert.Len(t, sender.sent, 1)

	resp, _ = h.Handle(ctx, apiRequest(http.MethodPost, `{"workflow_type":"catalog_import"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = h.Handle(ctx, apiRequest(http.MethodPost, `{"workflow_type":"catalog_import","key":"uploads/u.csv"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
	assert.Contains(t, resp.Body, `"upserted":2`)

	resp, _ = h.Handle(ctx, apiRequest(http.MethodPost, `{"workflow_type":"crawler"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = NewTriggerHandler(nil, nil, "").Handle(ctx, apiRequest(http.MethodPost, `{"workflow_type":"reminders"}`))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
