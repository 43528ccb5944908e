package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"admissions-engine/internal/models"
	"admissions-engine/internal/services/ses"
)

type fakeProfiles struct {
	users    map[string]string
	profiles map[string]*models.StudentProfile
	err      error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{users: map[string]string{}, profiles: map[string]*models.StudentProfile{}}
}

func (f *fakeProfiles) UpsertUser(_ context.Context, id, email, _ string) error {
	f.users[id] = email
	return nil
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID string) (*models.StudentProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfiles) Upsert(_ context.Context, p *models.StudentProfile) error {
	if _, ok := f.users[p.UserID]; !ok {
		return errors.New("foreign key violation")
	}
	p.ID = "1"
	f.profiles[p.UserID] = p
	return nil
}

type fakeUniversities struct {
	byID     map[string]*models.University
	upserted []*models.University
}

func newFakeUniversities(us ...*models.University) *fakeUniversities {
	f := &fakeUniversities{byID: map[string]*models.University{}}
	for _, u := range us {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUniversities) GetByID(_ context.Context, id string) (*models.University, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, models.ErrUniversityNotFound
	}
	return u, nil
}

func (f *fakeUniversities) BulkUpsert(_ context.Context, us []*models.University) (*models.BulkUpsertResult, error) {
	f.upserted = append(f.upserted, us...)
	for _, u := range us {
		f.byID[u.ID] = u
	}
	return &models.BulkUpsertResult{UpsertedCount: len(us), Errors: []string{}}, nil
}

type fakeScores struct {
	stored map[string]*models.FitScore
}

func (f *fakeScores) Upsert(_ context.Context, userID, universityID string, r *models.FitScoreResult) (*models.FitScore, error) {
	if f.stored == nil {
		f.stored = map[string]*models.FitScore{}
	}
	fs := &models.FitScore{
		ID:           int64(len(f.stored) + 1),
		UserID:       userID,
		UniversityID: universityID,
		Score:        r.Score,
		Category:     r.Category,
		Breakdown:    r.Breakdown,
		Explanation:  r.Explanation,
	}
	if prev, ok := f.stored[userID+"/"+universityID]; ok {
		fs.ID = prev.ID
	}
	f.stored[userID+"/"+universityID] = fs
	return fs, nil
}

func (f *fakeScores) ListByUser(_ context.Context, userID string) ([]*models.FitScore, error) {
	var out []*models.FitScore
	for _, fs := range f.stored {
		if fs.UserID == userID {
			out = append(out, fs)
		}
	}
	return out, nil
}

type fakeChecklists struct {
	checklists []*models.Checklist
	createErr  error
	seq        int
}

func (f *fakeChecklists) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeChecklists) Exists(_ context.Context, userID, universityID string) (bool, error) {
	for _, c := range f.checklists {
		if c.UserID == userID && c.UniversityID == universityID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChecklists) CreateWithItems(_ context.Context, c *models.Checklist) error {
	if f.createErr != nil {
		return f.createErr
	}
	c.ID = f.nextID("checklist")
	for i := range c.Items {
		c.Items[i].ID = f.nextID("item")
		c.Items[i].ChecklistID = c.ID
	}
	f.checklists = append(f.checklists, c)
	return nil
}

func (f *fakeChecklists) ListByUser(_ context.Context, userID string) ([]models.ChecklistWithProgress, error) {
	var out []models.ChecklistWithProgress
	for _, c := range f.checklists {
		if c.UserID == userID {
			out = append(out, c.WithProgress())
		}
	}
	return out, nil
}

func (f *fakeChecklists) find(userID, itemID string) (*models.Checklist, int) {
	for _, c := range f.checklists {
		if c.UserID != userID {
			continue
		}
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				return c, i
			}
		}
	}
	return nil, -1
}

func (f *fakeChecklists) AddItem(_ context.Context, userID, checklistID string, item *models.ChecklistItem) error {
	for _, c := range f.checklists {
		if c.ID == checklistID && c.UserID == userID {
			item.ID = f.nextID("item")
			item.ChecklistID = c.ID
			c.Items = append(c.Items, *item)
			return nil
		}
	}
	return models.ErrChecklistNotFound
}

func (f *fakeChecklists) UpdateItem(_ context.Context, userID, itemID string, req *models.UpdateItemRequest) (*models.ChecklistItem, error) {
	c, i := f.find(userID, itemID)
	if c == nil {
		return nil, models.ErrChecklistItemNotFound
	}
	item := &c.Items[i]
	if req.Status != nil {
		item.Status = *req.Status
	}
	if req.ClearDeadline {
		item.Deadline = nil
	} else if req.Deadline != nil {
		item.Deadline = req.Deadline
	}
	if req.Order != nil {
		item.Order = *req.Order
	}
	return item, nil
}

func (f *fakeChecklists) DeleteItem(_ context.Context, userID, itemID string) error {
	c, i := f.find(userID, itemID)
	if c == nil {
		return models.ErrChecklistItemNotFound
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return nil
}

type fakeUpcoming struct {
	items    []models.UpcomingItem
	from, to time.Time
}

func (f *fakeUpcoming) UpcomingItems(_ context.Context, from, to time.Time) ([]models.UpcomingItem, error) {
	f.from, f.to = from, to
	return f.items, nil
}

type fakeSender struct {
	sent   []ses.DigestParams
	failTo string
}

func (f *fakeSender) SendDeadlineDigest(_ context.Context, params ses.DigestParams) (*ses.SendEmailResult, error) {
	if params.UserEmail == f.failTo {
		return nil, errors.New("address not verified")
	}
	f.sent = append(f.sent, params)
	return &ses.SendEmailResult{MessageID: fmt.Sprintf("msg-%d", len(f.sent)), SentAt: time.Now()}, nil
}

type fakeObjects struct {
	files    map[string]string
	archived []string
}

func (f *fakeObjects) DownloadFile(_ context.Context, bucket, key string) (string, error) {
	content, ok := f.files[bucket+"/"+key]
	if !ok {
		return "", errors.New("NoSuchKey")
	}
	return content, nil
}

func (f *fakeObjects) ArchiveFile(_ context.Context, _, key string) (string, error) {
	f.archived = append(f.archived, key)
	return "processed/" + key, nil
}

func (f *fakeObjects) PresignUpload(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://catalog.example.test/" + key, nil
}

type fakePinger struct{ err error }

func (f fakePinger) HealthCheck(context.Context) error { return f.err }
