package planner

import (
	"time"

	"admissions-engine/internal/models"
)

// ScheduledItem is a template with its concrete due date resolved.
type ScheduledItem struct {
	models.ChecklistItemTemplate
	Deadline *time.Time `json:"deadline,omitempty"`
}

// DeadlineFor returns the calendar date daysBefore days ahead of base. Only the
// date part of base is used and the result is midnight UTC, so month and year
// boundaries and daylight saving shifts never move the day.
func DeadlineFor(base time.Time, daysBefore int) time.Time {
	y, m, d := base.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysBefore)
}

// BaseDeadline picks the date a checklist is anchored to: regular decision,
// then early action, then early decision, then fallback.
func BaseDeadline(u *models.University, fallback time.Time) time.Time {
	for _, d := range []*time.Time{u.RegularDeadline, u.EarlyActionDate, u.EDDeadline} {
		if d != nil && !d.IsZero() {
			return DeadlineFor(*d, 0)
		}
	}
	return DeadlineFor(fallback, 0)
}

// Schedule resolves every template's offset against base. An offset of zero is
// due on base itself; templates without an offset stay undated.
func Schedule(templates []models.ChecklistItemTemplate, base time.Time) []ScheduledItem {
	scheduled := make([]ScheduledItem, len(templates))
	for i, t := range templates {
		scheduled[i] = ScheduledItem{ChecklistItemTemplate: t}
		if t.DeadlineOffset != nil {
			due := DeadlineFor(base, *t.DeadlineOffset)
			scheduled[i].Deadline = &due
		}
	}
	return scheduled
}

// Plan generates and schedules a university's checklist in one step.
func (p *Planner) Plan(u *models.University, fallback time.Time) (time.Time, []ScheduledItem) {
	base := BaseDeadline(u, fallback)
	return base, Schedule(p.GenerateItems(u), base)
}
