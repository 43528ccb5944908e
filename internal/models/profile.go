// Package models defines the data structures for the admissions engine.
package models

import (
	"time"
)

// Activity is one extracurricular activity listed on a student profile.
type Activity struct {
	Name         string `json:"name"`
	Role         string `json:"role,omitempty"`
	HoursPerWeek int    `json:"hours_per_week,omitempty"`
	Years        int    `json:"years,omitempty"`
}

// Achievement is an award, competition result or similar distinction.
type Achievement struct {
	Title string `json:"title"`
	Level string `json:"level,omitempty"` // school, regional, national, international
	Year  int    `json:"year,omitempty"`
}

// LeadershipRole is a position of responsibility held by the student.
type LeadershipRole struct {
	Position     string `json:"position"`
	Organization string `json:"organization,omitempty"`
}

// VolunteerEntry is one volunteering engagement.
type VolunteerEntry struct {
	Organization string `json:"organization"`
	Hours        int    `json:"hours,omitempty"`
}

// StudentProfile is a snapshot of one applicant's self-reported academic and
// financial attributes. Every field is optional; nil means unknown.
type StudentProfile struct {
	ID     string `json:"id,omitempty" db:"id"`
	UserID string `json:"user_id,omitempty" db:"user_id"`

	// Academic
	GPA        *float64 `json:"gpa,omitempty" db:"gpa" validate:"omitempty,gte=0,lte=4"`
	SATTotal   *int     `json:"sat_total,omitempty" db:"sat_total" validate:"omitempty,gte=400,lte=1600"`
	SATMath    *int     `json:"sat_math,omitempty" db:"sat_math" validate:"omitempty,gte=200,lte=800"`
	SATEBRW    *int     `json:"sat_ebrw,omitempty" db:"sat_ebrw" validate:"omitempty,gte=200,lte=800"`
	ACTScore   *int     `json:"act_score,omitempty" db:"act_score" validate:"omitempty,gte=1,lte=36"`
	IELTSTotal *float64 `json:"ielts_total,omitempty" db:"ielts_total" validate:"omitempty,gte=0,lte=9,half_band"`
	TOEFLTotal *int     `json:"toefl_total,omitempty" db:"toefl_total" validate:"omitempty,gte=0,lte=120"`

	// Financial
	MaxBudget        *float64 `json:"max_budget,omitempty" db:"max_budget" validate:"omitempty,gte=0"`
	NeedFinancialAid bool     `json:"need_financial_aid" db:"need_financial_aid"`

	Extracurriculars []Activity       `json:"extracurriculars,omitempty" db:"extracurriculars"`
	Achievements     []Achievement    `json:"achievements,omitempty" db:"achievements"`
	Leadership       []LeadershipRole `json:"leadership,omitempty" db:"leadership"`
	VolunteerWork    []VolunteerEntry `json:"volunteer_work,omitempty" db:"volunteer_work"`

	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// Float returns a pointer to v. Handy for building profiles and universities in code.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// hasFloat reports whether an optional value is known. Zero is treated as unknown.
func hasFloat(v *float64) bool {
	return v != nil && *v > 0
}

func hasInt(v *int) bool {
	return v != nil && *v > 0
}

// HasGPA reports whether the profile carries a GPA.
func (p *StudentProfile) HasGPA() bool { return hasFloat(p.GPA) }

// HasSAT reports whether the profile carries a total SAT score.
func (p *StudentProfile) HasSAT() bool { return hasInt(p.SATTotal) }

// HasIELTS reports whether the profile carries an IELTS band.
func (p *StudentProfile) HasIELTS() bool { return hasFloat(p.IELTSTotal) }

// HasTOEFL reports whether the profile carries a TOEFL score.
func (p *StudentProfile) HasTOEFL() bool { return hasInt(p.TOEFLTotal) }

// Budget returns the maximum annual budget, or 0 when unknown.
func (p *StudentProfile) Budget() float64 {
	if p.MaxBudget == nil {
		return 0
	}
	return *p.MaxBudget
}
