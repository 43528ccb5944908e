// Package models defines the data structures for the admissions engine.
package models

import (
	"time"
)

// FitCategory is the admission-likelihood tier derived from a fit score.
type FitCategory string

const (
	FitCategoryReach  FitCategory = "reach"
	FitCategoryTarget FitCategory = "target"
	FitCategorySafety FitCategory = "safety"
)

// Category cutoffs. A score at or below ReachMaxScore is a reach, at or below
// TargetMaxScore a target, anything above a safety. Display and filter code
// must use these rather than their own numbers.
const (
	ReachMaxScore  = 40
	TargetMaxScore = 70
)

// Sub-score weights of the composite fit score.
const (
	AcademicWeight        = 0.4
	ExtracurricularWeight = 0.3
	FinancialWeight       = 0.3
)

// NeutralScore is used for a sub-score that cannot be assessed.
const NeutralScore = 50

// GPAFloorMargin is subtracted from the average GPA when a university
// publishes no explicit minimum.
const GPAFloorMargin = 0.3

// ValidFitCategories returns all fit categories, most ambitious first.
func ValidFitCategories() []FitCategory {
	return []FitCategory{FitCategoryReach, FitCategoryTarget, FitCategorySafety}
}

// IsValid checks if the category is one of the known tiers.
func (c FitCategory) IsValid() bool {
	for _, valid := range ValidFitCategories() {
		if c == valid {
			return true
		}
	}
	return false
}

// CategoryFor maps a composite score onto its tier.
func CategoryFor(score int) FitCategory {
	switch {
	case score <= ReachMaxScore:
		return FitCategoryReach
	case score <= TargetMaxScore:
		return FitCategoryTarget
	default:
		return FitCategorySafety
	}
}

// FitBreakdown holds the three rounded sub-scores, each 0-100.
type FitBreakdown struct {
	Academic        int `json:"academic"`
	Extracurricular int `json:"extracurricular"`
	Financial       int `json:"financial"`
}

// FitExplanation is the advisory text attached to a fit score.
type FitExplanation struct {
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	Recommendations []string `json:"recommendations"`
}

// FitScoreResult is the output of one fit assessment.
type FitScoreResult struct {
	Score       int            `json:"score"`
	Category    FitCategory    `json:"category"`
	Breakdown   FitBreakdown   `json:"breakdown"`
	Explanation FitExplanation `json:"explanation"`
}

// FitScore is a persisted fit result, unique per (user, university).
type FitScore struct {
	ID           int64          `json:"id" db:"id"`
	UserID       string         `json:"user_id" db:"user_id"`
	UniversityID string         `json:"university_id" db:"university_id"`
	Score        int            `json:"score" db:"score"`
	Category     FitCategory    `json:"category" db:"category"`
	Breakdown    FitBreakdown   `json:"breakdown" db:"breakdown"`
	Explanation  FitExplanation `json:"explanation" db:"explanation"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// FitScoreRequest is the body of a fit-score request.
type FitScoreRequest struct {
	UniversityID string `json:"universityId" validate:"required"`
}
