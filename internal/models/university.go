// Package models defines the data structures for the admissions engine.
package models

import (
	"time"
)

// EssayPrompt is one supplemental essay a university asks for.
type EssayPrompt struct {
	Topic     string `json:"topic,omitempty"`
	WordCount int    `json:"word_count,omitempty"`
}

// University is an institution's admissions, cost and offerings profile.
type University struct {
	ID      string `json:"id" db:"id"`
	NameEn  string `json:"name_en" db:"name_en"`
	Country string `json:"country,omitempty" db:"country"`
	City    string `json:"city,omitempty" db:"city"`
	Website string `json:"website,omitempty" db:"website"`

	// Admission statistics
	MinGPA   *float64 `json:"min_gpa,omitempty" db:"min_gpa"`
	AvgGPA   *float64 `json:"avg_gpa,omitempty" db:"avg_gpa"`
	MinSAT   *int     `json:"min_sat,omitempty" db:"min_sat"`
	AvgSAT25 *int     `json:"avg_sat_25,omitempty" db:"avg_sat_25"`
	AvgSAT75 *int     `json:"avg_sat_75,omitempty" db:"avg_sat_75"`
	MinACT   *int     `json:"min_act,omitempty" db:"min_act"`
	MinIELTS *float64 `json:"min_ielts,omitempty" db:"min_ielts"`
	MinTOEFL *int     `json:"min_toefl,omitempty" db:"min_toefl"`

	// Costs, per year
	TuitionIntl *float64 `json:"tuition_intl,omitempty" db:"tuition_intl"`
	TotalCost   *float64 `json:"total_cost,omitempty" db:"total_cost"`

	// Financial aid
	HasMeritScholarships bool     `json:"has_merit_scholarships" db:"has_merit_scholarships"`
	HasNeedBased         bool     `json:"has_need_based" db:"has_need_based"`
	HasFullRide          bool     `json:"has_full_ride" db:"has_full_ride"`
	FinAidPercentage     *float64 `json:"fin_aid_percentage,omitempty" db:"fin_aid_percentage"`

	// Application channels
	AcceptsCommonApp bool   `json:"accepts_common_app" db:"accepts_common_app"`
	AcceptsCoalition bool   `json:"accepts_coalition" db:"accepts_coalition"`
	HasOwnSystem     bool   `json:"has_own_system" db:"has_own_system"`
	OwnSystemLink    string `json:"own_system_link,omitempty" db:"own_system_link"`

	// Requirements
	RecommendationCount int           `json:"recommendation_count" db:"recommendation_count"`
	RequiresPortfolio   bool          `json:"requires_portfolio" db:"requires_portfolio"`
	RequiresStatement   bool          `json:"requires_statement" db:"requires_statement"`
	RequiresInterview   bool          `json:"requires_interview" db:"requires_interview"`
	RequiresCSSProfile  bool          `json:"requires_css_profile" db:"requires_css_profile"`
	SupplementalEssays  []EssayPrompt `json:"supplemental_essays,omitempty" db:"supplemental_essays"`

	// Deadlines
	EarlyActionDate *time.Time `json:"early_action_date,omitempty" db:"early_action_date"`
	EDDeadline      *time.Time `json:"ed_deadline,omitempty" db:"ed_deadline"`
	RegularDeadline *time.Time `json:"regular_deadline,omitempty" db:"regular_deadline"`

	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// HasAvgGPA reports whether the average admitted GPA is known.
func (u *University) HasAvgGPA() bool { return hasFloat(u.AvgGPA) }

// HasSATBand reports whether both ends of the 25th-75th percentile SAT band are known.
func (u *University) HasSATBand() bool { return hasInt(u.AvgSAT25) && hasInt(u.AvgSAT75) }

// SATMidpoint returns the middle of the SAT band. Only meaningful when HasSATBand is true.
func (u *University) SATMidpoint() float64 {
	return float64(*u.AvgSAT25+*u.AvgSAT75) / 2
}

// HasMinIELTS reports whether a minimum IELTS band is set.
func (u *University) HasMinIELTS() bool { return hasFloat(u.MinIELTS) }

// HasMinTOEFL reports whether a minimum TOEFL score is set.
func (u *University) HasMinTOEFL() bool { return hasInt(u.MinTOEFL) }

// HasMinSAT reports whether an absolute SAT floor is set.
func (u *University) HasMinSAT() bool { return hasInt(u.MinSAT) }

// HasMinACT reports whether a minimum ACT composite is set.
func (u *University) HasMinACT() bool { return hasInt(u.MinACT) }

// GPAFloor is the explicit minimum GPA, or the average minus 0.3 when no minimum is published.
func (u *University) GPAFloor() float64 {
	if hasFloat(u.MinGPA) {
		return *u.MinGPA
	}
	return *u.AvgGPA - GPAFloorMargin
}

// SATFloor is the absolute SAT minimum, or 0 when none is published.
func (u *University) SATFloor() int {
	if hasInt(u.MinSAT) {
		return *u.MinSAT
	}
	return 0
}

// AnnualCost is the total cost of attendance, falling back to international
// tuition. It returns 0 when neither is known.
func (u *University) AnnualCost() float64 {
	if hasFloat(u.TotalCost) {
		return *u.TotalCost
	}
	if hasFloat(u.TuitionIntl) {
		return *u.TuitionIntl
	}
	return 0
}

// AidCoverage is the fraction (0-1) of cost typically covered by aid.
func (u *University) AidCoverage() float64 {
	if !hasFloat(u.FinAidPercentage) {
		return 0
	}
	return *u.FinAidPercentage / 100
}

// BulkUpsertResult summarizes a catalog import.
type BulkUpsertResult struct {
	UpsertedCount int      `json:"upserted_count"`
	FailedCount   int      `json:"failed_count"`
	Errors        []string `json:"errors"`
}
