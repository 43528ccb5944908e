// Package fitscore scores how well a student profile matches a university and
// sorts the match into reach, target or safety.
package fitscore

import (
	"math"

	"admissions-engine/internal/models"
)

// Engine computes fit scores. It holds no state and is safe for concurrent use.
type Engine struct{}

// NewEngine creates a new fit score engine
func NewEngine() *Engine {
	return &Engine{}
}

// tier awards score to any value at or above min. Tiers are checked in order.
type tier struct {
	min   float64
	score float64
}

func scoreTiers(value float64, tiers []tier, fallback float64) float64 {
	for _, t := range tiers {
		if value >= t.min {
			return t.score
		}
	}
	return fallback
}

// countTier awards bonus to a collection holding at least min entries.
type countTier struct {
	min   int
	bonus float64
}

func countBonus(count int, tiers []countTier) float64 {
	for _, t := range tiers {
		if count >= t.min {
			return t.bonus
		}
	}
	return 0
}

// factorSet averages the signals that could be assessed.
type factorSet struct {
	sum float64
	n   int
}

func (f *factorSet) add(value float64) {
	f.sum += value
	f.n++
}

// average returns the mean of the added values, or the neutral score when
// nothing could be assessed.
func (f *factorSet) average() float64 {
	if f.n == 0 {
		return models.NeutralScore
	}
	return f.sum / float64(f.n)
}

// Academic tier boundaries
const (
	gpaExcellentMargin = 0.2

	ieltsExcellentMargin = 1.0
	ieltsGoodMargin      = 0.5
	toeflExcellentMargin = 15
	toeflGoodMargin      = 5

	belowGPAFloorScore   = 40
	belowSATFloorScore   = 30
	belowEnglishMinScore = 30
)

var (
	activityTiers    = []countTier{{5, 30}, {3, 20}, {1, 10}}
	achievementTiers = []countTier{{5, 25}, {3, 15}, {1, 8}}
	leadershipTiers  = []countTier{{3, 25}, {2, 15}, {1, 10}}
	volunteerTiers   = []countTier{{3, 20}, {2, 12}, {1, 7}}
)

// Financial scoring constants
const (
	aidBaseScore         = 40
	fullRideBonus        = 30
	meritBonus           = 20
	needBasedBonus       = 25
	coversRemainingBonus = 20
	mostlyCoversBonus    = 10
	mostlyCoversRatio    = 0.7
)

var affordabilityTiers = []tier{{0.8, 75}, {0.6, 60}, {0.4, 45}}

const unaffordableScore = 30

// Score assesses the profile against the university. Missing fields on either
// side are skipped, never treated as zero.
func (e *Engine) Score(profile *models.StudentProfile, university *models.University) *models.FitScoreResult {
	academic := e.academicScore(profile, university)
	extracurricular := e.extracurricularScore(profile)
	financial := e.financialScore(profile, university)

	total := compositeScore(academic, extracurricular, financial)

	return &models.FitScoreResult{
		Score:    total,
		Category: models.CategoryFor(total),
		Breakdown: models.FitBreakdown{
			Academic:        roundScore(academic),
			Extracurricular: roundScore(extracurricular),
			Financial:       roundScore(financial),
		},
		Explanation: explain(profile, university, academic),
	}
}

// compositeScore weights the unrounded sub-scores. The explicit conversions
// keep each product rounded on its own so no fused multiply-add changes the result.
func compositeScore(academic, extracurricular, financial float64) int {
	weighted := float64(academic*models.AcademicWeight) +
		float64(extracurricular*models.ExtracurricularWeight) +
		float64(financial*models.FinancialWeight)
	return roundScore(weighted)
}

func roundScore(v float64) int {
	return int(math.Round(v))
}

func (e *Engine) academicScore(p *models.StudentProfile, u *models.University) float64 {
	var factors factorSet

	if p.HasGPA() && u.HasAvgGPA() {
		avg := *u.AvgGPA
		factors.add(scoreTiers(*p.GPA, []tier{
			{avg + gpaExcellentMargin, 100},
			{avg, 85},
			{u.GPAFloor(), 65},
		}, belowGPAFloorScore))
	}

	if p.HasSAT() && u.HasSATBand() {
		factors.add(scoreTiers(float64(*p.SATTotal), []tier{
			{float64(*u.AvgSAT75), 100},
			{u.SATMidpoint(), 80},
			{float64(*u.AvgSAT25), 60},
			{float64(u.SATFloor()), 45},
		}, belowSATFloorScore))
	}

	if p.HasIELTS() && u.HasMinIELTS() {
		required := *u.MinIELTS
		factors.add(scoreTiers(*p.IELTSTotal, []tier{
			{required + ieltsExcellentMargin, 100},
			{required + ieltsGoodMargin, 85},
			{required, 70},
		}, belowEnglishMinScore))
	}

	if p.HasTOEFL() && u.HasMinTOEFL() {
		required := float64(*u.MinTOEFL)
		factors.add(scoreTiers(float64(*p.TOEFLTotal), []tier{
			{required + toeflExcellentMargin, 100},
			{required + toeflGoodMargin, 85},
			{required, 70},
		}, belowEnglishMinScore))
	}

	return factors.average()
}

func (e *Engine) extracurricularScore(p *models.StudentProfile) float64 {
	score := float64(models.NeutralScore)
	score += countBonus(len(p.Extracurriculars), activityTiers)
	score += countBonus(len(p.Achievements), achievementTiers)
	score += countBonus(len(p.Leadership), leadershipTiers)
	score += countBonus(len(p.VolunteerWork), volunteerTiers)
	return clamp(score)
}

func (e *Engine) financialScore(p *models.StudentProfile, u *models.University) float64 {
	cost := u.AnnualCost()
	budget := p.Budget()

	if !p.NeedFinancialAid && budget >= cost {
		return 100
	}

	if p.NeedFinancialAid {
		score := float64(aidBaseScore)
		if u.HasFullRide {
			score += fullRideBonus
		}
		if u.HasMeritScholarships {
			score += meritBonus
		}
		if u.HasNeedBased {
			score += needBasedBonus
		}

		expectedAid := float64(u.AidCoverage() * cost)
		remaining := cost - expectedAid
		if budget >= remaining {
			score += coversRemainingBonus
		} else if budget >= remaining*mostlyCoversRatio {
			score += mostlyCoversBonus
		}

		return clamp(score)
	}

	// Budget falls short of a known, positive cost here: budget is never
	// negative, so cost > budget >= 0.
	if cost <= 0 {
		return 100
	}
	return scoreTiers(budget/cost, affordabilityTiers, unaffordableScore)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
