package fitscore

import (
	"fmt"
	"math"
	"strconv"

	"admissions-engine/internal/models"
)

// reachAcademicCutoff marks an academic sub-score low enough to warn the student.
const reachAcademicCutoff = 50

// explain builds the advisory text for a fit score. The wording is free to
// change; the conditions that trigger each line are not.
func explain(p *models.StudentProfile, u *models.University, academic float64) models.FitExplanation {
	ex := models.FitExplanation{
		Strengths:       []string{},
		Improvements:    []string{},
		Recommendations: []string{},
	}

	if p.HasGPA() && u.HasAvgGPA() {
		if *p.GPA >= *u.AvgGPA {
			ex.Strengths = append(ex.Strengths,
				fmt.Sprintf("Your GPA (%.2f) exceeds the average (%.2f)", *p.GPA, *u.AvgGPA))
		} else {
			ex.Improvements = append(ex.Improvements,
				fmt.Sprintf("Your GPA (%.2f) is below the average (%.2f)", *p.GPA, *u.AvgGPA))
			ex.Recommendations = append(ex.Recommendations,
				"Focus on maintaining or improving your GPA in remaining semesters")
		}
	}

	if p.HasSAT() && u.HasSATBand() {
		mid := u.SATMidpoint()
		if float64(*p.SATTotal) >= mid {
			ex.Strengths = append(ex.Strengths,
				fmt.Sprintf("Your SAT score (%d) meets or exceeds the average (%d)", *p.SATTotal, int(math.Round(mid))))
		} else {
			ex.Improvements = append(ex.Improvements,
				fmt.Sprintf("Your SAT score (%d) is below the average (%d)", *p.SATTotal, int(math.Round(mid))))
			ex.Recommendations = append(ex.Recommendations, "Consider retaking the SAT to improve your score")
		}
	}

	if p.HasIELTS() && u.HasMinIELTS() {
		if *p.IELTSTotal >= *u.MinIELTS {
			ex.Strengths = append(ex.Strengths,
				fmt.Sprintf("Your IELTS score (%s) meets requirements (min %s)", band(*p.IELTSTotal), band(*u.MinIELTS)))
		} else {
			ex.Improvements = append(ex.Improvements,
				fmt.Sprintf("Your IELTS score (%s) is below requirements (min %s)", band(*p.IELTSTotal), band(*u.MinIELTS)))
			ex.Recommendations = append(ex.Recommendations, "You must achieve the minimum IELTS score to be eligible")
		}
	}

	if p.HasTOEFL() && u.HasMinTOEFL() {
		if *p.TOEFLTotal >= *u.MinTOEFL {
			ex.Strengths = append(ex.Strengths,
				fmt.Sprintf("Your TOEFL score (%d) meets requirements (min %d)", *p.TOEFLTotal, *u.MinTOEFL))
		} else {
			ex.Improvements = append(ex.Improvements,
				fmt.Sprintf("Your TOEFL score (%d) is below requirements (min %d)", *p.TOEFLTotal, *u.MinTOEFL))
			ex.Recommendations = append(ex.Recommendations, "You must achieve the minimum TOEFL score to be eligible")
		}
	}

	switch activities := len(p.Extracurriculars); {
	case activities >= 3:
		ex.Strengths = append(ex.Strengths, "Strong extracurricular profile demonstrates diverse interests")
	case activities < 2:
		ex.Improvements = append(ex.Improvements, "Limited extracurricular activities")
		ex.Recommendations = append(ex.Recommendations,
			"Engage in meaningful extracurricular activities that align with your interests")
	}

	if len(p.Leadership) >= 1 {
		ex.Strengths = append(ex.Strengths, "Leadership experience strengthens your application")
	} else {
		ex.Recommendations = append(ex.Recommendations, "Seek leadership positions in clubs or organizations")
	}

	if u.HasFullRide {
		ex.Strengths = append(ex.Strengths, "Full-ride scholarships available for exceptional candidates")
	}

	if p.NeedFinancialAid && !u.HasNeedBased {
		ex.Improvements = append(ex.Improvements,
			"Limited need-based financial aid available for international students")
		ex.Recommendations = append(ex.Recommendations,
			"Apply to additional universities with better financial aid for international students")
	}

	if academic < reachAcademicCutoff {
		ex.Recommendations = append(ex.Recommendations,
			"Consider this a reach school and also apply to target/safety schools")
	}

	if u.AcceptsCommonApp {
		ex.Recommendations = append(ex.Recommendations,
			"This university accepts Common App, making application easier")
	}

	return ex
}

// band formats an IELTS band without trailing zeros: 7, 7.5.
func band(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
