// Package planner turns a university's requirements into an ordered,
// deadline-anchored application checklist.
package planner

import (
	"fmt"
	"strconv"
	"strings"

	"admissions-engine/internal/models"
)

// Planner generates checklist templates. It holds no state and is safe for concurrent use.
type Planner struct {
	rules []rule
}

// draft is a template before its order has been assigned.
type draft struct {
	title       string
	description string
	offset      *int
}

// rule emits zero or more drafts for one phase when it applies.
type rule struct {
	name     string
	category models.ChecklistItemCategory
	applies  func(u *models.University) bool
	build    func(u *models.University) []draft
}

// NewPlanner creates a planner with the standard rule table.
func NewPlanner() *Planner {
	return &Planner{rules: defaultRules()}
}

// GenerateItems walks the rule table in order. Order values start at 1 and
// increase by one per emitted item.
func (p *Planner) GenerateItems(u *models.University) []models.ChecklistItemTemplate {
	items := make([]models.ChecklistItemTemplate, 0, len(p.rules))
	order := 1

	for _, r := range p.rules {
		if r.applies != nil && !r.applies(u) {
			continue
		}
		for _, d := range r.build(u) {
			items = append(items, models.ChecklistItemTemplate{
				Title:          d.title,
				Description:    d.description,
				Category:       r.category,
				Order:          order,
				DeadlineOffset: d.offset,
			})
			order++
		}
	}

	return items
}

// RuleNames lists the rules in evaluation order.
func (p *Planner) RuleNames() []string {
	names := make([]string, len(p.rules))
	for i, r := range p.rules {
		names[i] = r.name
	}
	return names
}

func days(n int) *int { return &n }

func always(*models.University) bool { return true }

func single(title, description string, offset *int) func(*models.University) []draft {
	return func(*models.University) []draft {
		return []draft{{title: title, description: description, offset: offset}}
	}
}

func defaultRules() []rule {
	return []rule{
		// Documents
		{
			name:     "english-proficiency",
			category: models.CategoryDocuments,
			applies:  func(u *models.University) bool { return u.HasMinIELTS() || u.HasMinTOEFL() },
			build: func(u *models.University) []draft {
				return []draft{{
					title:       englishTestTitle(u),
					description: "Register and take the test at least 2 months before application deadline",
					offset:      days(60),
				}}
			},
		},
		{
			name:     "sat",
			category: models.CategoryDocuments,
			applies:  func(u *models.University) bool { return u.HasMinSAT() || hasLowerSATBand(u) },
			build: func(u *models.University) []draft {
				target := u.SATFloor()
				if hasLowerSATBand(u) {
					target = *u.AvgSAT25
				}
				return []draft{{
					title:       fmt.Sprintf("Take SAT (target: %d+)", target),
					description: "Register early and consider taking it twice to improve your score",
					offset:      days(45),
				}}
			},
		},
		{
			name:     "act",
			category: models.CategoryDocuments,
			applies:  func(u *models.University) bool { return u.HasMinACT() },
			build: func(u *models.University) []draft {
				return []draft{{
					title:       fmt.Sprintf("Take ACT (minimum: %d)", *u.MinACT),
					description: "Alternative to SAT, check which test suits you better",
					offset:      days(45),
				}}
			},
		},
		{
			name:     "transcript",
			category: models.CategoryDocuments,
			applies:  always,
			build: single("Request official transcript from your school",
				"Get your academic records certified and ready to send", days(30)),
		},
		{
			name:     "recommendations",
			category: models.CategoryDocuments,
			applies:  always,
			build: func(u *models.University) []draft {
				if u.RecommendationCount > 0 {
					return []draft{{
						title:       fmt.Sprintf("Get %d recommendation letters", u.RecommendationCount),
						description: "Ask teachers/mentors who know you well, at least 1 month in advance",
						offset:      days(45),
					}}
				}
				return []draft{{
					title:       "Get 2-3 recommendation letters",
					description: "Most universities require letters from teachers or mentors",
					offset:      days(45),
				}}
			},
		},
		{
			name:     "resume",
			category: models.CategoryDocuments,
			applies:  always,
			build: single("Prepare CV/Resume",
				"List your extracurriculars, achievements, work experience", days(20)),
		},
		{
			name:     "portfolio",
			category: models.CategoryDocuments,
			applies:  func(u *models.University) bool { return u.RequiresPortfolio },
			build: single("Prepare portfolio",
				"Required for creative programs - compile your best work", days(30)),
		},

		// Essays
		{
			name:     "common-app-statement",
			category: models.CategoryEssays,
			applies:  func(u *models.University) bool { return u.AcceptsCommonApp },
			build: single("Write Common App Personal Statement (650 words)",
				"Choose from 7 prompts, make it personal and compelling", days(30)),
		},
		{
			name:     "personal-statement",
			category: models.CategoryEssays,
			applies:  func(u *models.University) bool { return u.RequiresStatement && !u.AcceptsCommonApp },
			build: single("Write Personal Statement",
				"Check university website for specific prompts and word limits", days(30)),
		},
		{
			name:     "supplemental-essays",
			category: models.CategoryEssays,
			applies:  func(u *models.University) bool { return len(u.SupplementalEssays) > 0 || u.RequiresStatement },
			build:    supplementalEssays,
		},
		{
			name:     "essay-review",
			category: models.CategoryEssays,
			applies:  always,
			build: single("Review and edit all essays",
				"Get feedback from teachers, mentors, or use AI assistant", days(15)),
		},

		// Application
		{
			name:     "application-account",
			category: models.CategoryApplication,
			applies: func(u *models.University) bool {
				return u.AcceptsCommonApp || u.AcceptsCoalition || u.HasOwnSystem
			},
			build: applicationAccount,
		},
		{
			name:     "upload-documents",
			category: models.CategoryApplication,
			applies:  always,
			build: single("Upload all required documents",
				"Transcripts, test scores, essays, CV, recommendations", days(10)),
		},
		{
			name:     "send-scores",
			category: models.CategoryApplication,
			applies:  always,
			build: single("Send official test scores",
				"Order official score reports from testing agencies to university", days(15)),
		},
		{
			name:     "application-fee",
			category: models.CategoryApplication,
			applies:  always,
			build: single("Pay application fee or request fee waiver",
				"Check if you qualify for fee waiver, otherwise prepare to pay online", days(5)),
		},
		{
			name:     "final-review",
			category: models.CategoryApplication,
			applies:  always,
			build: single("Review application thoroughly",
				"Check all information, documents, and essays before submission", days(3)),
		},
		{
			name:     "submit",
			category: models.CategoryApplication,
			applies:  always,
			build: single("Submit application!",
				"Double-check everything and hit submit before deadline", days(0)),
		},

		// Financial aid
		{
			name:     "css-profile",
			category: models.CategoryFinancialAid,
			applies:  func(u *models.University) bool { return u.RequiresCSSProfile },
			build: func(*models.University) []draft {
				return []draft{
					{
						title:       "Complete CSS Profile",
						description: "Required for financial aid - register at collegeboard.org",
						offset:      days(20),
					},
					{
						title:       "Gather financial documents for CSS Profile",
						description: "Tax returns, bank statements, property information",
						offset:      days(25),
					},
				}
			},
		},
		{
			name:     "merit-scholarships",
			category: models.CategoryFinancialAid,
			applies:  func(u *models.University) bool { return u.HasMeritScholarships || u.HasFullRide },
			build: single("Apply for merit-based scholarships",
				"Check university website for available scholarships and deadlines", days(20)),
		},
		{
			name:     "need-based-aid",
			category: models.CategoryFinancialAid,
			applies:  func(u *models.University) bool { return u.HasNeedBased },
			build: single("Submit financial aid application",
				"Complete all required forms for need-based aid", days(20)),
		},

		// Post submission; none of these carry a date.
		{
			name:     "monitor-portal",
			category: models.CategoryPostSubmission,
			applies:  always,
			build: single("Check application portal regularly",
				"Monitor for requests for additional documents or updates", nil),
		},
		{
			name:     "interview",
			category: models.CategoryPostSubmission,
			applies:  func(u *models.University) bool { return u.RequiresInterview },
			build: single("Prepare for interview",
				"Practice common questions, research the university thoroughly", nil),
		},
		{
			name:     "additional-requests",
			category: models.CategoryPostSubmission,
			applies:  always,
			build: single("Send additional materials if requested",
				"Respond promptly to any requests from admissions office", nil),
		},
		{
			name:     "await-decision",
			category: models.CategoryPostSubmission,
			applies:  always,
			build: single("Wait for decision and celebrate!",
				"Decisions typically come out in March-April for regular decision", nil),
		},
	}
}

func hasLowerSATBand(u *models.University) bool {
	return u.AvgSAT25 != nil && *u.AvgSAT25 > 0
}

func englishTestTitle(u *models.University) string {
	var parts []string
	if u.HasMinIELTS() {
		parts = append(parts, "IELTS "+strconv.FormatFloat(*u.MinIELTS, 'f', -1, 64)+"+")
	}
	if u.HasMinTOEFL() {
		parts = append(parts, fmt.Sprintf("TOEFL %d+", *u.MinTOEFL))
	}
	return fmt.Sprintf("Take English proficiency test (%s)", strings.Join(parts, ", "))
}

func supplementalEssays(u *models.University) []draft {
	if len(u.SupplementalEssays) == 0 {
		return []draft{{
			title:       "Write supplemental essays",
			description: "Check university website for specific requirements",
			offset:      days(25),
		}}
	}

	drafts := make([]draft, 0, len(u.SupplementalEssays))
	for i, essay := range u.SupplementalEssays {
		title := fmt.Sprintf("Write Supplemental Essay #%d", i+1)
		if essay.Topic != "" {
			title += ": " + essay.Topic
		}
		var description string
		if essay.WordCount > 0 {
			description = fmt.Sprintf("Word limit: %d words", essay.WordCount)
		}
		drafts = append(drafts, draft{title: title, description: description, offset: days(25)})
	}
	return drafts
}

func applicationAccount(u *models.University) []draft {
	switch {
	case u.AcceptsCommonApp:
		return []draft{
			{
				title:       "Create Common App account",
				description: "Register at commonapp.org and start your profile",
				offset:      days(40),
			},
			{
				title:       "Complete Common App profile",
				description: "Fill in all sections: personal info, family, education, activities",
				offset:      days(35),
			},
		}
	case u.AcceptsCoalition:
		return []draft{{
			title:       "Create Coalition App account",
			description: "Register and start your profile",
			offset:      days(40),
		}}
	default:
		name := u.NameEn
		if name == "" {
			name = "the university"
		}
		description := "Check university website for application portal"
		if u.OwnSystemLink != "" {
			description = "Visit: " + u.OwnSystemLink
		}
		return []draft{{
			title:       fmt.Sprintf("Register on %s application portal", name),
			description: description,
			offset:      days(40),
		}}
	}
}
