package advisor

import (
	"fmt"
	"strconv"
	"strings"

	"admissions-engine/internal/models"
)

// SystemPrompt sets the assistant persona for chat.
const SystemPrompt = `You are an expert college admissions advisor helping international students apply to universities worldwide.

Your expertise includes:
- University selection and recommendations
- Admission requirements and deadlines
- Essay feedback (you NEVER write essays for students, only provide feedback)
- Scholarships and financial aid
- Application platforms (Common App, Coalition, university portals)

Guidelines:
1. Be encouraging and give specific, actionable advice
2. Be realistic but not discouraging when evaluating chances
3. Never write essays for students
4. Cite specific data when discussing university requirements
5. Categorize recommended universities as Reach, Target or Safety
6. Keep the student's budget in mind and remind them of deadlines

Respond in English unless the student writes in another language.`

// Message is one turn of an earlier conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatContext is what the assistant knows about the student.
type ChatContext struct {
	Profile      *models.StudentProfile
	Universities []*models.University
	History      []Message
}

// BuildEssayPrompt asks for structured feedback on an essay.
func BuildEssayPrompt(essay, prompt string) string {
	var b strings.Builder

	b.WriteString("You are an expert college essay reviewer. Analyze the following essay and provide constructive feedback.\n\n")
	if p := strings.TrimSpace(prompt); p != "" {
		fmt.Fprintf(&b, "Essay Prompt: %s\n\n", p)
	}
	fmt.Fprintf(&b, "Essay:\n%s\n\n", strings.TrimSpace(essay))
	b.WriteString(`Provide feedback on:
1. Structure: Does it have a clear introduction, body, and conclusion?
2. Content: Is the main idea clear? Are there specific examples?
3. Grammar & Style: Any errors or areas for improvement?
4. Overall Impact: How compelling is the essay?
5. Specific Suggestions: What can be improved?

Remember: DO NOT rewrite the essay. Only provide feedback and suggestions.
`)
	fmt.Fprintf(&b, "\nWord Count: %d words", WordCount(essay))

	return b.String()
}

// BuildChatPrompt assembles persona, context, history and the new question.
func BuildChatPrompt(message string, cc ChatContext) string {
	var b strings.Builder

	b.WriteString(SystemPrompt)

	if cc.Profile != nil {
		b.WriteString("\n\nStudent Profile:\n")
		b.WriteString(ProfileContext(cc.Profile))
	}

	if len(cc.Universities) > 0 {
		b.WriteString("\n\nRelevant Universities:\n")
		for _, u := range cc.Universities {
			b.WriteString("\n")
			b.WriteString(UniversityContext(u))
		}
	}

	if len(cc.History) > 0 {
		b.WriteString("\n\nConversation History:\n")
		for i, msg := range cc.History {
			if i > 0 {
				b.WriteString("\n\n")
			}
			speaker := "Assistant"
			if msg.Role == "user" {
				speaker = "Student"
			}
			fmt.Fprintf(&b, "%s: %s", speaker, msg.Content)
		}
	}

	fmt.Fprintf(&b, "\n\nStudent Question: %s\n\nProvide a helpful, detailed response:", strings.TrimSpace(message))

	return b.String()
}

// ProfileContext lists the known profile fields, one per line.
func ProfileContext(p *models.StudentProfile) string {
	var b strings.Builder
	if p.HasGPA() {
		fmt.Fprintf(&b, "- GPA: %.2f\n", *p.GPA)
	}
	if p.HasSAT() {
		fmt.Fprintf(&b, "- SAT: %d\n", *p.SATTotal)
	}
	if p.ACTScore != nil && *p.ACTScore > 0 {
		fmt.Fprintf(&b, "- ACT: %d\n", *p.ACTScore)
	}
	if p.HasIELTS() {
		fmt.Fprintf(&b, "- IELTS: %s\n", strconv.FormatFloat(*p.IELTSTotal, 'f', -1, 64))
	}
	if p.HasTOEFL() {
		fmt.Fprintf(&b, "- TOEFL: %d\n", *p.TOEFLTotal)
	}
	if budget := p.Budget(); budget > 0 {
		fmt.Fprintf(&b, "- Budget: $%.0f/year\n", budget)
	}
	if p.NeedFinancialAid {
		b.WriteString("- Needs financial aid\n")
	}
	fmt.Fprintf(&b, "- Activities: %d, achievements: %d, leadership roles: %d\n",
		len(p.Extracurriculars), len(p.Achievements), len(p.Leadership))
	return b.String()
}

// UniversityContext summarizes the known admissions facts of a university.
func UniversityContext(u *models.University) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", u.NameEn)
	if u.Country != "" {
		fmt.Fprintf(&b, " (%s)", u.Country)
	}
	b.WriteString(":\n")
	if u.HasAvgGPA() {
		fmt.Fprintf(&b, "- Avg GPA: %.2f\n", *u.AvgGPA)
	}
	if u.HasSATBand() {
		fmt.Fprintf(&b, "- SAT Range: %d-%d\n", *u.AvgSAT25, *u.AvgSAT75)
	}
	if u.HasMinIELTS() {
		fmt.Fprintf(&b, "- Min IELTS: %s\n", strconv.FormatFloat(*u.MinIELTS, 'f', -1, 64))
	}
	if u.HasMinTOEFL() {
		fmt.Fprintf(&b, "- Min TOEFL: %d\n", *u.MinTOEFL)
	}
	if cost := u.AnnualCost(); cost > 0 {
		fmt.Fprintf(&b, "- Cost: $%.0f/year\n", cost)
	}
	if u.HasMeritScholarships {
		b.WriteString("- Merit scholarships available\n")
	}
	if u.HasNeedBased {
		b.WriteString("- Need-based aid available\n")
	}
	if u.HasFullRide {
		b.WriteString("- Full-ride scholarships available\n")
	}
	if u.EarlyActionDate != nil {
		fmt.Fprintf(&b, "- Early Action Deadline: %s\n", u.EarlyActionDate.Format("2006-01-02"))
	}
	if u.RegularDeadline != nil {
		fmt.Fprintf(&b, "- Regular Decision Deadline: %s\n", u.RegularDeadline.Format("2006-01-02"))
	}
	return b.String()
}
