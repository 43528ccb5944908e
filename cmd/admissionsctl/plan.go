package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"admissions-engine/internal/models"
	"admissions-engine/internal/services/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview the application checklist for a university",
	Long:  "Generates the ordered application checklist for a University JSON file and resolves each task's deadline from the university's earliest known deadline.",
	RunE:  runPlan,
}

var (
	planUniversity string
	planFallback   string
	planOutput     string
)

// planOutputDoc is the JSON written by the plan command.
type planOutputDoc struct {
	University   string                  `json:"university"`
	BaseDeadline string                  `json:"base_deadline"`
	Items        []planner.ScheduledItem `json:"items"`
}

func init() {
	planCmd.Flags().StringVarP(&planUniversity, "university", "u", "", "Path to University JSON file (required)")
	planCmd.Flags().StringVar(&planFallback, "fallback", "", "Base deadline (YYYY-MM-DD) when the university has none (default today)")
	planCmd.Flags().StringVarP(&planOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	markRequired(planCmd, "university")

	rootCmd.AddCommand(planCmd)
}

func runPlan(_ *cobra.Command, _ []string) error {
	var university models.University
	if err := readJSON(planUniversity, &university); err != nil {
		return err
	}

	fallback := time.Now().UTC()
	if planFallback != "" {
		parsed, err := time.Parse(time.DateOnly, planFallback)
		if err != nil {
			return fmt.Errorf("invalid --fallback %q: %w", planFallback, err)
		}
		fallback = parsed
	}

	base, items := planner.NewPlanner().Plan(&university, fallback)

	return writeJSON(planOutput, planOutputDoc{
		University:   university.NameEn,
		BaseDeadline: base.Format(time.DateOnly),
		Items:        items,
	})
}
