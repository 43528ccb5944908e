package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"admissions-engine/internal/models"
	"admissions-engine/internal/services/fitscore"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a student profile against a university",
	Long:  "Computes the fit score, category, breakdown and explanation for a StudentProfile JSON file against a University JSON file. Nothing is stored.",
	RunE:  runScore,
}

var (
	scoreProfile    string
	scoreUniversity string
	scoreOutput     string
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreProfile, "profile", "p", "", "Path to StudentProfile JSON file (required)")
	scoreCmd.Flags().StringVarP(&scoreUniversity, "university", "u", "", "Path to University JSON file (required)")
	scoreCmd.Flags().StringVarP(&scoreOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	markRequired(scoreCmd, "profile", "university")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(_ *cobra.Command, _ []string) error {
	var profile models.StudentProfile
	if err := readJSON(scoreProfile, &profile); err != nil {
		return err
	}
	if err := models.ValidateProfile(&profile); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	var university models.University
	if err := readJSON(scoreUniversity, &university); err != nil {
		return err
	}

	return writeJSON(scoreOutput, fitscore.NewEngine().Score(&profile, &university))
}
