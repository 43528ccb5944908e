package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const universityJSON = `{
	"id": "mit",
	"name_en": "MIT",
	"avg_gpa": 3.9,
	"avg_sat_25": 1510,
	"avg_sat_75": 1580,
	"total_cost": 80000,
	"has_need_based": true,
	"accepts_common_app": true,
	"regular_deadline": "2026-01-01T00:00:00Z"
}`

func TestScoreCommand(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.json", `{"gpa": 3.8, "sat_total": 1500, "need_financial_aid": true}`)
	university := writeFile(t, dir, "university.json", universityJSON)
	out := filepath.Join(dir, "out", "score.json")

	rootCmd.SetArgs([]string{"score", "--profile", profile, "--university", university, "--out", out})
	require.NoError(t, rootCmd.Execute())

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	var result models.FitScoreResult
	require.NoError(t, json.Unmarshal(content, &result))
	assert.GreaterOrEqual(t, result.Score, 0)
	assert.LessOrEqual(t, result.Score, 100)
	assert.Equal(t, models.CategoryFor(result.Score), result.Category)
}

func TestScoreCommand_InvalidProfile(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.json", `{"gpa": 5.2}`)
	university := writeFile(t, dir, "university.json", universityJSON)

	rootCmd.SetArgs([]string{"score", "--profile", profile, "--university", university, "--out", filepath.Join(dir, "score.json")})
	assert.ErrorContains(t, rootCmd.Execute(), "invalid profile")
}

func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()
	university := writeFile(t, dir, "university.json", universityJSON)
	out := filepath.Join(dir, "plan.json")

	rootCmd.SetArgs([]string{"plan", "--university", university, "--fallback", "2025-10-01", "--out", out})
	require.NoError(t, rootCmd.Execute())

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc planOutputDoc
	require.NoError(t, json.Unmarshal(content, &doc))
	assert.Equal(t, "MIT", doc.University)
	assert.Equal(t, "2026-01-01", doc.BaseDeadline)
	require.NotEmpty(t, doc.Items)
	assert.Equal(t, 1, doc.Items[0].Order)
}

func TestPlanCommand_Fallback(t *testing.T) {
	dir := t.TempDir()
	university := writeFile(t, dir, "university.json", `{"id": "x", "name_en": "No Deadlines"}`)
	out := filepath.Join(dir, "plan.json")

	rootCmd.SetArgs([]string{"plan", "--university", university, "--fallback", "2025-10-01", "--out", out})
	require.NoError(t, rootCmd.Execute())

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc planOutputDoc
	require.NoError(t, json.Unmarshal(content, &doc))
	assert.Equal(t, "2025-10-01", doc.BaseDeadline)

	rootCmd.SetArgs([]string{"plan", "--university", university, "--fallback", "10/01/2025", "--out", out})
	assert.Error(t, rootCmd.Execute())
}
