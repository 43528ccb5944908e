package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/models"
)

type fakeGenerator struct {
	prompts []string
	reply   string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeGenerator) Close() error { return nil }

func TestEvaluateEssay(t *testing.T) {
	gen := &fakeGenerator{reply: "Strong opening."}
	a := NewWithGenerator(gen)

	feedback, err := a.EvaluateEssay(context.Background(), "I built a robot that sorts recycling.", "Describe a challenge")
	require.NoError(t, err)
	assert.Equal(t, "Strong opening.", feedback)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Essay Prompt: Describe a challenge")
	assert.Contains(t, gen.prompts[0], "I built a robot that sorts recycling.")
	assert.Contains(t, gen.prompts[0], "DO NOT rewrite the essay")
	assert.Contains(t, gen.prompts[0], "Word Count: 7 words")
}

func TestEvaluateEssay_Errors(t *testing.T) {
	a := NewWithGenerator(&fakeGenerator{err: errors.New("quota exceeded")})

	_, err := a.EvaluateEssay(context.Background(), "  ", "")
	assert.ErrorIs(t, err, ErrEmptyEssay)

	_, err = a.EvaluateEssay(context.Background(), "essay text", "")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestOfflineAdvisor(t *testing.T) {
	a, err := New(context.Background(), "", "gemini-1.5-flash")
	require.NoError(t, err)
	assert.False(t, a.Online())

	feedback, err := a.EvaluateEssay(context.Background(), "one two three", "")
	require.NoError(t, err)
	assert.Contains(t, feedback, "3 words")

	reply, err := a.Chat(context.Background(), "Which schools?", ChatContext{})
	require.NoError(t, err)
	assert.Contains(t, reply, "offline")
	assert.NoError(t, a.Close())
}

func TestBuildEssayPrompt_WithoutPrompt(t *testing.T) {
	prompt := BuildEssayPrompt("My essay", "")
	assert.NotContains(t, prompt, "Essay Prompt:")
	assert.Contains(t, prompt, "Word Count: 2 words")
}

func TestChat_BuildsContext(t *testing.T) {
	gen := &fakeGenerator{reply: "Apply early."}
	a := NewWithGenerator(gen)

	regular := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	cc := ChatContext{
		Profile: &models.StudentProfile{
			GPA:              models.Float(3.8),
			IELTSTotal:       models.Float(7.5),
			MaxBudget:        models.Float(30000),
			NeedFinancialAid: true,
		},
		Universities: []*models.University{{
			NameEn:          "MIT",
			Country:         "USA",
			AvgSAT25:        models.Int(1520),
			AvgSAT75:        models.Int(1580),
			HasFullRide:     true,
			RegularDeadline: &regular,
		}},
		History: []Message{
			{Role: "user", Content: "Hi"},
			{Role: "assistant", Content: "Hello!"},
		},
	}

	reply, err := a.Chat(context.Background(), "Should I apply early?", cc)
	require.NoError(t, err)
	assert.Equal(t, "Apply early.", reply)

	prompt := gen.prompts[0]
	assert.Contains(t, prompt, SystemPrompt)
	assert.Contains(t, prompt, "- GPA: 3.80")
	assert.Contains(t, prompt, "- IELTS: 7.5")
	assert.Contains(t, prompt, "- Budget: $30000/year")
	assert.Contains(t, prompt, "MIT (USA):")
	assert.Contains(t, prompt, "- SAT Range: 1520-1580")
	assert.Contains(t, prompt, "- Regular Decision Deadline: 2025-01-01")
	assert.Contains(t, prompt, "Student: Hi\n\nAssistant: Hello!")
	assert.Contains(t, prompt, "Student Question: Should I apply early?")
}

func TestChat_EmptyMessage(t *testing.T) {
	_, err := NewWithGenerator(&fakeGenerator{}).Chat(context.Background(), " ", ChatContext{})
	assert.Error(t, err)
}

func TestProfileContext_SkipsUnknownFields(t *testing.T) {
	ctx := ProfileContext(&models.StudentProfile{SATTotal: models.Int(0)})
	assert.NotContains(t, ctx, "SAT")
	assert.NotContains(t, ctx, "Budget")
}

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("Hello, "), genai.Text("world")}},
	}}}
	text, err := extractText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", text)

	_, err = extractText(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = extractText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.Error(t, err)
}
