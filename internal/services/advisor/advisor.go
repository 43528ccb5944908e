// Package advisor gives admissions advice through a Gemini language model:
// essay feedback and free-form chat grounded in the student's profile.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"admissions-engine/internal/utils"
)

// ErrEmptyEssay is returned when there is nothing to review.
var ErrEmptyEssay = errors.New("essay is empty")

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// Advisor answers admissions questions. Without a generator it returns
// canned responses so local runs work without an API key.
type Advisor struct {
	gen Generator
}

// New creates an advisor backed by Gemini. An empty apiKey yields an offline advisor.
func New(ctx context.Context, apiKey, model string) (*Advisor, error) {
	if apiKey == "" {
		utils.GetLogger().Warn("GEMINI_API_KEY not set, advisor runs offline")
		return &Advisor{}, nil
	}

	gen, err := NewGeminiGenerator(ctx, apiKey, model)
	if err != nil {
		return nil, err
	}
	return &Advisor{gen: gen}, nil
}

// NewWithGenerator creates an advisor around any generator.
func NewWithGenerator(gen Generator) *Advisor {
	return &Advisor{gen: gen}
}

// Online reports whether a model is configured.
func (a *Advisor) Online() bool {
	return a.gen != nil
}

// Close releases the underlying client.
func (a *Advisor) Close() error {
	if a.gen != nil {
		return a.gen.Close()
	}
	return nil
}

// EvaluateEssay reviews an essay against an optional prompt. The model is
// told to comment, never to rewrite.
func (a *Advisor) EvaluateEssay(ctx context.Context, essay, prompt string) (string, error) {
	if strings.TrimSpace(essay) == "" {
		return "", ErrEmptyEssay
	}
	if a.gen == nil {
		return fmt.Sprintf("Essay feedback skipped - no API key configured. Word count: %d words.", WordCount(essay)), nil
	}

	feedback, err := a.gen.Generate(ctx, BuildEssayPrompt(essay, prompt))
	if err != nil {
		utils.GetLogger().Error("Essay evaluation failed", zap.Error(err))
		return "", fmt.Errorf("failed to evaluate essay: %w", err)
	}
	return feedback, nil
}

// Chat answers one student message in the context of their profile,
// shortlisted universities and earlier turns.
func (a *Advisor) Chat(ctx context.Context, message string, cc ChatContext) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", errors.New("message is empty")
	}
	if a.gen == nil {
		return "The admissions assistant is offline - no API key configured.", nil
	}

	reply, err := a.gen.Generate(ctx, BuildChatPrompt(message, cc))
	if err != nil {
		utils.GetLogger().Error("Advisor chat failed", zap.Error(err))
		return "", fmt.Errorf("failed to get response from assistant: %w", err)
	}
	return reply, nil
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// GeminiGenerator implements Generator with the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate sends one prompt and joins the text parts of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.4)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractText(resp)
}

// Close releases resources held by the client
func (g *GeminiGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
