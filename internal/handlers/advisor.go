package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"admissions-engine/internal/models"
	"admissions-engine/internal/services/advisor"
	"admissions-engine/internal/utils"
)

// maxChatUniversities bounds the catalog context sent with a chat message.
const maxChatUniversities = 5

// EssayFeedbackRequest is the body of an essay review request.
type EssayFeedbackRequest struct {
	Essay  string `json:"essay" validate:"required,max=20000"`
	Prompt string `json:"prompt,omitempty" validate:"max=2000"`
}

// EssayFeedbackResponse carries the review.
type EssayFeedbackResponse struct {
	Feedback  string `json:"feedback"`
	WordCount int    `json:"wordCount"`
}

// ChatRequest is the body of an advisor chat message.
type ChatRequest struct {
	Message       string            `json:"message" validate:"required,max=4000"`
	UniversityIDs []string          `json:"universityIds,omitempty" validate:"max=20"`
	History       []advisor.Message `json:"history,omitempty" validate:"max=50"`
}

// ChatResponse carries the assistant reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// AdvisorHandler serves essay feedback and admissions chat.
type AdvisorHandler struct {
	advisor      *advisor.Advisor
	profiles     ProfileStore
	universities UniversityReader
}

// NewAdvisorHandler creates a new advisor handler.
func NewAdvisorHandler(a *advisor.Advisor, profiles ProfileStore, universities UniversityReader) *AdvisorHandler {
	return &AdvisorHandler{advisor: a, profiles: profiles, universities: universities}
}

// HandleEssayFeedback reviews an essay. The model comments and never rewrites.
func (h *AdvisorHandler) HandleEssayFeedback(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("POST")

	switch request.HTTPMethod {
	case http.MethodOptions:
		return preflight(headers), nil
	case http.MethodPost:
	default:
		return errorResponse(headers, http.StatusMethodNotAllowed, "Method not allowed")
	}

	var req EssayFeedbackRequest
	if err := decodeBody(request, &req); err != nil {
		return errorResponse(headers, http.StatusBadRequest, err.Error())
	}

	feedback, err := h.advisor.EvaluateEssay(ctx, req.Essay, req.Prompt)
	if errors.Is(err, advisor.ErrEmptyEssay) {
		return errorResponse(headers, http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return failure(headers, err, "evaluate essay")
	}

	return jsonResponse(headers, http.StatusOK, EssayFeedbackResponse{
		Feedback:  feedback,
		WordCount: advisor.WordCount(req.Essay),
	})
}

// HandleChat answers a message using the caller's profile and the named
// universities as context. Missing context is skipped, not an error.
func (h *AdvisorHandler) HandleChat(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("POST")
	logger := utils.GetLogger()

	switch request.HTTPMethod {
	case http.MethodOptions:
		return preflight(headers), nil
	case http.MethodPost:
	default:
		return errorResponse(headers, http.StatusMethodNotAllowed, "Method not allowed")
	}

	var req ChatRequest
	if err := decodeBody(request, &req); err != nil {
		return errorResponse(headers, http.StatusBadRequest, err.Error())
	}

	cc := advisor.ChatContext{History: req.History}

	ids := req.UniversityIDs
	if len(ids) > maxChatUniversities {
		ids = ids[:maxChatUniversities]
	}
	loaded := make([]*models.University, len(ids))

	// Lookups are independent; a failed one only drops that piece of context.
	g, gCtx := errgroup.WithContext(ctx)

	if user := userID(request); user != "" {
		g.Go(func() error {
			profile, err := h.profiles.GetByUserID(gCtx, user)
			switch {
			case err == nil:
				cc.Profile = profile
			case errors.Is(err, models.ErrProfileNotFound):
			default:
				logger.Warn("Failed to load profile for chat", zap.String("userID", user), zap.Error(err))
			}
			return nil
		})
	}

	for i, id := range ids {
		g.Go(func() error {
			id = strings.TrimSpace(id)
			u, err := h.universities.GetByID(gCtx, id)
			if err != nil {
				if !errors.Is(err, models.ErrUniversityNotFound) {
					logger.Warn("Failed to load university for chat", zap.String("universityID", id), zap.Error(err))
				}
				return nil
			}
			loaded[i] = u
			return nil
		})
	}

	_ = g.Wait()

	for _, u := range loaded {
		if u != nil {
			cc.Universities = append(cc.Universities, u)
		}
	}

	reply, err := h.advisor.Chat(ctx, req.Message, cc)
	if err != nil {
		return failure(headers, err, "get response from assistant")
	}

	return jsonResponse(headers, http.StatusOK, ChatResponse{Reply: reply})
}
