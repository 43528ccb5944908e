package handlers

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"admissions-engine/internal/metrics"
	"admissions-engine/internal/models"
	"admissions-engine/internal/services/fitscore"
	"admissions-engine/internal/utils"
)

// FitScoreHandler scores a student against a university and stores the result.
type FitScoreHandler struct {
	profiles     ProfileStore
	universities UniversityReader
	scores       FitScoreStore
	engine       *fitscore.Engine
}

// NewFitScoreHandler creates a new fit score handler.
func NewFitScoreHandler(profiles ProfileStore, universities UniversityReader, scores FitScoreStore) *FitScoreHandler {
	return &FitScoreHandler{
		profiles:     profiles,
		universities: universities,
		scores:       scores,
		engine:       fitscore.NewEngine(),
	}
}

// Handle processes POST (compute) and GET (list stored scores) requests.
func (h *FitScoreHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("GET,POST")

	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers), nil
	}

	user := userID(request)
	if user == "" {
		return errorResponse(headers, http.StatusUnauthorized, "Missing "+UserIDHeader+" header")
	}

	switch request.HTTPMethod {
	case http.MethodPost:
		return h.calculate(ctx, headers, user, request)
	case http.MethodGet:
		scores, err := h.scores.ListByUser(ctx, user)
		if err != nil {
			return failure(headers, err, "list fit scores")
		}
		if scores == nil {
			scores = []*models.FitScore{}
		}
		return jsonResponse(headers, http.StatusOK, scores)
	default:
		return errorResponse(headers, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *FitScoreHandler) calculate(ctx context.Context, headers map[string]string, user string, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.FitScoreRequest
	if err := decodeBody(request, &req); err != nil {
		return errorResponse(headers, http.StatusBadRequest, err.Error())
	}

	profile, err := h.profiles.GetByUserID(ctx, user)
	if err != nil {
		return failure(headers, err, "load profile")
	}

	university, err := h.universities.GetByID(ctx, req.UniversityID)
	if err != nil {
		return failure(headers, err, "load university")
	}

	result := h.engine.Score(profile, university)

	stored, err := h.scores.Upsert(ctx, user, university.ID, result)
	if err != nil {
		return failure(headers, err, "save fit score")
	}

	metrics.FitScoresComputed.WithLabelValues(string(result.Category)).Inc()
	utils.GetLogger().Info("Computed fit score",
		zap.String("userID", user),
		zap.String("universityID", university.ID),
		zap.Int("score", result.Score),
		zap.String("category", string(result.Category)),
	)

	return jsonResponse(headers, http.StatusOK, stored)
}
