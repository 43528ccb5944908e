package handlers

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"admissions-engine/internal/models"
	"admissions-engine/internal/utils"
)

// ProfileRequest is the body of a profile update. The user row is created on
// first save.
type ProfileRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name,omitempty" validate:"max=200"`
	models.StudentProfile
}

// ProfileHandler reads and stores the caller's student profile.
type ProfileHandler struct {
	profiles ProfileStore
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profiles ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Handle processes GET and PUT requests for the caller's profile.
func (h *ProfileHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("GET,PUT")

	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers), nil
	}

	user := userID(request)
	if user == "" {
		return errorResponse(headers, http.StatusUnauthorized, "Missing "+UserIDHeader+" header")
	}

	switch request.HTTPMethod {
	case http.MethodGet:
		profile, err := h.profiles.GetByUserID(ctx, user)
		if err != nil {
			return failure(headers, err, "load profile")
		}
		return jsonResponse(headers, http.StatusOK, profile)

	case http.MethodPut:
		var req ProfileRequest
		if err := decodeBody(request, &req); err != nil {
			return errorResponse(headers, http.StatusBadRequest, err.Error())
		}

		if err := h.profiles.UpsertUser(ctx, user, req.Email, req.Name); err != nil {
			return failure(headers, err, "save user")
		}

		profile := req.StudentProfile
		profile.UserID = user
		if err := h.profiles.Upsert(ctx, &profile); err != nil {
			return failure(headers, err, "save profile")
		}

		utils.GetLogger().Info("Saved student profile", zap.String("userID", user))
		return jsonResponse(headers, http.StatusOK, &profile)

	default:
		return errorResponse(headers, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
