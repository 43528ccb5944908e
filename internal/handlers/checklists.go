package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"admissions-engine/internal/metrics"
	"admissions-engine/internal/models"
	"admissions-engine/internal/services/planner"
	"admissions-engine/internal/utils"
)

// Path parameter names used by the checklist routes.
const (
	ChecklistIDParam = "checklistId"
	ItemIDParam      = "itemId"
)

// ChecklistHandler manages application checklists.
//
//	GET    /checklists                           list the caller's checklists
//	POST   /checklists                           generate a checklist for a university
//	POST   /checklists/{checklistId}/items       add a custom item
//	PATCH  /checklists/items/{itemId}            update status, deadline or order
//	DELETE /checklists/items/{itemId}            remove an item
type ChecklistHandler struct {
	checklists   ChecklistStore
	universities UniversityReader
	planner      *planner.Planner
	now          func() time.Time
}

// NewChecklistHandler creates a new checklist handler.
func NewChecklistHandler(checklists ChecklistStore, universities UniversityReader) *ChecklistHandler {
	return &ChecklistHandler{
		checklists:   checklists,
		universities: universities,
		planner:      planner.NewPlanner(),
		now:          time.Now,
	}
}

// Handle routes checklist requests by method and path parameters.
func (h *ChecklistHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("GET,POST,PATCH,DELETE")

	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers), nil
	}

	user := userID(request)
	if user == "" {
		return errorResponse(headers, http.StatusUnauthorized, "Missing "+UserIDHeader+" header")
	}

	checklistID := request.PathParameters[ChecklistIDParam]
	itemID := request.PathParameters[ItemIDParam]

	switch {
	case request.HTTPMethod == http.MethodGet:
		return h.list(ctx, headers, user)
	case request.HTTPMethod == http.MethodPost && checklistID != "":
		return h.addItem(ctx, headers, user, checklistID, request)
	case request.HTTPMethod == http.MethodPost:
		return h.create(ctx, headers, user, request)
	case request.HTTPMethod == http.MethodPatch && itemID != "":
		return h.updateItem(ctx, headers, user, itemID, request)
	case request.HTTPMethod == http.MethodDelete && itemID != "":
		return h.deleteItem(ctx, headers, user, itemID)
	case request.HTTPMethod == http.MethodPatch, request.HTTPMethod == http.MethodDelete:
		return errorResponse(headers, http.StatusBadRequest, "Missing path parameter: "+ItemIDParam)
	default:
		return errorResponse(headers, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *ChecklistHandler) create(ctx context.Context, headers map[string]string, user string, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()

	var req models.CreateChecklistRequest
	if err := decodeBody(request, &req); err != nil {
		return errorResponse(headers, http.StatusBadRequest, err.Error())
	}

	exists, err := h.checklists.Exists(ctx, user, req.UniversityID)
	if err != nil {
		return failure(headers, err, "check existing checklist")
	}
	if exists {
		return failure(headers, models.ErrChecklistExists, "create checklist")
	}

	university, err := h.universities.GetByID(ctx, req.UniversityID)
	if err != nil {
		return failure(headers, err, "load university")
	}

	base, scheduled := h.planner.Plan(university, h.now())

	checklist := &models.Checklist{
		UserID:       user,
		UniversityID: university.ID,
		BaseDeadline: base,
		Items:        make([]models.ChecklistItem, 0, len(scheduled)),
	}
	for _, s := range scheduled {
		checklist.Items = append(checklist.Items, models.ChecklistItem{
			Title:       s.Title,
			Description: s.Description,
			Category:    s.Category,
			Status:      models.ItemStatusPending,
			Order:       s.Order,
			Deadline:    s.Deadline,
		})
	}

	if err := h.checklists.CreateWithItems(ctx, checklist); err != nil {
		return failure(headers, err, "create checklist")
	}

	metrics.ChecklistsCreated.Inc()
	metrics.ChecklistItemsGenerated.Observe(float64(len(checklist.Items)))
	logger.Info("Created checklist",
		zap.String("userID", user),
		zap.String("universityID", university.ID),
		zap.String("checklistID", checklist.ID),
		zap.Int("items", len(checklist.Items)),
		zap.Time("baseDeadline", base),
	)

	result := checklist.WithProgress()
	result.UniversityName = university.NameEn
	return jsonResponse(headers, http.StatusCreated, result)
}

func (h *ChecklistHandler) list(ctx context.Context, headers map[string]string, user string) (events.APIGatewayProxyResponse, error) {
	checklists, err := h.checklists.ListByUser(ctx, user)
	if err != nil {
		return failure(headers, err, "list checklists")
	}
	if checklists == nil {
		checklists = []models.ChecklistWithProgress{}
	}
	return jsonResponse(headers, http.StatusOK, checklists)
}

func (h *ChecklistHandler) addItem(ctx context.Context, headers map[string]string, user, checklistID string, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.CustomItemRequest
	if err := decodeBody(request, &req); err != nil {
		return errorResponse(headers, http.StatusBadRequest, err.Error())
	}

	item := &models.ChecklistItem{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      models.ItemStatusPending,
		Order:       models.CustomItemOrder,
		Deadline:    req.Deadline,
		IsCustom:    true,
	}
	if err := h.checklists.AddItem(ctx, user, checklistID, item); err != nil {
		return failure(headers, err, "add checklist item")
	}

	return jsonResponse(headers, http.StatusCreated, item)
}

func (h *ChecklistHandler) updateItem(ctx context.Context, headers map[string]string, user, itemID string, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.UpdateItemRequest
	if err := decodeBody(request, &req); err != nil {
		return errorResponse(headers, http.StatusBadRequest, err.Error())
	}
	if req.Status == nil && req.Deadline == nil && !req.ClearDeadline && req.Order == nil {
		return errorResponse(headers, http.StatusBadRequest, "Nothing to update")
	}

	item, err := h.checklists.UpdateItem(ctx, user, itemID, &req)
	if err != nil {
		return failure(headers, err, "update checklist item")
	}
	return jsonResponse(headers, http.StatusOK, item)
}

func (h *ChecklistHandler) deleteItem(ctx context.Context, headers map[string]string, user, itemID string) (events.APIGatewayProxyResponse, error) {
	if err := h.checklists.DeleteItem(ctx, user, itemID); err != nil {
		return failure(headers, err, "delete checklist item")
	}
	return jsonResponse(headers, http.StatusOK, map[string]string{"message": "Item deleted"})
}
