package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"admissions-engine/internal/utils"
)

// Workflow types accepted by TriggerHandler.
const (
	WorkflowReminders     = "reminders"
	WorkflowCatalogImport = "catalog_import"
)

// TriggerHandler runs the background jobs on demand, for operators and local
// testing. Either job may be left nil when it is not deployed.
type TriggerHandler struct {
	reminders *DeadlineReminderHandler
	importer  *CatalogImportHandler
	bucket    string
}

// NewTriggerHandler creates a new trigger handler. bucket is the default
// bucket for catalog imports.
func NewTriggerHandler(reminders *DeadlineReminderHandler, importer *CatalogImportHandler, bucket string) *TriggerHandler {
	return &TriggerHandler{reminders: reminders, importer: importer, bucket: bucket}
}

// TriggerRequest is the request body for triggering a workflow.
type TriggerRequest struct {
	WorkflowType string `json:"workflow_type" validate:"omitempty,oneof=reminders catalog_import"`
	Bucket       string `json:"bucket,omitempty"`
	Key          string `json:"key,omitempty"`
}

// TriggerResponse is the response for a workflow trigger request.
type TriggerResponse struct {
	Message string      `json:"message"`
	Result  interface{} `json:"result,omitempty"`
}

// Handle processes API Gateway requests to trigger workflows.
func (h *TriggerHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()
	headers := corsHeaders("POST")

	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers), nil
	}

	var req TriggerRequest
	if err := decodeBody(request, &req); err != nil {
		return errorResponse(headers, http.StatusBadRequest, err.Error())
	}
	if req.WorkflowType == "" {
		req.WorkflowType = WorkflowReminders
	}

	var result interface{}
	var err error

	switch req.WorkflowType {
	case WorkflowReminders:
		if h.reminders == nil {
			return errorResponse(headers, http.StatusServiceUnavailable, "Reminder workflow is not configured")
		}
		result, err = h.reminders.Handle(ctx, events.CloudWatchEvent{
			DetailType: "Manual Trigger",
			Source:     "admissions-engine.trigger",
			Time:       time.Now().UTC(),
		})

	case WorkflowCatalogImport:
		if h.importer == nil {
			return errorResponse(headers, http.StatusServiceUnavailable, "Catalog import workflow is not configured")
		}
		if req.Key == "" {
			return errorResponse(headers, http.StatusBadRequest, "Missing required field: key")
		}
		bucket := req.Bucket
		if bucket == "" {
			bucket = h.bucket
		}
		result, err = h.importer.Handle(ctx, s3PutEvent(bucket, req.Key))
	}

	if err != nil {
		logger.Error("Failed to run workflow",
			zap.String("workflowType", req.WorkflowType),
			zap.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, fmt.Sprintf("Failed to run %s workflow", req.WorkflowType))
	}

	logger.Info("Triggered workflow", zap.String("workflowType", req.WorkflowType))

	return jsonResponse(headers, http.StatusOK, TriggerResponse{
		Message: fmt.Sprintf("Successfully triggered %s workflow", req.WorkflowType),
		Result:  result,
	})
}

// s3PutEvent builds the event S3 would deliver for an upload of key.
func s3PutEvent(bucket, key string) events.S3Event {
	return events.S3Event{Records: []events.S3EventRecord{{
		EventName: "ObjectCreated:Put",
		S3: events.S3Entity{
			Bucket: events.S3Bucket{Name: bucket},
			Object: events.S3Object{Key: key},
		},
	}}}
}
