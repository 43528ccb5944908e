// Package handlers provides the API Gateway, S3 and scheduled handlers of the
// admissions engine. The local server reuses them through ServeHTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"admissions-engine/internal/models"
	"admissions-engine/internal/utils"
)

// UserIDHeader carries the authenticated user. Authentication itself happens upstream.
const UserIDHeader = "X-User-Id"

// corsHeaders returns the CORS headers for a handler allowing methods.
func corsHeaders(methods string) map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization," + UserIDHeader,
		"Access-Control-Allow-Methods": methods + ",OPTIONS",
		"Content-Type":                 "application/json",
	}
}

func preflight(headers map[string]string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
	}
}

// jsonResponse marshals data as the response body.
func jsonResponse(headers map[string]string, statusCode int, data interface{}) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return errorResponse(headers, http.StatusInternalServerError, "Failed to encode response")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// errorResponse creates an error response.
func errorResponse(headers map[string]string, statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(map[string]string{
		"error":   http.StatusText(statusCode),
		"message": message,
	})

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrProfileNotFound),
		errors.Is(err, models.ErrUniversityNotFound),
		errors.Is(err, models.ErrChecklistNotFound),
		errors.Is(err, models.ErrChecklistItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrChecklistExists):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrEmptyUserID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// failure logs unexpected errors and turns err into a response. Internal
// details are not leaked to the caller.
func failure(headers map[string]string, err error, action string) (events.APIGatewayProxyResponse, error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		utils.GetLogger().Error("Request failed", zap.String("action", action), zap.Error(err))
		return errorResponse(headers, status, "Failed to "+action)
	}
	return errorResponse(headers, status, err.Error())
}

// headerValue looks a header up case-insensitively. API Gateway may lowercase names.
func headerValue(request events.APIGatewayProxyRequest, name string) string {
	if v, ok := request.Headers[name]; ok {
		return v
	}
	for k, v := range request.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func userID(request events.APIGatewayProxyRequest) string {
	return strings.TrimSpace(headerValue(request, UserIDHeader))
}

// decodeBody unmarshals and validates a JSON request body.
func decodeBody(request events.APIGatewayProxyRequest, dst interface{}) error {
	if strings.TrimSpace(request.Body) == "" {
		return fmt.Errorf("%w: request body is empty", models.ErrInvalidInput)
	}
	if err := json.Unmarshal([]byte(request.Body), dst); err != nil {
		return fmt.Errorf("%w: invalid JSON in request body", models.ErrInvalidInput)
	}
	return models.ValidateRequest(dst)
}
