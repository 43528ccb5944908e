package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	s3service "admissions-engine/internal/services/s3"
	"admissions-engine/internal/utils"
)

// uploadURLExpiry is how long a presigned catalog upload URL stays valid.
const uploadURLExpiry = time.Hour

// UploadPresigner issues presigned PUT URLs.
type UploadPresigner interface {
	PresignUpload(ctx context.Context, key string, expires time.Duration) (string, error)
}

// PresignedURLHandler issues upload URLs for university catalog CSVs. The
// upload lands under the prefix watched by CatalogImportHandler.
type PresignedURLHandler struct {
	presigner UploadPresigner
	now       func() time.Time
}

// NewPresignedURLHandler creates a new presigned URL handler.
func NewPresignedURLHandler(presigner UploadPresigner) *PresignedURLHandler {
	return &PresignedURLHandler{presigner: presigner, now: time.Now}
}

// PresignedURLResponse is the response structure for presigned URL requests.
type PresignedURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	S3Key     string `json:"s3Key"`
	ExpiresIn int    `json:"expiresIn"`
}

// Handle processes the API Gateway request for generating presigned URLs.
func (h *PresignedURLHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()
	headers := corsHeaders("GET")

	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers), nil
	}

	filename := request.QueryStringParameters["filename"]
	if filename == "" {
		filename = "catalog_" + uuid.New().String()[:8] + ".csv"
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return errorResponse(headers, http.StatusBadRequest, "Only CSV files are allowed")
	}

	key := s3service.UploadPrefix + h.now().UTC().Format("2006/01/02") + "/" + uuid.New().String() + "_" + sanitizeFilename(filename)

	url, err := h.presigner.PresignUpload(ctx, key, uploadURLExpiry)
	if err != nil {
		logger.Error("Failed to generate presigned URL", zap.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to generate upload URL")
	}

	return jsonResponse(headers, http.StatusOK, PresignedURLResponse{
		UploadURL: url,
		S3Key:     key,
		ExpiresIn: int(uploadURLExpiry.Seconds()),
	})
}

// sanitizeFilename keeps letters, digits, dots, dashes and underscores.
func sanitizeFilename(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := b.String()
	if len(safe) > 100 {
		safe = safe[:100]
	}
	return safe
}
