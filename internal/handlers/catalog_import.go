package handlers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"admissions-engine/internal/metrics"
	"admissions-engine/internal/utils"
)

// maxReportedErrors limits the row errors echoed back in an import result.
const maxReportedErrors = 10

// CatalogImportHandler loads university catalog CSVs dropped into S3.
type CatalogImportHandler struct {
	objects ObjectStore
	catalog CatalogStore
	parser  *utils.CSVParser
}

// NewCatalogImportHandler creates a new catalog import handler.
func NewCatalogImportHandler(objects ObjectStore, catalog CatalogStore) *CatalogImportHandler {
	return &CatalogImportHandler{
		objects: objects,
		catalog: catalog,
		parser:  utils.NewCSVParser(),
	}
}

// CatalogImportResult is the result of importing one catalog file.
type CatalogImportResult struct {
	Message    string   `json:"message"`
	Key        string   `json:"key,omitempty"`
	ArchiveKey string   `json:"archive_key,omitempty"`
	Upserted   int      `json:"upserted"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// Handle processes S3 put events for uploaded catalog files.
func (h *CatalogImportHandler) Handle(ctx context.Context, s3Event events.S3Event) (CatalogImportResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return CatalogImportResult{Message: "No records to process"}, nil
	}

	record := s3Event.Records[0]
	bucket := record.S3.Bucket.Name
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return CatalogImportResult{}, fmt.Errorf("failed to decode S3 key: %w", err)
	}
	if !strings.HasSuffix(strings.ToLower(key), ".csv") {
		logger.Info("Skipping non-CSV object", zap.String("key", key))
		return CatalogImportResult{Message: "Skipped non-CSV object", Key: key}, nil
	}

	logger.Info("Importing university catalog",
		zap.String("bucket", bucket),
		zap.String("key", key))

	content, err := h.objects.DownloadFile(ctx, bucket, key)
	if err != nil {
		logger.Error("Failed to download catalog", zap.Error(err))
		return CatalogImportResult{}, fmt.Errorf("failed to download catalog: %w", err)
	}

	universities, parseErrors := h.parser.ParseUniversities(content)
	metrics.CatalogRowsImported.WithLabelValues("invalid").Add(float64(len(parseErrors)))

	if len(universities) == 0 {
		return CatalogImportResult{
			Message: "No valid universities found in CSV",
			Key:     key,
			Failed:  len(parseErrors),
			Errors:  limitErrors(errorStrings(parseErrors)),
		}, nil
	}

	logger.Info("Parsed catalog",
		zap.Int("validRows", len(universities)),
		zap.Int("parseErrors", len(parseErrors)))

	result, err := h.catalog.BulkUpsert(ctx, universities)
	if err != nil {
		logger.Error("Failed to upsert universities", zap.Error(err))
		return CatalogImportResult{}, fmt.Errorf("failed to upsert universities: %w", err)
	}

	metrics.CatalogRowsImported.WithLabelValues("upserted").Add(float64(result.UpsertedCount))
	metrics.CatalogRowsImported.WithLabelValues("failed").Add(float64(result.FailedCount))
	logger.Info("Upserted universities",
		zap.Int("upserted", result.UpsertedCount),
		zap.Int("failed", result.FailedCount))

	archiveKey, err := h.objects.ArchiveFile(ctx, bucket, key)
	if err != nil {
		logger.Warn("Failed to archive catalog", zap.Error(err))
	}

	return CatalogImportResult{
		Message:    "Catalog imported successfully",
		Key:        key,
		ArchiveKey: archiveKey,
		Upserted:   result.UpsertedCount,
		Failed:     result.FailedCount + len(parseErrors),
		Errors:     limitErrors(append(errorStrings(parseErrors), result.Errors...)),
	}, nil
}

func errorStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}

func limitErrors(errs []string) []string {
	if len(errs) > maxReportedErrors {
		return errs[:maxReportedErrors]
	}
	return errs
}
