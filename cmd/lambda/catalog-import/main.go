// Catalog Import Lambda entry point, triggered by S3 uploads
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"admissions-engine/internal/config"
	"admissions-engine/internal/handlers"
	"admissions-engine/internal/services/database"
	s3service "admissions-engine/internal/services/s3"
	"admissions-engine/internal/utils"
)

func main() {
	cfg, _ := config.Load()
	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()
	logger := utils.GetLogger()

	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	objects, err := s3service.NewService(context.Background(), cfg.AWSRegion, cfg.CatalogBucket)
	if err != nil {
		logger.Fatal("Failed to create S3 service", zap.Error(err))
	}

	handler := handlers.NewCatalogImportHandler(objects, database.NewUniversityRepository(db))

	lambda.Start(handler.Handle)
}
