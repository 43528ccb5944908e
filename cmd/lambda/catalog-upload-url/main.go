// Catalog Upload URL Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"admissions-engine/internal/config"
	"admissions-engine/internal/handlers"
	s3service "admissions-engine/internal/services/s3"
	"admissions-engine/internal/utils"
)

func main() {
	cfg, _ := config.Load()
	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	objects, err := s3service.NewService(context.Background(), cfg.AWSRegion, cfg.CatalogBucket)
	if err != nil {
		utils.GetLogger().Fatal("Failed to create S3 service", zap.Error(err))
	}

	handler := handlers.NewPresignedURLHandler(objects)

	lambda.Start(handler.Handle)
}
