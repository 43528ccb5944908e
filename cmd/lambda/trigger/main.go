// Workflow Trigger Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"admissions-engine/internal/config"
	"admissions-engine/internal/handlers"
	"admissions-engine/internal/services/database"
	s3service "admissions-engine/internal/services/s3"
	"admissions-engine/internal/services/ses"
	"admissions-engine/internal/utils"
)

func main() {
	cfg, _ := config.Load()
	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()
	logger := utils.GetLogger()
	ctx := context.Background()

	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	sender, err := ses.NewService(ctx, cfg.AWSRegion, cfg.SESSenderEmail)
	if err != nil {
		logger.Fatal("Failed to create SES service", zap.Error(err))
	}
	objects, err := s3service.NewService(ctx, cfg.AWSRegion, cfg.CatalogBucket)
	if err != nil {
		logger.Fatal("Failed to create S3 service", zap.Error(err))
	}

	handler := handlers.NewTriggerHandler(
		handlers.NewDeadlineReminderHandler(database.NewChecklistRepository(db), sender, cfg.ReminderWindowDays, cfg.DashboardURL),
		handlers.NewCatalogImportHandler(objects, database.NewUniversityRepository(db)),
		cfg.CatalogBucket,
	)

	lambda.Start(handler.Handle)
}
