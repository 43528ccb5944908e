// Deadline Reminder Lambda entry point, triggered on a schedule
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"admissions-engine/internal/config"
	"admissions-engine/internal/handlers"
	"admissions-engine/internal/services/database"
	"admissions-engine/internal/services/ses"
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

	sender, err := ses.NewService(context.Background(), cfg.AWSRegion, cfg.SESSenderEmail)
	if err != nil {
		logger.Fatal("Failed to create SES service", zap.Error(err))
	}

	handler := handlers.NewDeadlineReminderHandler(
		database.NewChecklistRepository(db),
		sender,
		cfg.ReminderWindowDays,
		cfg.DashboardURL,
	)

	lambda.Start(handler.Handle)
}
