// Fit Score Lambda entry point
package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"admissions-engine/internal/config"
	"admissions-engine/internal/handlers"
	"admissions-engine/internal/services/database"
	"admissions-engine/internal/utils"
)

func main() {
	cfg, _ := config.Load()
	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	db, err := database.New(cfg)
	if err != nil {
		utils.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	handler := handlers.NewFitScoreHandler(
		database.NewProfileRepository(db),
		database.NewUniversityRepository(db),
		database.NewFitScoreRepository(db),
	)

	lambda.Start(handler.Handle)
}
