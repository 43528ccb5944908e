// Health Check Lambda entry point
package main

import (
	"os"

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

	// Report "not configured" rather than failing when the database is unreachable
	var pinger handlers.Pinger
	db, err := database.New(cfg)
	if err != nil {
		utils.GetLogger().Warn("Database unavailable", zap.Error(err))
	} else {
		defer db.Close()
		pinger = db
	}

	handler := handlers.NewHealthHandler(pinger, os.Getenv("SERVICE_VERSION"), cfg.Stage)

	lambda.Start(handler.Handle)
}
