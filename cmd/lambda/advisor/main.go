// Advisor Lambda entry point: essay feedback and admissions chat
package main

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"admissions-engine/internal/config"
	"admissions-engine/internal/handlers"
	"admissions-engine/internal/services/advisor"
	"admissions-engine/internal/services/database"
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

	adv, err := advisor.New(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Fatal("Failed to create advisor", zap.Error(err))
	}
	defer adv.Close()

	handler := handlers.NewAdvisorHandler(adv, database.NewProfileRepository(db), database.NewUniversityRepository(db))

	// One function serves both routes
	lambda.Start(func(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		if strings.HasSuffix(request.Path, "/essay-feedback") {
			return handler.HandleEssayFeedback(ctx, request)
		}
		return handler.HandleChat(ctx, request)
	})
}
