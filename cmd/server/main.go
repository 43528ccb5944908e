// Package main provides a local HTTP server for development and testing.
// It serves the same handlers as the Lambda functions, plus a direct catalog
// upload endpoint and Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"admissions-engine/internal/config"
	"admissions-engine/internal/handlers"
	"admissions-engine/internal/metrics"
	"admissions-engine/internal/models"
	"admissions-engine/internal/services/advisor"
	"admissions-engine/internal/services/database"
	s3service "admissions-engine/internal/services/s3"
	"admissions-engine/internal/services/ses"
	"admissions-engine/internal/utils"
)

// maxUploadBytes caps direct catalog uploads.
const maxUploadBytes = 10 << 20

// Server holds all dependencies
type Server struct {
	db           *database.DB
	universities *database.UniversityRepository
	parser       *utils.CSVParser
	config       *config.Config
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// UploadResponse contains direct catalog upload results
type UploadResponse struct {
	Upserted     int      `json:"upserted"`
	Failed       int      `json:"failed"`
	Errors       []string `json:"errors,omitempty"`
	ProcessingMs int64    `json:"processing_ms"`
}

func main() {
	cfg, _ := config.Load()
	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()
	logger := utils.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg)
	if err != nil {
		logger.Warn("Could not connect to database, only health and metrics are served", zap.Error(err))
	} else {
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			logger.Fatal("Failed to apply schema", zap.Error(err))
		}
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())

	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}
	health := handlers.NewHealthHandler(pinger, os.Getenv("SERVICE_VERSION"), cfg.Stage)
	route(mux, "/health", health.Handle)
	route(mux, "/api/health", health.Handle)

	if db != nil {
		server := &Server{
			db:           db,
			universities: database.NewUniversityRepository(db),
			parser:       utils.NewCSVParser(),
			config:       cfg,
		}
		if err := server.registerRoutes(ctx, mux); err != nil {
			logger.Fatal("Failed to set up routes", zap.Error(err))
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%s", cfg.Port),
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("Admissions Engine API Server",
		zap.String("addr", httpServer.Addr),
		zap.String("health", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
		zap.String("metrics", fmt.Sprintf("http://localhost:%s/metrics", cfg.Port)))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// route registers an API handler under pattern, instrumented with request metrics.
func route(mux *http.ServeMux, pattern string, h handlers.APIFunc, pathParams ...string) {
	mux.HandleFunc(pattern, metrics.Instrument(pattern, handlers.ServeHTTP(h, pathParams...)))
}

func (s *Server) registerRoutes(ctx context.Context, mux *http.ServeMux) error {
	logger := utils.GetLogger()

	profiles := database.NewProfileRepository(s.db)
	checklistRepo := database.NewChecklistRepository(s.db)

	adv, err := advisor.New(ctx, s.config.GeminiAPIKey, s.config.GeminiModel)
	if err != nil {
		return fmt.Errorf("failed to create advisor: %w", err)
	}
	context.AfterFunc(ctx, func() { _ = adv.Close() })

	profile := handlers.NewProfileHandler(profiles)
	fitScores := handlers.NewFitScoreHandler(profiles, s.universities, database.NewFitScoreRepository(s.db))
	checklists := handlers.NewChecklistHandler(checklistRepo, s.universities)
	advice := handlers.NewAdvisorHandler(adv, profiles, s.universities)

	route(mux, "/api/profile", profile.Handle)
	route(mux, "/api/fit-scores", fitScores.Handle)
	route(mux, "/api/checklists", checklists.Handle)
	route(mux, "/api/checklists/{checklistId}/items", checklists.Handle, handlers.ChecklistIDParam)
	route(mux, "/api/checklists/items/{itemId}", checklists.Handle, handlers.ItemIDParam)
	route(mux, "/api/essay-feedback", advice.HandleEssayFeedback)
	route(mux, "/api/chat", advice.HandleChat)

	mux.HandleFunc("/api/universities", metrics.Instrument("/api/universities", s.universitiesHandler))
	mux.HandleFunc("/api/catalog/upload", metrics.Instrument("/api/catalog/upload", s.uploadHandler))

	// Background jobs need AWS; without credentials they are simply not mounted
	var reminders *handlers.DeadlineReminderHandler
	if sender, err := ses.NewService(ctx, s.config.AWSRegion, s.config.SESSenderEmail); err != nil {
		logger.Warn("SES unavailable, reminders disabled", zap.Error(err))
	} else {
		reminders = handlers.NewDeadlineReminderHandler(checklistRepo, sender, s.config.ReminderWindowDays, s.config.DashboardURL)
	}

	var importer *handlers.CatalogImportHandler
	if objects, err := s3service.NewService(ctx, s.config.AWSRegion, s.config.CatalogBucket); err != nil {
		logger.Warn("S3 unavailable, catalog import from S3 disabled", zap.Error(err))
	} else {
		importer = handlers.NewCatalogImportHandler(objects, s.universities)
		route(mux, "/api/catalog/upload-url", handlers.NewPresignedURLHandler(objects).Handle)
	}

	route(mux, "/api/trigger", handlers.NewTriggerHandler(reminders, importer, s.config.CatalogBucket).Handle)

	return nil
}

func (s *Server) universitiesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	universities, err := s.universities.List(r.Context())
	if err != nil {
		utils.GetLogger().Error("Failed to list universities", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch universities",
		})
		return
	}
	if universities == nil {
		universities = []*models.University{}
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    universities,
	})
}

// uploadHandler imports a catalog CSV posted as multipart form field "file",
// bypassing S3.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	logger := utils.GetLogger()
	start := time.Now()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Failed to parse form: " + err.Error(),
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "No file provided",
		})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Failed to read file",
		})
		return
	}

	logger.Info("Catalog upload received",
		zap.String("filename", header.Filename),
		zap.Int("size", len(content)))

	universities, parseErrors := s.parser.ParseUniversities(string(content))
	resp := UploadResponse{Failed: len(parseErrors)}
	for _, e := range parseErrors {
		resp.Errors = append(resp.Errors, e.Error())
	}

	if len(universities) > 0 {
		result, err := s.universities.BulkUpsert(r.Context(), universities)
		if err != nil {
			logger.Error("Failed to upsert universities", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, Response{
				Success: false,
				Error:   "Failed to store universities",
			})
			return
		}
		resp.Upserted = result.UpsertedCount
		resp.Failed += result.FailedCount
		resp.Errors = append(resp.Errors, result.Errors...)
	}
	resp.ProcessingMs = time.Since(start).Milliseconds()

	status := http.StatusOK
	if resp.Upserted == 0 {
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, Response{
		Success: resp.Upserted > 0,
		Message: fmt.Sprintf("Imported %d universities", resp.Upserted),
		Data:    resp,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
