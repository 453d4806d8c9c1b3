package main

import (
	"context"
	"os"
	"time"

	"github.com/edupaper/authoring-service/internal/cache"
	"github.com/edupaper/authoring-service/internal/config"
	"github.com/edupaper/authoring-service/internal/handlers"
	"github.com/edupaper/authoring-service/internal/render"
	"github.com/edupaper/authoring-service/internal/repositories/postgres"
	"github.com/edupaper/authoring-service/internal/services"
	"github.com/edupaper/authoring-service/internal/storage"
	"github.com/edupaper/authoring-service/internal/utils"
	"github.com/edupaper/authoring-service/internal/validator"
	"github.com/edupaper/authoring-service/pkg"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.AutoMigrate(db); err != nil {
		logger.Error("Failed to migrate database schema", "error", err)
		os.Exit(1)
	}
	repo := postgres.NewRepository(db)

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		logger.Error("Failed to create cache logger", "error", err)
		os.Exit(1)
	}
	cacheService := cache.NewRedisCache(redisClient, zapLogger)

	eventPublisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer eventPublisher.Close()

	objectStore, err := storage.NewMinioStore(cfg.Storage)
	if err != nil {
		logger.Error("Failed to connect to object store", "error", err)
		os.Exit(1)
	}
	if err := objectStore.EnsureBucket(context.Background()); err != nil {
		logger.Error("Failed to prepare addendum bucket", "error", err)
		os.Exit(1)
	}
	uploadPolicy := storage.NewUploadPolicy(cfg.Storage)

	v := validator.New()
	normalizer := services.NewContentNormalizer(slogLogger)

	svcs := handlers.Services{
		Question:   services.NewQuestionService(repo, normalizer, slogLogger, v),
		Paper:      services.NewPaperService(repo, normalizer, slogLogger, v),
		Assessment: services.NewAssessmentService(repo, eventPublisher, slogLogger, v),
		Student:    services.NewStudentService(repo, slogLogger, v),
		Reference:  services.NewReferenceService(repo, cacheService, slogLogger, v),
		Addendum:   services.NewAddendumService(repo, objectStore, uploadPolicy, slogLogger, v),
		Export:     services.NewExportService(repo, slogLogger),
	}

	renderer := render.NewPDFRenderer(slogLogger)

	// Hourly sweep for assessments due within the next day.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := svcs.Assessment.PublishDueSoonReminders(context.Background(), 24*time.Hour); err != nil {
				logger.Error("Due soon sweep failed", "error", err)
			}
		}
	}()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(gin.Recovery())

	handlerManager := handlers.NewHandlerManager(svcs, renderer, eventPublisher, cfg.Casdoor, logger)
	handlerManager.SetupRoutes(router)

	logger.Info("Starting authoring service", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
