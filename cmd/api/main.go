package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/c50bossio/6fb-workbook-api/internal/catalog"
	"github.com/c50bossio/6fb-workbook-api/internal/config"
	"github.com/c50bossio/6fb-workbook-api/internal/database"
	"github.com/c50bossio/6fb-workbook-api/internal/handler"
	"github.com/c50bossio/6fb-workbook-api/internal/middleware"
	"github.com/c50bossio/6fb-workbook-api/internal/models"
	"github.com/c50bossio/6fb-workbook-api/internal/repository"
	"github.com/c50bossio/6fb-workbook-api/internal/router"
	"github.com/c50bossio/6fb-workbook-api/internal/service"
	cloud "github.com/c50bossio/6fb-workbook-api/pkg/cloudinary"
	"github.com/c50bossio/6fb-workbook-api/pkg/transcription"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.ModuleProgress{}, &models.LessonProgress{}, &models.AssessmentProgress{},
		&models.ActivityRecord{}, &models.LiveSession{}, &models.SessionParticipant{},
		&models.SessionInvitation{}, &models.WorkbookNote{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	lessonCatalog, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("failed to load content catalog: %v", err)
	}

	publisher := service.NewNoopPublisher()
	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
		publisher = service.NewNATSPublisher(natsConn, logger)
	} else {
		logger.Warn().Msg("nats url not configured, events will not be published")
	}

	var storage service.FileStorage
	if cfg.CloudinaryCloudName != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		storage = uploader
	} else {
		logger.Warn().Msg("cloudinary not configured, audio uploads are disabled")
	}

	var transcriber service.Transcriber
	if cfg.OpenAIAPIKey != "" {
		whisper, err := transcription.NewWhisperTranscriber(transcription.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.TranscriptionModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create transcriber: %v", err)
		}
		transcriber = whisper
	} else {
		logger.Warn().Msg("openai key not configured, audio transcription is disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	lessonRepo := repository.NewLessonProgressRepository(db)
	moduleRepo := repository.NewModuleProgressRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	progressService := service.NewProgressService(lessonRepo, moduleRepo, assessmentRepo, activityRepo, lessonCatalog, publisher, validate, logger)
	liveSessionService := service.NewLiveSessionService(sessionRepo, participantRepo, invitationRepo, activityRepo, publisher, validate, logger)
	analyticsService := service.NewAnalyticsService(moduleRepo, lessonRepo, activityRepo, redisClient, cfg.AnalyticsCacheTTL, logger)
	noteService := service.NewNoteService(noteRepo, activityRepo, storage, transcriber, cfg.AudioMaxSizeMB, validate, logger)
	activityService := service.NewActivityService(activityRepo, validate, logger)

	// Progress events change the numbers analytics reports, so drop the
	// cached windows for that user as soon as one lands.
	if natsConn != nil {
		if _, err := natsConn.Subscribe("workbook.progress.>", func(msg *nats.Msg) {
			var event service.Event
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				logger.Warn().Err(err).Str("subject", msg.Subject).Msg("decode progress event")
				return
			}
			if event.UserID != "" {
				analyticsService.Invalidate(context.Background(), event.UserID)
			}
		}); err != nil {
			log.Fatalf("failed to subscribe to progress events: %v", err)
		}
	}

	progressHandler := handler.NewProgressHandler(progressService, logger)
	liveSessionHandler := handler.NewLiveSessionHandler(liveSessionService, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)
	noteHandler := handler.NewNoteHandler(noteService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.AudioMaxSizeMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ProgressHandler:    progressHandler,
		LiveSessionHandler: liveSessionHandler,
		AnalyticsHandler:   analyticsHandler,
		NoteHandler:        noteHandler,
		ActivityHandler:    activityHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
