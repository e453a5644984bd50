package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook/internal/config"
	"github.com/noah-isme/gema-gradebook/internal/database"
	"github.com/noah-isme/gema-gradebook/internal/handler"
	"github.com/noah-isme/gema-gradebook/internal/middleware"
	"github.com/noah-isme/gema-gradebook/internal/observability"
	"github.com/noah-isme/gema-gradebook/internal/repository"
	"github.com/noah-isme/gema-gradebook/internal/router"
	"github.com/noah-isme/gema-gradebook/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AppEnv == "development" {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to access database pool")
	}
	defer sqlDB.Close()

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, overall grade cache disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, grade change events disabled")
		natsConn = nil
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	validate := service.NewValidator()
	engine := service.NewEngine(cfg.GradingScale, logger)
	publisher := service.NewNATSPublisher(natsConn, cfg.NATSSubject, logger)
	if publisher != nil {
		logger.Info().Str("subject", publisher.Subject()).Msg("publishing grade changes")
	}
	gradebook := service.NewGradebook(
		repository.NewStore(db),
		engine,
		service.NewRedisGradeCache(redisClient, cfg.GradeCacheTTL, logger),
		publisher,
		logger,
	)

	studentService := service.NewStudentService(gradebook, validate, logger)
	classService := service.NewClassService(gradebook, validate, logger)
	assignmentService := service.NewAssignmentService(gradebook, validate, logger)
	scoreService := service.NewScoreService(gradebook, validate, logger)
	enrollmentService := service.NewEnrollmentService(gradebook, validate, logger)
	overallGradeService := service.NewOverallGradeService(gradebook, validate, logger)

	if cfg.RecomputeOnStart {
		if _, err := overallGradeService.RecomputeAll(context.Background()); err != nil {
			logger.Fatal().Err(err).Msg("failed to rebuild overall grades")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	deps := router.Dependencies{
		StudentHandler:      handler.NewStudentHandler(studentService, logger),
		ClassHandler:        handler.NewClassHandler(classService, logger),
		AssignmentHandler:   handler.NewAssignmentHandler(assignmentService, logger),
		ScoreHandler:        handler.NewScoreHandler(scoreService, middleware.RateLimit("scores-import", cfg.ImportRateLimit, time.Minute), logger),
		EnrollmentHandler:   handler.NewEnrollmentHandler(enrollmentService, logger),
		OverallGradeHandler: handler.NewOverallGradeHandler(overallGradeService, logger),
		DatabasePing:        sqlDB.PingContext,
	}
	if cfg.AuthEnabled() {
		deps.JWTMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSOrigins})
	observability.Mount(app)
	router.Register(app, cfg, deps)

	go func() {
		logger.Info().
			Str("address", cfg.HTTPAddress()).
			Str("driver", cfg.DatabaseDriver).
			Str("grading_scale", engine.Scale().String()).
			Bool("auth", cfg.AuthEnabled()).
			Msg("gradebook api listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
