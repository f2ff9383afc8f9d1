package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-result-api/internal/config"
	"github.com/noah-isme/gema-result-api/internal/database"
	"github.com/noah-isme/gema-result-api/internal/handler"
	"github.com/noah-isme/gema-result-api/internal/middleware"
	"github.com/noah-isme/gema-result-api/internal/printing"
	"github.com/noah-isme/gema-result-api/internal/render"
	"github.com/noah-isme/gema-result-api/internal/repository"
	"github.com/noah-isme/gema-result-api/internal/result"
	"github.com/noah-isme/gema-result-api/internal/router"
	"github.com/noah-isme/gema-result-api/internal/service"
	cloud "github.com/noah-isme/gema-result-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, result events go to redis only")
		} else {
			defer natsConn.Drain()
		}
	}

	var uploader printing.Uploader
	if cfg.ArchiveEnabled() {
		archive, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = archive
	}

	renderer, err := render.New()
	if err != nil {
		log.Fatalf("failed to load report templates: %v", err)
	}
	printer := printing.NewOrchestrator(renderer, printing.Options{
		SettleTimeout: cfg.PrintSettleTimeout,
		AutoPrint:     cfg.PrintAutoPrint,
	}, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	sheetRepo := repository.NewResultSheetRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	events := service.NewResultEventPublisher(redisClient, cfg.ResultsChannel, natsConn, logger)
	feed := service.NewResultFeed(redisClient, cfg.ResultsChannel, natsConn, logger)
	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()
	feed.Start(feedCtx)

	resultService := service.NewResultService(studentRepo, assessmentRepo, sheetRepo, attendanceRepo, printer, schoolIdentity(cfg.School), logger)
	sheetService := service.NewResultSheetService(studentRepo, sheetRepo, validate, events, logger)
	assessmentService := service.NewAssessmentService(studentRepo, assessmentRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    cfg.AccessLog,
	})
	router.Register(app, cfg, router.Dependencies{
		ResultHandler:      handler.NewResultHandler(resultService, uploader, validate, logger),
		ResultSheetHandler: handler.NewResultSheetHandler(sheetService, logger),
		AssessmentHandler:  handler.NewAssessmentHandler(assessmentService, logger),
		ResultFeedHandler:  handler.NewResultFeedHandler(feed, logger),
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func schoolIdentity(school config.School) result.School {
	return result.School{
		Name:    school.Name,
		Address: school.Address,
		Motto:   school.Motto,
		Phone:   school.Phone,
		Email:   school.Email,
		LogoURL: school.LogoURL,
	}
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
