package main

import (
	"github.com/Growthfyi/squeak/internal/auth"
	"github.com/Growthfyi/squeak/internal/handler"
	"github.com/Growthfyi/squeak/internal/middleware"
	"github.com/Growthfyi/squeak/internal/model"
	"github.com/Growthfyi/squeak/internal/notify"
	"github.com/Growthfyi/squeak/internal/repository"
	"github.com/Growthfyi/squeak/internal/slackimport"
	"github.com/Growthfyi/squeak/internal/upload"
	"github.com/Growthfyi/squeak/pkg/config"
	"github.com/Growthfyi/squeak/pkg/database"
	"github.com/Growthfyi/squeak/pkg/jwtutil"
	"github.com/Growthfyi/squeak/pkg/logger"
	"github.com/Growthfyi/squeak/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{Level: cfg.Log.Level, Environment: cfg.Server.Env}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting squeak API...", cfg.LogConfig()...)

	// Initialize database
	db, err := database.Init(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db,
		&model.Organization{},
		&model.SqueakConfig{},
		&model.Profile{},
		&model.ProfileReadonly{},
		&model.Question{},
		&model.Reply{},
		&model.Topic{},
		&model.TopicGroup{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established")

	// Repositories
	questions := repository.NewQuestionRepo(db)
	profiles := repository.NewProfileRepo(db)
	configs := repository.NewConfigRepo(db)
	topics := repository.NewTopicRepo(db)

	// External collaborators
	sessions := auth.NewResolver(jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	}))
	notifier := notify.NewSlackNotifier(cfg.Slack.BotToken, configs)
	importer := slackimport.NewImporter(cfg.Slack.BotToken, questions)
	uploader := upload.NewCloudinaryClient(
		cfg.Cloudinary.UploadURL,
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.APIKey,
		cfg.Cloudinary.APISecret,
	)

	// Handlers
	questionHandler := handler.NewQuestionHandler(questions, profiles, configs, sessions, notifier)
	registerHandler := handler.NewRegisterHandler(profiles, sessions)
	topicHandler := handler.NewTopicHandler(topics, profiles, sessions)
	imageHandler := handler.NewImageHandler(uploader, sessions)
	slackHandler := handler.NewSlackHandler(importer, profiles, sessions)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Widget-facing API
	api := e.Group("/api")
	api.GET("/question", questionHandler.Get)
	api.POST("/question", questionHandler.Create)
	api.POST("/register", registerHandler.Register)
	api.POST("/image", imageHandler.Upload)

	// Dashboard API - moderator access enforced per handler
	api.GET("/topics", topicHandler.List)
	api.PATCH("/topic", topicHandler.Patch)
	api.GET("/topic-groups", topicHandler.ListGroups)
	api.POST("/topic-groups", topicHandler.CreateGroup)
	api.GET("/slack/messages", slackHandler.Messages)
	api.POST("/slack/import", slackHandler.Import)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		notifier.Wait()
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
