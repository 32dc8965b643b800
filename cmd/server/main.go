package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	config "github.com/maheshrc27/socialpulse/configs"
	"github.com/maheshrc27/socialpulse/internal/api/handlers"
	"github.com/maheshrc27/socialpulse/internal/api/middleware"
	"github.com/maheshrc27/socialpulse/internal/database"
	job "github.com/maheshrc27/socialpulse/internal/jobs"
	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/queue"
	"github.com/maheshrc27/socialpulse/internal/repository"
	"github.com/maheshrc27/socialpulse/internal/service"
	"github.com/maheshrc27/socialpulse/pkg/logger"
	"github.com/robfig/cron"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.LoadConfig()
	logger.Init(cfg.LogLevel)
	if envErr != nil {
		slog.Warn("no .env file loaded", "error", envErr)
	}

	db, err := database.OpenPostgres(cfg.PostgresURI)
	if err != nil {
		fatal("failed to connect to postgres", err)
	}
	defer closeDB(db)

	mongoClient, mdb, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		fatal("failed to connect to mongo", err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.Migrate(startCtx, db); err != nil {
		fatal("failed to apply postgres schema", err)
	}
	if err := repository.EnsureScheduledPostIndexes(startCtx, mdb); err != nil {
		fatal("failed to create scheduled post indexes", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    service.MaxUploadSize + 1<<20,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("unhandled error", "path", c.Path(), "error", err)
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	settingsRepository := repository.NewSettingsRepository(db)
	apiKeyRepository := repository.NewApiKeyRepository(db)
	historyRepo := repository.NewPostingHistoryRepository(db)
	scheduledPostRepo := repository.NewScheduledPostRepository(mdb)
	analyticsRepo := repository.NewAnalyticsRepository(mdb)

	facebookService := service.NewFacebookService(*cfg, socialAccountRepo)
	instagramService := service.NewInstagramService(*cfg, socialAccountRepo)
	tiktokService := service.NewTiktokService(*cfg, socialAccountRepo)
	youtubeService := service.NewYoutubeService(*cfg, socialAccountRepo)

	connectors := map[string]service.AccountConnector{
		models.PlatformFacebook:  facebookService,
		models.PlatformInstagram: instagramService,
		models.PlatformTiktok:    tiktokService,
		models.PlatformYoutube:   youtubeService,
	}
	fetchers := map[string]service.AnalyticsFetcher{
		models.PlatformFacebook:  facebookService,
		models.PlatformInstagram: instagramService,
		models.PlatformTiktok:    tiktokService,
		models.PlatformYoutube:   youtubeService,
	}
	refreshers := map[string]service.TokenRefresher{
		models.PlatformInstagram: instagramService,
		models.PlatformTiktok:    tiktokService,
		models.PlatformYoutube:   youtubeService,
	}
	publishers := map[string]service.PlatformPublisher{
		models.PlatformFacebook: facebookService,
	}

	r2Storage, err := service.NewR2Storage(startCtx, *cfg)
	if err != nil {
		fatal("failed to configure R2 storage", err)
	}

	llm, err := service.NewLLM(*cfg)
	if err != nil {
		fatal("failed to configure Gemini client", err)
	}
	if llm == nil {
		slog.Warn("GEMINI_API_KEY not set, AI endpoints will return 502")
	}

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo, socialAccountRepo)
	platformService := service.NewPlatformService(*cfg, socialAccountRepo, connectors)
	settingsService := service.NewSettingsService(settingsRepository)
	apiKeyService := service.NewApiKeyService(apiKeyRepository)
	publisher := service.NewPublisher(scheduledPostRepo, socialAccountRepo, historyRepo, publishers)
	scheduledPostService := service.NewScheduledPostService(scheduledPostRepo, socialAccountRepo, settingsRepository, historyRepo, publisher, cfg.MaxPostRetries)
	analyticsService := service.NewAnalyticsService(analyticsRepo, socialAccountRepo, fetchers)
	aiService := service.NewAIService(llm, settingsRepository, analyticsRepo)
	mediaService := service.NewMediaService(r2Storage, mediaAssetRepo, cfg.R2.PublicURL)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)
	app.Post("/logout", auth.Logout)

	platform := handlers.NewPlatformHandler(platformService, *cfg)
	app.Get("/auth/:platform", authMiddleware.AuthMiddleware(), platform.AddSocialAccount)
	app.Get("/auth/:platform/callback", platform.CallbackHandler)

	cronHandler := handlers.NewCronHandler(publisher)
	app.Post("/cron/process-scheduled", middleware.CronSecret(cfg.CronSecret), cronHandler.ProcessScheduled)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)
	api.Delete("/user", user.RemoveUser)

	settings := handlers.NewSettingsHandler(settingsService)
	api.Get("/settings/info", settings.GetSettingsInfo)
	api.Post("/settings/update", settings.UpdateSettings)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	posts := handlers.NewScheduledPostHandler(scheduledPostService)
	api.Post("/posts/scheduled", posts.Create)
	api.Get("/posts/scheduled", posts.List)
	api.Get("/posts/scheduled/:id", posts.Get)
	api.Patch("/posts/scheduled/:id", posts.Update)
	api.Delete("/posts/scheduled/:id", posts.Cancel)
	api.Post("/posts/scheduled/:id/publish", posts.PublishNow)
	api.Post("/posts/publish", posts.PublishOnce)
	api.Get("/posts/history", posts.History)

	analytics := handlers.NewAnalyticsHandler(analyticsService)
	api.Get("/analytics", analytics.Overview)
	api.Get("/analytics/:platform", analytics.GetPlatformAnalytics)

	ai := handlers.NewAIHandler(aiService)
	api.Post("/ai/caption", ai.GenerateCaption)
	api.Post("/ai/recommendations", ai.Recommendations)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.Upload)
	api.Get("/media", media.List)

	// social accounts api routes
	api.Get("/accounts", platform.ListSocialAccounts)
	api.Post("/accounts/remove", platform.DeleteSocialAccount)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, refreshers)
	processDueJob := job.NewProcessDueJob(queue.NewClient(client))

	c := cron.New()
	if err := c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens); err != nil {
		fatal("invalid token refresh schedule", err)
	}
	if err := c.AddFunc(cfg.CronInterval, processDueJob.Run); err != nil {
		fatal("invalid CRON_INTERVAL", err)
	}
	c.Start()
	defer c.Stop()

	// queue
	queueW := queue.NewQueue(publisher)
	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 1,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskTypeProcessScheduledPosts, queueW.HandleProcessDueTask)

	slog.Info("starting asynq worker")
	if err := server.Start(mux); err != nil {
		fatal("could not start asynq server", err)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			fatal("failed to start server", err)
		}
	}()
	slog.Info("server is running", "port", cfg.Port)

	gracefulShutdown(app, server, mongoClient)
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.Error("failed to close postgres", "error", err)
		return
	}
	slog.Info("postgres connection closed")
}

func gracefulShutdown(app *fiber.App, server *asynq.Server, mongoClient *mongo.Client) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("shutting down server")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}
	server.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mongoClient.Disconnect(ctx); err != nil {
		slog.Error("failed to disconnect mongo", "error", err)
	}

	slog.Info("server shutdown complete")
}
