package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bekzhan05/quiz-platform/cache"
	"github.com/Bekzhan05/quiz-platform/config"
	"github.com/Bekzhan05/quiz-platform/db"
	"github.com/Bekzhan05/quiz-platform/grading"
	"github.com/Bekzhan05/quiz-platform/handlers"
	"github.com/Bekzhan05/quiz-platform/live"
	"github.com/Bekzhan05/quiz-platform/repositories"
	api "github.com/Bekzhan05/quiz-platform/routes"
	"github.com/Bekzhan05/quiz-platform/services"
	"github.com/Bekzhan05/quiz-platform/storage"
	_ "github.com/lib/pq"
)

const statusSchedulerInterval = 30 * time.Second

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Кеш лидерборда (Redis). Без адреса работаем напрямую из Postgres.
	// Присваивание только при включённом redis: типизированный nil в
	// интерфейсе прошёл бы проверку != nil в сервисах.
	var leaderboardMirror services.LeaderboardMirror
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer redisClient.Close()
		leaderboardMirror = cache.NewLeaderboardCache(redisClient)
		logger.Info("leaderboard cache initialized", slog.String("addr", cfg.RedisAddr))
	} else {
		logger.Info("leaderboard cache disabled")
	}

	// Загрузчик файлов (Cloudflare R2). Опционален: без конфигурации
	// эндпоинты загрузки логотипов и аватаров отвечают 503.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("file uploader disabled")
	}

	// Оракул оценки ответов. Без URL все ответы оцениваются нулём.
	var oracle grading.Oracle
	if cfg.OracleURL != "" {
		oracle = grading.NewHTTPOracle(cfg.OracleURL, cfg.OracleAPIKey, cfg.OracleTimeout)
		logger.Info("grading oracle initialized", slog.String("url", cfg.OracleURL))
	} else {
		logger.Info("grading oracle disabled, answers score zero")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	questionRepo := repositories.NewPostgresQuestionRepository(dbConn)
	ticketRepo := repositories.NewPostgresTicketRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)
	achievementRepo := repositories.NewPostgresAchievementRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, uploader)
	tournamentService := services.NewTournamentService(tournamentRepo, uploader, logger)
	questionService := services.NewQuestionService(questionRepo, tournamentRepo)
	ticketService := services.NewTicketService(ticketRepo)
	notificationService := services.NewNotificationService(notificationRepo)
	achievementService := services.NewAchievementService(achievementRepo, notificationRepo)
	registrationService := services.NewRegistrationService(
		participantRepo,
		tournamentRepo,
		notificationRepo,
		cfg.RegistrationAutoConfirm,
	)
	scoringService := services.NewScoringService(
		participantRepo,
		questionRepo,
		oracle,
		wsHub,
		leaderboardMirror,
		achievementService,
		logger,
	)
	rankingService := services.NewRankingService(
		participantRepo,
		tournamentRepo,
		leaderboardMirror,
		wsHub,
		uploader,
		logger,
	)
	logger.Info("services initialized")

	// Планировщик автоматического обновления статусов турниров
	go func() {
		ticker := time.NewTicker(statusSchedulerInterval)
		defer ticker.Stop()
		logger.Info("tournament status scheduler started", slog.Duration("interval", statusSchedulerInterval))

		if err := tournamentService.AutoUpdateStatusesByDates(context.Background()); err != nil {
			logger.Error("scheduler: initial run failed", slog.Any("error", err))
		}

		for range ticker.C {
			if err := tournamentService.AutoUpdateStatusesByDates(context.Background()); err != nil {
				logger.Error("scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	h := api.Handlers{
		Auth:         handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		User:         handlers.NewUserHandler(userService),
		Tournament:   handlers.NewTournamentHandler(tournamentService),
		Participant:  handlers.NewParticipantHandler(registrationService, scoringService, rankingService),
		Question:     handlers.NewQuestionHandler(questionService),
		Ticket:       handlers.NewTicketHandler(ticketService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Achievement:  handlers.NewAchievementHandler(achievementService),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, cfg.AllowedOrigins, logger),
	}
	router := api.SetupRoutes(h, []byte(cfg.JWTSecretKey), cfg.AllowedOrigins)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
