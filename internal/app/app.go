package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/studyhub/engagement-service/internal/config"
	"github.com/studyhub/engagement-service/internal/delivery/httpd"
	"github.com/studyhub/engagement-service/internal/repository"
	"github.com/studyhub/engagement-service/internal/service"
	"github.com/studyhub/engagement-service/internal/service/integration"
	"github.com/studyhub/engagement-service/internal/worker"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

type App struct {
	server         *http.Server
	logger         zerolog.Logger
	config         *config.Config
	db             *sql.DB
	rabbitmqClient integration.RabbitMQClient
	snapshotWorker *worker.SnapshotWorker
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	// Создаем интеграционные клиенты
	fileClient := integration.NewFileClient(
		cfg.Services.File.URL,
		cfg.Services.File.UploadEndpoint,
		cfg.Services.File.Timeout,
		cfg.Services.File.RetryCount,
		cfg.Services.File.RetryDelay,
		log,
	)

	rabbitmqClient, err := integration.NewRabbitMQClient(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.RoutingKey,
		cfg.RabbitMQ.QueueName,
		log,
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create RabbitMQ client")
		// Продолжаем без RabbitMQ, это допустимо для разработки
	}

	// Создаем репозитории
	studentRepo := repository.NewStudentRepository(db, log)
	workspaceRepo := repository.NewWorkspaceRepository(db, log)
	taskRepo := repository.NewTaskRepository(db, log)
	submissionRepo := repository.NewSubmissionRepository(db, log)
	ledgerRepo := repository.NewLedgerRepository(db, log)
	snapshotRepo := repository.NewSnapshotRepository(db, log)
	updateRepo := repository.NewUpdateRepository(db, log)
	materialRepo := repository.NewMaterialRepository(db, log)

	// Создаем сервисы
	pointsService := service.NewPointsService(ledgerRepo, studentRepo, rabbitmqClient, cfg.Points, log)
	studentService := service.NewStudentService(studentRepo, taskRepo, materialRepo, log)
	workspaceService := service.NewWorkspaceService(workspaceRepo, studentRepo, cfg.Invite, log)
	taskService := service.NewTaskService(
		taskRepo,
		studentRepo,
		workspaceRepo,
		submissionRepo,
		ledgerRepo,
		pointsService,
		rabbitmqClient,
		log,
	)
	submissionService := service.NewSubmissionService(
		submissionRepo,
		taskRepo,
		studentRepo,
		workspaceRepo,
		pointsService,
		fileClient,
		rabbitmqClient,
		log,
	)
	leaderboardService := service.NewLeaderboardService(ledgerRepo, snapshotRepo, studentRepo, cfg.Leaderboard, log)
	updateService := service.NewUpdateService(updateRepo, studentRepo, pointsService, log)
	materialService := service.NewMaterialService(materialRepo, fileClient, log)

	// Создаем обработчики
	handler := httpd.NewHandler(
		studentService,
		workspaceService,
		taskService,
		submissionService,
		leaderboardService,
		updateService,
		materialService,
		log,
	)

	// Создаем роутер
	router := chi.NewRouter()

	// Настраиваем middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Настраиваем CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	// Регистрируем маршруты
	handler.RegisterRoutes(router)

	// Создаем HTTP сервер
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	snapshotWorker := worker.NewSnapshotWorker(
		leaderboardService,
		pointsService,
		studentRepo,
		cfg.Leaderboard.SnapshotInterval,
		log,
	)

	return &App{
		server:         server,
		logger:         log,
		config:         cfg,
		db:             db,
		rabbitmqClient: rabbitmqClient,
		snapshotWorker: snapshotWorker,
	}, nil
}

func (a *App) Run() error {
	a.snapshotWorker.Start(context.Background())

	a.logger.Info().Msgf("Starting engagement service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down engagement service...")

	// Останавливаем фоновый воркер
	a.snapshotWorker.Stop()

	// Закрываем RabbitMQ соединение
	if a.rabbitmqClient != nil {
		if err := a.rabbitmqClient.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	// Закрываем соединение с БД
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	// Останавливаем сервер
	return a.server.Shutdown(ctx)
}
