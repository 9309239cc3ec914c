package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/campus-market/internal/api/http"
	"github.com/spec-kit/campus-market/internal/api/http/handlers"
	"github.com/spec-kit/campus-market/internal/auth"
	"github.com/spec-kit/campus-market/internal/config"
	"github.com/spec-kit/campus-market/internal/events"
	"github.com/spec-kit/campus-market/internal/observability"
	"github.com/spec-kit/campus-market/internal/persistence"
	"github.com/spec-kit/campus-market/internal/repository"
	"github.com/spec-kit/campus-market/internal/service"
	appvalidator "github.com/spec-kit/campus-market/internal/validator"
	"github.com/spec-kit/campus-market/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	transactionRepo := repository.NewTransactionRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	validate := appvalidator.New(cfg.Campus.EmailDomain)

	authService := service.NewAuthService(cfg, userRepo)
	catalogService := service.NewCatalogService(serviceRepo, redis.Client, cfg.Redis.CatalogCacheTTL, logger)
	transactionService := service.NewTransactionService(service.TransactionDependencies{
		TransactionRepo: transactionRepo,
		ServiceRepo:     serviceRepo,
		UserRepo:        userRepo,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	messageService := service.NewMessageService(messageRepo, userRepo, transactionRepo, dispatcher)
	userService := service.NewUserService(userRepo, serviceRepo, transactionRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, validate),
		Services:       handlers.NewServicesHandler(catalogService, validate),
		Transactions:   handlers.NewTransactionsHandler(transactionService, validate),
		Messages:       handlers.NewMessagesHandler(messageService, validate),
		Users:          handlers.NewUsersHandler(userService, transactionService, validate),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
