package main

// @title Haltestellenmonitor API
// @version 2.0.0
// @description Табло отправлений общественного транспорта Дрездена (VVO) поверх EFA/TRIAS.
// @description
// @description Основные возможности:
// @description - Поиск остановок по названию и координатам
// @description - Табло отправлений с автообновлением и фильтром по видам транспорта
// @description - Последовательность остановок рейса
// @description - Live activities с пересылкой push-токенов
// @description - Избранные остановки и выбор остановки для виджета

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/haltestellenmonitor/docs"
	"github.com/haltestellenmonitor/internal/config"
	httpDelivery "github.com/haltestellenmonitor/internal/delivery/http"
	"github.com/haltestellenmonitor/internal/delivery/http/handler"
	"github.com/haltestellenmonitor/internal/domain/repository"
	"github.com/haltestellenmonitor/internal/infrastructure/activity"
	"github.com/haltestellenmonitor/internal/infrastructure/efa"
	"github.com/haltestellenmonitor/internal/infrastructure/stopdata"
	"github.com/haltestellenmonitor/internal/pkg/logger"
	"github.com/haltestellenmonitor/internal/repository/cache"
	"github.com/haltestellenmonitor/internal/repository/memory"
	"github.com/haltestellenmonitor/internal/repository/postgres"
	redisRepo "github.com/haltestellenmonitor/internal/repository/redis"
	"github.com/haltestellenmonitor/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "haltestellenmonitor-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Haltestellenmonitor API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("store_backend", cfg.Store.Backend),
	)

	// 3. Stop directory
	directory, err := stopdata.Load()
	if err != nil {
		log.Fatal("Failed to load stop directory", zap.Error(err))
	}
	log.Info("Stop directory loaded", zap.Int("stops", len(directory.All())))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	checks := make(map[string]handler.HealthCheck)

	// 4. Connect to Redis (кроме memory-бэкенда: стримы активностей живут в Redis)
	var redisClient *cache.Redis
	if cfg.Store.Backend != "memory" {
		redisClient, err = cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
		if err := redisClient.Health(ctx); err != nil {
			log.Fatal("Redis health check failed", zap.Error(err))
		}
		checks["redis"] = redisClient.Health
		log.Info("Redis connected")
	}

	// 5. Initialize stores
	var (
		kvStore repository.KeyValueStore
		history repository.PushTokenHistory
	)
	switch cfg.Store.Backend {
	case "postgres":
		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()
		if err := db.Migrate(ctx); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
		checks["postgres"] = db.Health
		kvStore = postgres.NewKeyValueStore(db)
		history = postgres.NewPushTokenHistory(db)
	case "memory":
		kvStore = memory.NewKeyValueStore()
		history = memory.NewPushTokenHistory()
	case "redis":
		kvStore = cache.NewKeyValueStore(redisClient)
		history = cache.NewPushTokenHistory(redisClient)
	default:
		log.Fatal("Unknown store backend", zap.String("backend", cfg.Store.Backend))
	}
	log.Info("Stores initialized", zap.String("backend", cfg.Store.Backend))

	// 6. Initialize transit client and activity platform
	transit, err := efa.NewTransitClient(&cfg.Transit, log)
	if err != nil {
		log.Fatal("Failed to create transit client", zap.Error(err))
	}
	notifier := activity.NewNotifier(&cfg.Activity, cfg.Transit.RequestTimeout, log)

	var platform repository.ActivityPlatform
	if redisClient != nil {
		streams := redisRepo.NewStreamRepository(redisClient.Client(), log)
		platform = redisRepo.NewActivityPlatform(redisClient.Client(), streams, cfg.Activity.Enabled, cfg.Activity.TokenStreamPrefix, log)
	} else {
		log.Warn("Live activities disabled: no Redis for token streams")
		platform = redisRepo.NewActivityPlatform(nil, nil, false, cfg.Activity.TokenStreamPrefix, log)
	}

	// 7. Initialize Use Cases
	pollOpts := usecase.NewPollOptions(cfg.Poll, cfg.Transit.RequestTimeout)
	monitorUC := usecase.NewMonitorUsecase(transit, directory, pollOpts, cfg.Transit.InteractivePageSize, log)
	stopUC := usecase.NewStopUsecase(directory, kvStore, cfg.Worker.DefaultStop, cfg.Worker.FavoritesOnly, log)
	activityUC := usecase.NewLiveActivityUsecase(platform, history, notifier, directory, cfg.Activity.StaleAfter, log)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP Handlers
	handlers := httpDelivery.Handlers{
		Stop:     handler.NewStopHandler(stopUC, log),
		Board:    handler.NewBoardHandler(monitorUC, log),
		Trip:     handler.NewTripHandler(monitorUC, stopUC, log),
		Activity: handler.NewActivityHandler(activityUC, log),
		Favorite: handler.NewFavoriteHandler(stopUC, log),
		Health:   handler.NewHealthHandler(checks),
	}

	// 9. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, log, handlers)

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	// сессии табло и активностей держат таймеры и подписки
	monitorUC.Close()
	activityUC.Close(shutdownCtx)

	log.Info("Server stopped successfully")
}
