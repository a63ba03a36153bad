package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haltestellenmonitor/internal/config"
	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/domain/repository"
	"github.com/haltestellenmonitor/internal/infrastructure/efa"
	"github.com/haltestellenmonitor/internal/infrastructure/stopdata"
	"github.com/haltestellenmonitor/internal/pkg/logger"
	"github.com/haltestellenmonitor/internal/repository/cache"
	"github.com/haltestellenmonitor/internal/repository/postgres"
	redisRepo "github.com/haltestellenmonitor/internal/repository/redis"
	"github.com/haltestellenmonitor/internal/usecase"
	"github.com/haltestellenmonitor/internal/worker"
	"github.com/haltestellenmonitor/internal/worker/board"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "haltestellenmonitor-worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting board snapshot worker")
	log.Info("Configuration loaded",
		zap.String("default_stop", cfg.Worker.DefaultStop),
		zap.Bool("favorites_only", cfg.Worker.FavoritesOnly),
		zap.Int("page_size", cfg.Transit.WidgetPageSize),
		zap.Duration("snapshot_ttl", cfg.Cache.BoardSnapshotTTL))

	directory, err := stopdata.Load()
	if err != nil {
		log.Fatal("Failed to load stop directory", zap.Error(err))
	}

	// 3. Connect to Redis (снимки табло публикуются только в Redis)
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 4. Initialize repositories
	var kvStore repository.KeyValueStore
	if cfg.Store.Backend == "postgres" {
		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()
		kvStore = postgres.NewKeyValueStore(db)
	} else {
		kvStore = cache.NewKeyValueStore(redisClient)
	}
	boardCache := cache.NewBoardCache(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	transit, err := efa.NewTransitClient(&cfg.Transit, log)
	if err != nil {
		log.Fatal("Failed to create transit client", zap.Error(err))
	}

	// 5. Initialize use cases
	stopUC := usecase.NewStopUsecase(directory, kvStore, cfg.Worker.DefaultStop, cfg.Worker.FavoritesOnly, log)

	// 6. Initialize workers
	snapshotWorker := board.NewSnapshotWorker(
		transit,
		stopUC,
		boardCache,
		streamRepo,
		usecase.NewPollOptions(cfg.Poll, cfg.Transit.RequestTimeout),
		domain.Point{Lat: cfg.Worker.Latitude, Lon: cfg.Worker.Longitude},
		cfg.Transit.WidgetPageSize,
		cfg.Cache.BoardSnapshotTTL,
		log,
	)

	// 7. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log).WithShutdownTimeout(cfg.Transit.RequestTimeout + 5*time.Second)
	workerManager.Register(snapshotWorker)

	// 8. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
