package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yuzvak/eventsales-service/internal/application/commands"
	"github.com/yuzvak/eventsales-service/internal/application/ports"
	"github.com/yuzvak/eventsales-service/internal/application/queries"
	"github.com/yuzvak/eventsales-service/internal/application/use_cases"
	"github.com/yuzvak/eventsales-service/internal/config"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/http/handlers"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/http/server"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/monitoring"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/persistence/memory"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/persistence/postgres"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/persistence/redis"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/scheduler"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/users"
	"github.com/yuzvak/eventsales-service/internal/pkg/clock"
	"github.com/yuzvak/eventsales-service/internal/pkg/generator"
	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
)

type storage struct {
	events ports.EventRepository
	sales  ports.SaleRepository
	health map[string]handlers.Pinger
	close  func() error
}

func main() {
	configPath := flag.String("config", "config.json", "Path to configuration file")
	flag.Parse()

	log := logger.NewLogger()

	cfg, configErr := config.LoadConfig(*configPath)
	if configErr != nil {
		log.Fatal("Failed to load configuration", "error", configErr)
	}
	log = logger.New(os.Stdout, logger.ParseLevel(cfg.Log.Level))
	log.Info("Starting Event Sales Service", "storage", cfg.Storage.Backend)

	// run owns every resource it opens, so its deferred cleanup has finished
	// by the time Fatal exits.
	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", "error", err)
	}
	log.Info("Server stopped")
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.close()

	var eventCache ports.EventCache
	if cfg.Redis.Enabled {
		redisConn, err := redis.NewConnection(cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisConn.Close()

		eventCache = redis.NewEventCache(redisConn, cfg.Redis.EventTTL.Duration, log)
		store.health["redis"] = redisConn
	}

	var directory ports.UserDirectory = users.NewStaticDirectory()
	if cfg.Users.BaseURL != "" {
		directory = users.NewHTTPDirectory(cfg.Users.BaseURL, cfg.Users.Timeout.Duration)
	}

	clk := clock.NewRealClock()
	ids := generator.NewUUIDGenerator()
	metrics := monitoring.NewBusinessMetrics()

	catalog := use_cases.NewEventCatalog(store.events, eventCache, clk, ids, log)
	lifecycle := use_cases.NewSaleLifecycle(store.events, store.sales, clk, ids, log)
	listing := queries.NewListing(store.events, store.sales, directory, clk, log)

	httpServer := server.NewServer(cfg, server.Handlers{
		Events: handlers.NewEventHandler(catalog, listing, log),
		Sales: handlers.NewSaleHandler(
			commands.NewCreateSaleHandler(lifecycle, metrics, log),
			commands.NewUpdateSaleStatusHandler(lifecycle, metrics, log),
			lifecycle,
			listing,
			log,
		),
		Health: handlers.NewHealthHandler(store.health, log),
	}, log)

	activityScheduler := scheduler.NewActivityScheduler(listing, log, cfg.Scheduler.ActivityInterval.Duration)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		activityScheduler.Start(gctx)
		return nil
	})

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
		defer cancel()

		activityScheduler.Stop()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Backend == config.StorageBackendMemory {
		log.Warn("Using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return &storage{
			events: store,
			sales:  store,
			health: map[string]handlers.Pinger{},
			close:  func() error { return nil },
		}, nil
	}

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		return nil, err
	}

	migrateCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := postgres.RunMigrations(migrateCtx, db.GetDB(), postgres.MigrationsFS(cfg.Database.MigrationsPath), log); err != nil {
		db.Close()
		return nil, err
	}

	monitoring.NewDBMetricsCollector(db.GetDB()).StartCollecting(ctx, 30*time.Second)

	return &storage{
		events: postgres.NewEventRepository(db),
		sales:  postgres.NewSaleRepository(db),
		health: map[string]handlers.Pinger{"database": db},
		close:  db.Close,
	}, nil
}
