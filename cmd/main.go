package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ordersync/internal/app"
	"ordersync/internal/config"
	"ordersync/internal/entities"
	"ordersync/internal/handler"
	"ordersync/internal/identity"
	"ordersync/internal/middleware"
	"ordersync/internal/postgres"
	"ordersync/internal/repo"
	"ordersync/internal/service"
	syncpkg "ordersync/internal/sync"
	"ordersync/pkg/cache"
	"ordersync/pkg/trm"
	"ordersync/pkg/utils"

	"github.com/joho/godotenv"
)

// @title           Order Sync API
// @version         1.0
// @description     Документация HTTP API слоя синхронизации заказов
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	orderRepo := repo.NewPostgresRepo(db)
	txManager := trm.NewManager(db, repo.Classify)

	store, err := cache.Open(conf.Cache.Dir, conf.Cache.Prefix, conf.Cache.TTL)
	panicIfErr("failed to open cache", err)
	store.Subscribe(func(collection string) {
		logger.Debug("cache collection updated", slog.String("collection", collection))
	})

	queue := syncpkg.NewQueue(logger, store, conf.Sync.MaxRetries, utils.RetryConfig{
		InitialDelay: conf.Sync.RetryInitialDelay,
		MaxDelay:     conf.Sync.RetryMaxDelay,
		Multiplier:   conf.Sync.RetryMultiplier,
	})
	deadLetter := handler.NewDeadLetterWriter(conf.Kafka)
	defer deadLetter.Close()
	queue.SetDeadLetter(deadLetter)

	monitor := syncpkg.NewMonitor(logger, conf.Sync.ProbeURL, conf.Sync.ProbeInterval, conf.Sync.ProbeTimeout)
	provider := identity.NewProvider(conf.Identity.JWTSecret, orderRepo)
	clock := service.RealClock()
	activity := service.NewActivityLogger(logger, orderRepo, queue, monitor, clock)

	orderService := service.NewOrderService(logger, service.Deps{
		TxManager: txManager,
		Repo:      orderRepo,
		Cache:     store,
		Queue:     queue,
		Network:   monitor,
		Identity:  provider,
		Splitter:  service.NewProportionalSplitter(),
		Activity:  activity,
		Clock:     clock,
	})
	queue.SetApplier(orderService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Возврат сети: сначала разбор очереди, затем полный Reconcile,
	// чтобы снапшот включал только что досланные мутации.
	monitor.OnOnline(func() {
		go func() {
			if err := queue.Drain(ctx); err != nil {
				logger.Error("failed to drain pending writes", slog.Any("error", err))
				return
			}
			if err := orderService.Reconcile(ctx); err != nil {
				logger.Error("failed to reconcile cache", slog.Any("error", err))
			}
		}()
	})

	httpHandler := handler.NewHTTPHandler(logger, orderService, syncState{monitor, queue}, conf.Sync.PageSize)
	eventsHandler := handler.NewEventsHandler(logger, conf.Kafka, store)

	app := app.New(logger, conf, middleware.Auth(provider))

	app.SetHTTPHandlers(httpHandler)
	app.SetConsumers(eventsHandler)
	app.SetStarters(monitor, orderService)

	panicIfErr("failed to start app", app.Start(ctx))
	<-ctx.Done()
	panicIfErr("failed to stop app", app.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}

// syncState собирает индикаторы синхронизации для HTTP-ручки статуса.
type syncState struct {
	monitor *syncpkg.Monitor
	queue   *syncpkg.Queue
}

func (s syncState) Online() bool                  { return s.monitor.Online() }
func (s syncState) PendingCount() int             { return s.queue.PendingCount() }
func (s syncState) Dead() []entities.PendingWrite { return s.queue.Dead() }
