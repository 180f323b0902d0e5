package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"go-booking-realtime/internal/infrastructure/config"
	"go-booking-realtime/internal/infrastructure/logger"
	"go-booking-realtime/internal/infrastructure/server"
	"go-booking-realtime/internal/realtime"
	"go-booking-realtime/internal/store"
)

func main() {
	ctx := context.Background()
	sctx := WithSignal(ctx)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogrusLogger(loggerConfig(cfg.Log))

	// The chat-owner store is optional: without a database the hub still
	// runs, chat fan-out just skips identity targeting.
	var owners realtime.ChatOwnerResolver
	if cfg.Postgres.DSN != "" {
		pool, err := store.NewPool(ctx, cfg.Postgres)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer pool.Close()

		chatOwners, err := store.NewChatOwners(pool, log)
		if err != nil {
			log.Fatalf("failed to create chat owner store: %v", err)
		}
		defer chatOwners.Close()

		owners = chatOwners
	} else {
		log.Warn("DATABASE_URL not set, chat owner resolution disabled")
	}

	hub := realtime.New(realtime.Config{
		QueueCapacity:  cfg.Hub.QueueCapacity,
		PingInterval:   cfg.Hub.PingInterval,
		SweepInterval:  cfg.Hub.SweepInterval,
		StaleThreshold: cfg.Hub.StaleThreshold,
	}, owners, log)

	if err := hub.Start(ctx); err != nil {
		log.Errorf("failed to start hub: %v", err)
		return
	}

	router := InitRouter(hub, log)
	httpSrv := server.NewHTTPServer(server.HTTPConfig{
		Addr:         cfg.HTTP.Addr,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}, router)

	app := newApplication(log, httpSrv, hub)
	if err := app.Run(sctx); err != nil {
		log.Errorf("failed to run application: %v", err)
	}
}

func loggerConfig(cfg config.Log) *logger.Config {
	lCfg := logger.NewDefaultConfig()
	lCfg.Format = cfg.Format
	lCfg.Output = cfg.Output
	lCfg.FilePath = cfg.FilePath

	switch cfg.Level {
	case "debug":
		lCfg.Level = logger.LevelDebug
	case "warn":
		lCfg.Level = logger.LevelWarn
	case "error":
		lCfg.Level = logger.LevelError
	default:
		lCfg.Level = logger.LevelInfo
	}

	return lCfg
}

type Application struct {
	logger  logger.Logger
	httpSrv server.Server
	hub     *realtime.Hub
}

func newApplication(
	log logger.Logger,
	httpSrv *server.HTTPServer,
	hub *realtime.Hub,
) *Application {
	return &Application{
		logger:  log.WithField("app", "booking-realtime"),
		httpSrv: httpSrv,
		hub:     hub,
	}
}

func (app *Application) Run(ctx context.Context) error {
	eg := errgroup.Group{}

	eg.Go(func() error {
		return app.httpSrv.Start(ctx)
	})

	eg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			5*time.Second,
		)
		defer cancel()

		if err := app.hub.Stop(shutdownCtx); err != nil {
			app.logger.Errorf("failed to stop hub: %v", err)
		}

		return app.httpSrv.Stop(shutdownCtx)
	})

	return eg.Wait()
}

func WithSignal(pctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(pctx)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

		<-sigc

		cancel()
	}()

	return ctx
}
