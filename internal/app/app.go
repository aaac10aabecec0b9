package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/neurochat-backend/internal/data/db"
	"github.com/yungbote/neurochat-backend/internal/http"
	"github.com/yungbote/neurochat-backend/internal/observability"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
	"github.com/yungbote/neurochat-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics

	dbService    *db.Service
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: cfg.Otel.ServiceName,
		Environment: cfg.Otel.Environment,
		SampleRatio: cfg.Otel.SampleRatio,
		Endpoint:    cfg.Otel.Endpoint,
		Headers:     cfg.Otel.Headers,
		Insecure:    cfg.Otel.Insecure,
	})

	dbService, err := db.Open(log, cfg.Database.URL)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbService.DB()

	metrics := observability.NewMetrics()
	ssehub := realtime.NewSSEHub(log)

	clients, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients, ssehub)
	handlerset := wireHandlers(theDB, log, cfg, serviceset, ssehub, metrics)
	middleware := wireMiddleware(log, serviceset)
	router, err := wireRouter(log, cfg, handlerset, middleware, metrics)
	if err != nil {
		clients.Close()
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       ssehub,
		Metrics:      metrics,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until SIGINT/SIGTERM or ctx cancellation. The redis forwarder and
// the expired-session sweeper share the server's lifetime.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{Engine: a.Router, Log: a.Log}
	g.Go(func() error {
		return srv.Run(gctx, a.Cfg.Addr())
	})

	if a.Clients.SSEBus != nil {
		g.Go(func() error {
			if err := a.Clients.SSEBus.StartForwarder(gctx, a.SSEHub.Broadcast); err != nil {
				return fmt.Errorf("redis forwarder: %w", err)
			}
			a.Log.Info("Redis SSE forwarder started", "channel", a.Cfg.Redis.Channel)
			<-gctx.Done()
			return nil
		})
	}

	if interval := a.Cfg.SweepInterval(); interval > 0 {
		g.Go(func() error {
			a.sweepSessions(gctx, interval)
			return nil
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		a.Log.Error("Server stopped with error", "error", err)
		return err
	}
	a.Log.Info("Server stopped")
	return nil
}

func (a *App) sweepSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.Services.Auth.PruneExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					a.Log.Warn("Session sweep failed", "error", err)
				}
				continue
			}
			if n > 0 {
				a.Log.Info("Expired sessions pruned", "count", n)
			}
		}
	}
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil && a.Log != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.otelShutdown(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
