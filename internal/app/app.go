package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Till769/zero2prod/internal/config"
	"github.com/Till769/zero2prod/internal/database"
	"github.com/Till769/zero2prod/internal/middleware"
	pkgcron "github.com/Till769/zero2prod/internal/pkg/cron"
	pkgredis "github.com/Till769/zero2prod/internal/pkg/redis"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	rdb    *pkgredis.Client
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler
}

// New initializes the application: config → DB → Redis → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg, logger); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg, false)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	// Redis only backs the login rate limiter and the publish idempotence
	// guard; the subscription flow works without it.
	rdb, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, rate limiting and idempotence disabled", zap.Error(err))
		rdb = nil
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(buildCORS(cfg)))

	ctx, cancel := context.WithCancel(context.Background())

	sched := pkgcron.New()
	if cfg.Jobs.Enable {
		registerJobs(sched, db, logger)
		go sched.Start(ctx)
	}

	app := &App{cfg: cfg, router: router, db: db, rdb: rdb, logger: logger, cancel: cancel, sched: sched}
	app.registerRoutes()

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown cleans up background goroutines and connections.
func (a *App) Shutdown() {
	a.cancel()
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}

var processStart = time.Now()
