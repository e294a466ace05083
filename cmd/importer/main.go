package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"oddsimport/internal/client/catalog"
	"oddsimport/internal/client/oddsfeed"
	"oddsimport/internal/config"
	cronrunner "oddsimport/internal/cron"
	"oddsimport/internal/db"
	"oddsimport/internal/handler"
	"oddsimport/internal/importer"
	"oddsimport/internal/logger"
	gormrepository "oddsimport/internal/repository/gorm"
	"oddsimport/internal/service"
	"oddsimport/internal/stream"

	_ "oddsimport/docs"
)

func main() {
	cfgPath := os.Getenv("OI_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("OI_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	feedHTTP := &http.Client{Timeout: cfg.Feed.Timeout}
	feedClient := oddsfeed.NewClient(feedHTTP, cfg.Feed.BaseURL, cfg.Feed.APIKey)
	catalogHTTP := &http.Client{Timeout: cfg.Catalog.Timeout}
	catalogClient := catalog.NewClient(catalogHTTP, cfg.Catalog.BaseURL, cfg.Catalog.Token)
	store := gormrepository.New(dbConn.Gorm)

	feedService := &service.FeedService{
		Feed:   feedClient,
		Repo:   store,
		Logger: logger,
		Config: cfg.Feed,
	}
	hub := stream.NewHub(logger)
	importService := &service.ImportService{
		Orchestrator: &importer.Orchestrator{
			Catalog: catalogClient,
			Tracker: importer.NewTracker(),
			Logger:  logger,
		},
		Feeds:         feedService,
		Catalog:       catalogClient,
		Repo:          store,
		Hub:           hub,
		Logger:        logger,
		KnownIDsLimit: cfg.Catalog.KnownIDsLimit,
	}
	importService.AttachStream()

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	feedHandler := &handler.FeedHandler{
		Feeds:   feedService,
		Imports: importService,
		Logger:  logger,
	}
	feedHandler.Register(engine)
	importHandler := &handler.ImportHandler{
		Service: importService,
		Logger:  logger,
	}
	importHandler.Register(engine)
	streamHandler := &handler.StreamHandler{Hub: hub, Logger: logger}
	streamHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	{
		initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if _, err := importService.RefreshKnownIDs(initCtx); err != nil {
			logger.Warn("initial known-id refresh failed (continuing)", zap.Error(err))
		}
		cancel()
	}

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err = cronRunner.Add(cfg.Cron.FeedRefresh, func(ctx context.Context) {
			for _, sport := range importer.Sports {
				refresh, err := feedService.Refresh(ctx, sport.Key)
				if err != nil {
					logger.Warn("cron feed refresh failed",
						zap.String("sport", sport.Key),
						zap.Error(err),
					)
					continue
				}
				logger.Info("cron feed refresh ok",
					zap.String("sport", sport.Key),
					zap.Int("matches", len(refresh.Payloads)),
					zap.String("quota_remaining", refresh.Quota.Remaining),
				)
			}
		})
		if err != nil {
			logger.Warn("cron register feed refresh failed", zap.Error(err))
		}

		_, err = cronRunner.Add(cfg.Cron.KnownIDRefresh, func(ctx context.Context) {
			if _, err := importService.RefreshKnownIDs(ctx); err != nil {
				logger.Warn("cron known-id refresh failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register known-id refresh failed", zap.Error(err))
		}

		_, err = cronRunner.Add(cfg.Cron.SnapshotCleanup, func(ctx context.Context) {
			deleted, err := feedService.CleanupSnapshots(ctx, cfg.Import.SnapshotRetention)
			if err != nil {
				logger.Warn("cron snapshot cleanup failed", zap.Error(err))
				return
			}
			if deleted > 0 {
				logger.Info("cron snapshot cleanup ok", zap.Int64("deleted", deleted))
			}
		})
		if err != nil {
			logger.Warn("cron register snapshot cleanup failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
