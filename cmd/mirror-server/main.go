package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pokedex/internal/middleware"
	"pokedex/internal/mirror"
	"pokedex/pkg/database"
	"pokedex/pkg/logging"
	"pokedex/pkg/utils"
)

// mirror-server serves a snapshot written by export-mirror under PokeAPI's
// paths. Point the api-server at it with
// POKEDEX_UPSTREAM_URL=http://localhost:9000/api/v2.
func main() {
	cfg, err := utils.LoadConfig("")
	if err != nil {
		logging.Must("info", "json").Fatal("config", zap.Error(err))
	}

	dbCfg := database.DefaultConfig()
	if cfg.MirrorDB != "" {
		dbCfg.Path = cfg.MirrorDB
	}
	var (
		addr   = flag.String("addr", ":9000", "listen address")
		dbPath = flag.String("db", dbCfg.Path, "mirror SQLite path")
	)
	flag.Parse()

	logger := logging.Must(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(database.Config{Path: *dbPath})
	if err != nil {
		logger.Fatal("open mirror db", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}
	store := mirror.NewStore(db)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestID(), logging.GinLogger(logger), logging.Recovery(logger))

	router.GET("/health", func(c *gin.Context) {
		n, err := store.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db_error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": *dbPath, "documents": n})
	})
	mirror.NewHandler(store, logger).RegisterRoutes(&router.RouterGroup)

	srv := &http.Server{Addr: *addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info("mirror-server listening", zap.String("addr", *addr), zap.String("db", *dbPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("mirror-server stopped", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
