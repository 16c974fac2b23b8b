package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pokedex/internal/catalog"
	"pokedex/internal/grpcserver"
	"pokedex/internal/middleware"
	"pokedex/internal/pokeapi"
	"pokedex/internal/pokemon"
	"pokedex/internal/stream"
	"pokedex/pkg/logging"
	"pokedex/pkg/utils"
)

// pinger reports whether the upstream answers.
type pinger interface {
	Ping(ctx context.Context) error
}

func newRouter(cfg utils.Config, svc *catalog.Service, upstream pinger, hub *stream.Hub, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})
	router.Use(
		middleware.RequestID(),
		logging.GinLogger(logger),
		logging.Recovery(logger),
		middleware.CORS(cfg.CORSOrigins),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := upstream.Ping(ctx); err != nil {
			logging.WithRequest(logger, c).Warn("upstream not ready", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":         "not_ready",
				"upstream":       "unreachable",
				"stream_clients": hub.Count(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":         "ready",
			"upstream":       "ok",
			"stream_clients": hub.Count(),
		})
	})

	api := router.Group("/api")
	pokemon.NewHandler(svc, logger).RegisterRoutes(api)
	api.GET("/pokemon/stream", stream.Handler(svc, hub, logger))

	return router
}

func main() {
	cfg, err := utils.LoadConfig("")
	if err != nil {
		logging.Must("info", "json").Fatal("config", zap.Error(err))
	}
	logger := logging.Must(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = logger.Sync() }()

	lineage, err := catalog.ParseLineageStrategy(cfg.Catalog.Lineage)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)

	client := pokeapi.NewClient(pokeapi.Config{
		BaseURL:      cfg.Upstream.BaseURL,
		Timeout:      cfg.Upstream.Timeout,
		Retries:      cfg.Upstream.Retries,
		RetryBackoff: cfg.Upstream.RetryBackoff,
		UserAgent:    cfg.Upstream.UserAgent,
	}, logger.Named("pokeapi"))
	svc := catalog.NewService(client, catalog.Options{
		Lineage:     lineage,
		MoveLimit:   cfg.Catalog.MoveLimit,
		Language:    cfg.Catalog.Language,
		Concurrency: cfg.Catalog.Concurrency,
	}, logger.Named("catalog"))

	hub := stream.NewHub()
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(cfg, svc, client, hub, logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	var grpcSrv interface{ GracefulStop() }
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Fatal("grpc listen failed", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
		}
		gs := grpcserver.New(svc, logger.Named("grpc"))
		grpcSrv = gs

		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
			if err := gs.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP API server listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("upstream", client.BaseURL()),
			zap.String("lineage", string(lineage)))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	logger.Info("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.CloseAll()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", zap.Error(err))
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}

	wg.Wait()
	logger.Info("servers stopped")
}
