package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"pokedex/internal/catalog"
	"pokedex/internal/grpcserver"
	"pokedex/internal/pokeapi"
	"pokedex/pkg/logging"
	"pokedex/pkg/utils"
)

func main() {
	cfg, err := utils.LoadConfig("")
	if err != nil {
		logging.Must("info", "json").Fatal("config", zap.Error(err))
	}
	logger := logging.Must(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = logger.Sync() }()

	addr := cfg.GRPCAddr
	if addr == "" {
		addr = ":9090"
	}

	lineage, err := catalog.ParseLineageStrategy(cfg.Catalog.Lineage)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal("grpc listen failed", zap.String("addr", addr), zap.Error(err))
	}

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

	grpcServer := grpcserver.New(svc, logger.Named("grpc"))

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		grpcServer.GracefulStop()
	}()

	logger.Info("gRPC server listening", zap.String("addr", addr), zap.String("upstream", client.BaseURL()))
	if err := grpcServer.Serve(listener); err != nil {
		logger.Fatal("grpc server stopped", zap.Error(err))
	}
	logger.Info("grpc server stopped")
}
