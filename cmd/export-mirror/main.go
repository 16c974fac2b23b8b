package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pokedex/internal/catalog"
	"pokedex/internal/mirror"
	"pokedex/internal/pokeapi"
	"pokedex/pkg/database"
	"pokedex/pkg/logging"
	"pokedex/pkg/utils"
)

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
		dbPath      = flag.String("db", dbCfg.Path, "mirror SQLite path")
		source      = flag.String("source", cfg.Upstream.BaseURL, "PokeAPI base URL to copy from")
		maxID       = flag.Int("max-id", 151, "copy pokemon 1..max-id")
		moves       = flag.Int("moves", catalog.MaxMoveLimit, "moves stored per pokemon")
		concurrency = flag.Int("concurrency", 8, "parallel upstream requests")
		timeout     = flag.Duration("timeout", 30*time.Minute, "overall deadline")
		logFormat   = flag.String("log-format", "console", "json or console")
	)
	flag.Parse()

	logger := logging.Must(cfg.Log.Level, *logFormat)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	db, err := database.Open(database.Config{Path: *dbPath})
	if err != nil {
		logger.Fatal("open mirror db", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}

	client := pokeapi.NewClient(pokeapi.Config{
		BaseURL:      *source,
		Timeout:      cfg.Upstream.Timeout,
		Retries:      max(cfg.Upstream.Retries, 2),
		RetryBackoff: cfg.Upstream.RetryBackoff,
		UserAgent:    cfg.Upstream.UserAgent,
	}, logger.Named("pokeapi"))
	store := mirror.NewStore(db)

	start := time.Now()
	res, err := mirror.NewSnapshotter(client, store, logger.Named("snapshot")).Run(ctx, mirror.SnapshotOptions{
		MaxID:       *maxID,
		MoveLimit:   *moves,
		Concurrency: *concurrency,
	})
	if err != nil {
		logger.Fatal("snapshot failed",
			zap.Int("stored", res.Stored),
			zap.Int("failed", res.Failed),
			zap.Error(err))
	}

	total, err := store.Count(ctx)
	if err != nil {
		logger.Fatal("count documents", zap.Error(err))
	}
	logger.Info("mirror exported",
		zap.String("db", *dbPath),
		zap.Int("stored", res.Stored),
		zap.Int("failed", res.Failed),
		zap.Int("documents", total),
		zap.Duration("took", time.Since(start)))
}
