package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/reviewdesk/reviewdesk/internal/config"
	"github.com/reviewdesk/reviewdesk/internal/migrations"
	"github.com/reviewdesk/reviewdesk/internal/observability"
	"github.com/reviewdesk/reviewdesk/internal/seed"
	"github.com/reviewdesk/reviewdesk/internal/store"
)

func main() {
	var (
		seedValue   = flag.Int64("seed", 42, "random seed for generated rows")
		scale       = flag.Float64("scale", 1.0, "multiplier applied to the default row counts")
		migrateOnly = flag.Bool("migrate-only", false, "run migrations and exit without seeding")
		down        = flag.Bool("down", false, "roll back the most recent migration and exit")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv("reviewdesk-seed")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	ctx := context.Background()

	executor, err := store.Open(ctx, store.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = executor.Close() }()
	db := executor.DB()

	runner := migrations.NewRunner()

	if *down {
		if err := runner.Down(ctx, db); err != nil {
			logger.Error("rollback failed", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("rolled back latest migration")
		return
	}

	applied, err := runner.Up(ctx, db)
	if err != nil {
		logger.Error("migrations failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied", slog.Int("count", applied))

	if *migrateOnly {
		return
	}

	counts := seed.DefaultCounts().Scale(*scale)
	seeder := seed.NewSeeder(db, seed.NewGenerator(*seedValue), logger)
	if err := seeder.Run(ctx, counts); err != nil {
		logger.Error("seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("seeding complete",
		slog.Int("processed_reviews", counts.ProcessedReviews),
		slog.Int("formatted_reviews", counts.FormattedReviews),
		slog.Int("raw_reviews", counts.RawReviews),
		slog.Int("complaints", counts.Complaints),
		slog.Int("amazon_reviews", counts.AmazonReviews),
	)
}
