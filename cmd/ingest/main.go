// Package main implements the dataset ingest command. It reads the
// restaurant metadata and review CSV exports and replaces the contents of
// the Postgres tables the API server loads from.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/foodiepro/api/internal/dataset"
	"github.com/foodiepro/api/internal/middleware"
)

func main() {
	placesPath := flag.String("places", "", "path to the places CSV export")
	reviewsPath := flag.String("reviews", "", "path to the reviews CSV export")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall ingest timeout")
	flag.Parse()

	env := os.Getenv("FOODIE_ENV")
	if env == "" {
		env = "development"
	}
	logger := middleware.NewLogger(env)
	slog.SetDefault(logger)

	if *placesPath == "" || *reviewsPath == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -places places.csv -reviews reviews.csv")
		os.Exit(2)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	loader := &dataset.CSVLoader{
		PlacesPath:  *placesPath,
		ReviewsPath: *reviewsPath,
	}
	snap, err := loader.Load(ctx)
	if err != nil {
		logger.Error("failed to read CSV files", "error", err)
		os.Exit(1)
	}

	db, err := dataset.Open(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := dataset.EnsureSchema(ctx, db); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	start := time.Now()
	if err := dataset.InsertPlaces(ctx, db, snap.Places); err != nil {
		logger.Error("failed to insert places", "error", err)
		os.Exit(1)
	}
	if err := dataset.InsertReviews(ctx, db, snap.Reviews); err != nil {
		logger.Error("failed to insert reviews", "error", err)
		os.Exit(1)
	}

	logger.Info("ingest complete",
		"places", len(snap.Places),
		"reviews", len(snap.Reviews),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
