package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/importer"
	"foodgram/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	defaults := importer.DefaultConfig()

	files := flag.String("files", strings.Join(defaults.FilePaths, ","), "comma separated ingredient CSV files (.csv or .csv.gz)")
	batchSize := flag.Int("batch", defaults.BatchSize, "ingredients upserted per batch")
	s3Prefix := flag.String("s3-prefix", "imports/", "key prefix tried in the S3 bucket before the local file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Files are read from S3 first when a bucket is configured, with the
	// local file system as fallback.
	fileLoader := importer.NewFileLoader(logger)
	var s3Loader importer.Loader
	if cfg.S3.Bucket != "" {
		s3Loader, err = importer.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			s3Loader = nil
		}
	} else {
		logger.Info().Msg("using local file system for ingredient files (no S3 bucket configured)")
	}
	loader := importer.NewFallbackLoader(s3Loader, fileLoader, *s3Prefix, logger)

	importConfig := &importer.Config{
		FilePaths: splitFiles(*files),
		BatchSize: *batchSize,
	}
	if len(importConfig.FilePaths) == 0 {
		return fmt.Errorf("no ingredient files given")
	}

	catalogRepo := repository.NewCatalogRepository(pool, logger)
	result, err := importer.New(importConfig, loader, catalogRepo, logger).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d rows: %d unique ingredients, %d new\n", result.Rows, result.Unique, result.Created)
	return nil
}

func splitFiles(raw string) []string {
	var files []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return files
}
