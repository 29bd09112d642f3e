package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/anonto42/property-listing/backend/internal/importer"
	"github.com/anonto42/property-listing/backend/internal/repositories"
	"github.com/anonto42/property-listing/backend/pkg/config"
	"github.com/anonto42/property-listing/backend/pkg/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	var file string
	var batchSize int
	flag.StringVar(&file, "file", "", "path of the CSV file to import")
	flag.IntVar(&batchSize, "batch", importer.DefaultBatchSize, "listings inserted per batch")
	flag.Parse()

	if file == "" {
		file = flag.Arg(0)
	}
	if file == "" {
		log.Fatal().Msg("Usage: importer -file listings.csv")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init("property-importer", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to open CSV")
	}
	defer f.Close()

	// The importer only needs MongoDB
	cfg.UserStore = config.UserStoreMongo
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize databases")
	}
	defer db.CloseDB()

	store := repositories.NewMongoPropertyRepository(db.Database)
	inserted, err := importer.Import(ctx, store, f, batchSize)
	if err != nil {
		log.Error().Err(err).Int("inserted", inserted).Msg("CSV import failed")
		return
	}
	log.Info().Int("inserted", inserted).Str("file", file).Msg("CSV import completed")
}
