// main.go
//
// Entrypoint for the SKU image packer + Grid Chase server.
// Responsibilities:
//   - Load .env (if any) and configuration from the environment.
//   - Configure the global zerolog logger.
//   - Open the SQLite results database and apply embedded migrations.
//   - Wire stores, the image fetcher and the batch processor into the HTTP server.
//   - Serve until SIGINT/SIGTERM, then shut down gracefully.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aswathmantle-create/game/assets"
	"github.com/aswathmantle-create/game/internal/batch"
	"github.com/aswathmantle-create/game/internal/config"
	"github.com/aswathmantle-create/game/internal/fetch"
	"github.com/aswathmantle-create/game/internal/httpserver"
	"github.com/aswathmantle-create/game/internal/results"
	"github.com/aswathmantle-create/game/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogger(cfg)

	db, err := results.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("open database")
	}
	defer db.Close()
	if err := results.Migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	proc := batch.New(fetch.NewHTTPFetcher(cfg.FetchTimeout))
	proc.CanvasSize = cfg.CanvasSize
	proc.Quality = cfg.JPEGQuality

	srv := httpserver.New(httpserver.Deps{
		Config:   cfg,
		Games:    store.NewMemoryStore(),
		Archives: store.NewArchiveStore(cfg.ArchiveCacheSize, cfg.ArchiveTTL),
		Results:  results.NewStore(db),
		Batch:    proc,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("port", cfg.Port).Str("env", cfg.NodeEnv).Msg("starting server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Error().Err(err).Msg("server exited")
	}
}

func setupLogger(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
