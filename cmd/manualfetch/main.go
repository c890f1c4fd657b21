// Command manualfetch runs one full ingestion and exits. The exit status is non-zero
// when nothing was published.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/app"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.MustLoad()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize ingestion")
	}

	// 1. Validate database connectivity
	log.Info().Msg("Validating service health...")
	if err := a.DB.Health(ctx); err != nil {
		a.Close()
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	// 2. Run the pipeline once
	summary, err := a.Pipeline.TriggerIngestion(ctx)
	a.Close()
	if err != nil {
		log.Error().Err(err).Msg("Manual ingestion failed, previous board left in place")
		os.Exit(1)
	}

	// 3. Print the summary for the operator
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		log.Fatal().Err(err).Msg("Failed to write summary")
	}
}
