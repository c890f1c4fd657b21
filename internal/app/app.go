// Package app builds the ingestion dependency graph from configuration. Both
// binaries share it so a manual run is wired exactly like a scheduled one.
package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/cache"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/client"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/config"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/export"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/pipeline"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/render"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/repository"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/scraper"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog/log"
)

// App holds every long-lived resource. Close releases them in reverse order.
type App struct {
	DB       *repository.Database
	Cache    *cache.RedisCache
	Renderer *render.ChromeRenderer
	Pipeline *pipeline.Pipeline
}

// Build connects to Postgres (migrating the schema), Redis and optionally DynamoDB,
// and assembles the pipeline.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.DB = db

	if err := db.Migrate(ctx); err != nil {
		a.Close()
		return nil, err
	}

	pcfg := pipeline.Config{
		Store:      db,
		Sequential: cfg.PipelineSequential,
	}

	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTLLastRun,
	})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr()).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		a.Cache = redisCache
		pcfg.Cache = redisCache
		log.Info().Msg("Redis cache connected")
	}

	if cfg.DynamoExportEnabled {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		pcfg.Exporter = export.NewDynamoExporter(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable)
		log.Info().Str("table", cfg.DynamoTable).Msg("DynamoDB export enabled")
	}

	pageClient := client.NewClient(client.Config{
		Timeout:        cfg.SourceTimeout,
		MaxConcurrency: cfg.SourceMaxConcurrency,
		MaxRetries:     cfg.SourceMaxRetries,
		UserAgent:      cfg.SourceUserAgent,
	})

	a.Renderer = render.NewChromeRenderer(render.ChromeConfig{
		RemoteURL:     cfg.ChromeRemoteURL,
		IdleTimeout:   cfg.ChromeIdleTimeout,
		RenderTimeout: cfg.RenderTimeout,
	})

	pcfg.Rankings = scraper.NewRankingsExtractor(a.Renderer, scraper.WithDetailedView(cfg.RankingsDetailedView))
	pcfg.Bios = scraper.NewBioEnricher(pageClient, cfg.BioWorkers)
	pcfg.Stats = scraper.NewStatsExtractor(pageClient, cfg.StatsBaseURL)

	a.Pipeline = pipeline.New(pcfg)
	return a, nil
}

// Close releases the browser, cache and database pool
func (a *App) Close() {
	if a.Renderer != nil {
		a.Renderer.Close()
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
