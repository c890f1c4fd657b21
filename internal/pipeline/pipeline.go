package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/client"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/dedupe"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/metrics"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/repository"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/scraper"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrRunInProgress is returned when TriggerIngestion is called while a run is active
var ErrRunInProgress = errors.New("ingestion run already in progress")

// RankingsSource yields one scoring convention's ranked players
type RankingsSource interface {
	Rankings(ctx context.Context, sc models.ScoringConvention) ([]models.RankedPlayer, error)
}

// BioSource enriches players with their bio. Players whose page fails are absent
// from the result; only cancellation is returned as an error.
type BioSource interface {
	Enrich(ctx context.Context, tasks []models.Player) (map[int]models.PlayerBio, error)
}

// StatsSource yields scored, merged season stat lines across every category
type StatsSource interface {
	ExtractAll(ctx context.Context) ([]models.StatLine, error)
}

// Store publishes snapshots and reads back run markers
type Store interface {
	Publish(ctx context.Context, runID uuid.UUID, snap *models.Snapshot, opts ...repository.PublishOption) (models.RunMarker, error)
	LatestRun(ctx context.Context) (*models.RunMarker, error)
}

// RunCache caches the newest run's completion time
type RunCache interface {
	LastRun(ctx context.Context) (time.Time, bool, error)
	SetLastRun(ctx context.Context, t time.Time) error
}

// Exporter mirrors a published snapshot somewhere else. Failures never undo the publish.
type Exporter interface {
	Export(ctx context.Context, marker models.RunMarker, snap *models.Snapshot) error
}

// Config wires a Pipeline. Cache and Exporter are optional.
type Config struct {
	Rankings   RankingsSource
	Bios       BioSource
	Stats      StatsSource
	Store      Store
	Cache      RunCache
	Exporter   Exporter
	Sequential bool
}

// RunSummary describes a successful run
type RunSummary struct {
	RunID       uuid.UUID     `json:"run_id"`
	CompletedAt time.Time     `json:"completed_at"`
	Players     int           `json:"players"`
	Rankings    int           `json:"rankings"`
	Stats       int           `json:"stats"`
	BioFailures int           `json:"bio_failures"`
	Duration    time.Duration `json:"duration_ns"`
}

// Pipeline runs the full ingestion: three rankings passes, bio enrichment, stats
// extraction and an atomic publish.
type Pipeline struct {
	cfg Config
	mu  sync.Mutex
}

// New creates a pipeline
func New(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// TriggerIngestion runs the pipeline once. Nothing is published unless every
// rankings and stats page was read; bio failures only drop that player's bio.
func (p *Pipeline) TriggerIngestion(ctx context.Context) (RunSummary, error) {
	if !p.mu.TryLock() {
		return RunSummary{}, ErrRunInProgress
	}
	defer p.mu.Unlock()

	runID := uuid.New()
	start := time.Now()
	logger := log.With().Str("run_id", runID.String()).Logger()
	logger.Info().Bool("sequential", p.cfg.Sequential).Msg("Starting ingestion run")

	summary, err := p.run(ctx, runID)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordSync("ingestion", "error", duration.Seconds())
		metrics.RecordError("pipeline", errorType(err))
		logger.Error().Err(err).Dur("duration", duration).Msg("Ingestion run failed")
		return RunSummary{}, err
	}

	summary.Duration = duration
	metrics.RecordSync("ingestion", "success", duration.Seconds())
	metrics.UpdatePublishedStats(summary.Players, summary.Rankings, summary.Stats)

	logger.Info().
		Int("players", summary.Players).
		Int("rankings", summary.Rankings).
		Int("stats", summary.Stats).
		Int("bio_failures", summary.BioFailures).
		Dur("duration", duration).
		Msg("Ingestion run complete")

	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, runID uuid.UUID) (RunSummary, error) {
	var (
		brd     *board
		lines   []models.StatLine
		summary RunSummary
	)

	if p.cfg.Sequential {
		var err error
		if brd, err = p.buildBoard(ctx); err != nil {
			return summary, err
		}
		if lines, err = p.extractStats(ctx); err != nil {
			return summary, err
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			brd, err = p.buildBoard(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			lines, err = p.extractStats(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return summary, err
		}
	}

	snap := &models.Snapshot{
		Players:  brd.players,
		Rankings: brd.rankings,
		Stats:    lines,
	}

	marker, err := p.cfg.Store.Publish(ctx, runID, snap)
	if err != nil {
		return summary, fmt.Errorf("failed to publish snapshot: %w", err)
	}

	if p.cfg.Cache != nil {
		if err := p.cfg.Cache.SetLastRun(ctx, marker.CompletedAt); err != nil {
			log.Warn().Err(err).Msg("Failed to cache run marker")
		}
	}

	if p.cfg.Exporter != nil {
		if err := p.cfg.Exporter.Export(ctx, marker, snap); err != nil {
			log.Warn().Err(err).Str("run_id", runID.String()).Msg("Snapshot export failed")
		}
	}

	return RunSummary{
		RunID:       marker.RunID,
		CompletedAt: marker.CompletedAt,
		Players:     len(snap.Players),
		Rankings:    len(snap.Rankings),
		Stats:       len(snap.Stats),
		BioFailures: brd.bioFailures,
	}, nil
}

type board struct {
	players     []models.Player
	rankings    []models.Ranking
	bioFailures int
}

// buildBoard runs the rankings passes in order, then enriches each distinct player once
func (p *Pipeline) buildBoard(ctx context.Context) (*board, error) {
	start := time.Now()
	sched := dedupe.NewScheduler(dedupe.NewInMemoryDeduper())

	var rankings []models.Ranking
	for _, sc := range models.ScoringConventions {
		rows, err := p.cfg.Rankings.Rankings(ctx, sc)
		if err != nil {
			metrics.RecordSync("rankings", "error", time.Since(start).Seconds())
			return nil, fmt.Errorf("failed to extract %s rankings: %w", sc, err)
		}
		added := sched.AddAll(rows)
		for i := range rows {
			rankings = append(rankings, rows[i].ToRanking())
		}
		log.Info().
			Str("convention", sc.String()).
			Int("rows", len(rows)).
			Int("new_players", added).
			Msg("Rankings pass complete")
	}
	metrics.RecordSync("rankings", "success", time.Since(start).Seconds())

	tasks := sched.Tasks()
	bioStart := time.Now()
	bios, err := p.cfg.Bios.Enrich(ctx, tasks)
	if err != nil {
		metrics.RecordSync("bio", "error", time.Since(bioStart).Seconds())
		return nil, fmt.Errorf("failed to enrich players: %w", err)
	}
	metrics.RecordSync("bio", "success", time.Since(bioStart).Seconds())

	b := &board{rankings: rankings, players: make([]models.Player, 0, len(tasks))}
	for _, player := range tasks {
		if bio, ok := bios[player.ID]; ok {
			player.PlayerBio = bio
		} else {
			b.bioFailures++
		}
		b.players = append(b.players, player)
	}

	return b, nil
}

func (p *Pipeline) extractStats(ctx context.Context) ([]models.StatLine, error) {
	start := time.Now()
	lines, err := p.cfg.Stats.ExtractAll(ctx)
	if err != nil {
		metrics.RecordSync("stats", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to extract stats: %w", err)
	}
	metrics.RecordSync("stats", "success", time.Since(start).Seconds())
	return lines, nil
}

// LastSuccessfulRun returns the completion time of the newest published run.
// ok is false when nothing has been published yet.
func (p *Pipeline) LastSuccessfulRun(ctx context.Context) (time.Time, bool, error) {
	if p.cfg.Cache != nil {
		t, ok, err := p.cfg.Cache.LastRun(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Run marker cache unavailable, reading database")
		} else if ok {
			return t, true, nil
		}
	}

	marker, err := p.cfg.Store.LatestRun(ctx)
	if errors.Is(err, repository.ErrNoRuns) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last run: %w", err)
	}

	if p.cfg.Cache != nil {
		if err := p.cfg.Cache.SetLastRun(ctx, marker.CompletedAt); err != nil {
			log.Warn().Err(err).Msg("Failed to cache run marker")
		}
	}

	return marker.CompletedAt, true, nil
}

func errorType(err error) string {
	var (
		txErr        *repository.TransactionError
		structureErr *scraper.StructureError
		networkErr   *client.NetworkError
	)
	switch {
	case errors.As(err, &txErr):
		return "transaction_" + txErr.Stage
	case errors.As(err, &structureErr):
		return "structure"
	case errors.As(err, &networkErr):
		return "network"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "extract"
	}
}
