package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/metrics"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// Refresh transaction stages, reported in TransactionError
const (
	StageValidate       = "validate"
	StageBegin          = "begin"
	StageDelete         = "delete"
	StageInsertPlayers  = "insert_players"
	StageInsertRankings = "insert_rankings"
	StageInsertStats    = "insert_stats"
	StageMarker         = "marker"
	StageCommit         = "commit"
)

// TransactionError is returned when a publish fails. The transaction has been rolled
// back and the previously published snapshot is untouched.
type TransactionError struct {
	Stage string
	Err   error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("refresh failed at %s: %v", e.Stage, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

type publishOptions struct {
	afterDelete func(ctx context.Context, tx pgx.Tx) error
}

// PublishOption customises a single Publish call
type PublishOption func(*publishOptions)

// WithAfterDelete runs fn inside the transaction after the old rows are deleted and
// before the new ones are copied in. A non-nil error aborts the publish at the delete stage.
func WithAfterDelete(fn func(ctx context.Context, tx pgx.Tx) error) PublishOption {
	return func(o *publishOptions) {
		o.afterDelete = fn
	}
}

// Publish replaces the players, rankings and stats tables with snap and appends a run
// marker, all in one transaction.
func (db *Database) Publish(ctx context.Context, runID uuid.UUID, snap *models.Snapshot, opts ...PublishOption) (models.RunMarker, error) {
	var o publishOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := validateSnapshot(snap); err != nil {
		return models.RunMarker{}, &TransactionError{Stage: StageValidate, Err: err}
	}

	start := time.Now()
	marker, err := db.publish(ctx, runID, snap, &o)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordDBQuery("publish", "snapshot", status, time.Since(start).Seconds())
	if err != nil {
		return models.RunMarker{}, err
	}

	log.Info().
		Str("run_id", runID.String()).
		Int("players", len(snap.Players)).
		Int("rankings", len(snap.Rankings)).
		Int("stats", len(snap.Stats)).
		Dur("duration", time.Since(start)).
		Msg("Snapshot published")

	return marker, nil
}

func (db *Database) publish(ctx context.Context, runID uuid.UUID, snap *models.Snapshot, o *publishOptions) (models.RunMarker, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return models.RunMarker{}, &TransactionError{Stage: StageBegin, Err: err}
	}
	defer tx.Rollback(ctx)

	// Children first so the rankings foreign key never blocks the players delete.
	for _, table := range []string{"rankings", "stats", "players"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return models.RunMarker{}, &TransactionError{Stage: StageDelete, Err: fmt.Errorf("failed to clear %s: %w", table, err)}
		}
	}

	if o.afterDelete != nil {
		if err := o.afterDelete(ctx, tx); err != nil {
			return models.RunMarker{}, &TransactionError{Stage: StageDelete, Err: err}
		}
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"players"}, playerColumns,
		pgx.CopyFromSlice(len(snap.Players), func(i int) ([]any, error) {
			return playerRow(&snap.Players[i]), nil
		}),
	); err != nil {
		return models.RunMarker{}, &TransactionError{Stage: StageInsertPlayers, Err: err}
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"rankings"}, rankingColumns,
		pgx.CopyFromSlice(len(snap.Rankings), func(i int) ([]any, error) {
			return rankingRow(&snap.Rankings[i]), nil
		}),
	); err != nil {
		return models.RunMarker{}, &TransactionError{Stage: StageInsertRankings, Err: err}
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"stats"}, statsColumns(),
		pgx.CopyFromSlice(len(snap.Stats), func(i int) ([]any, error) {
			return snap.Stats[i].Row(), nil
		}),
	); err != nil {
		return models.RunMarker{}, &TransactionError{Stage: StageInsertStats, Err: err}
	}

	marker := models.RunMarker{RunID: runID}
	query := `INSERT INTO run_markers (run_id, completed_at) VALUES ($1, NOW()) RETURNING completed_at`
	if err := tx.QueryRow(ctx, query, runID).Scan(&marker.CompletedAt); err != nil {
		return models.RunMarker{}, &TransactionError{Stage: StageMarker, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return models.RunMarker{}, &TransactionError{Stage: StageCommit, Err: err}
	}

	return marker, nil
}

// validateSnapshot checks what the database would otherwise reject mid-transaction:
// duplicate keys and rankings for players that are not in the snapshot.
func validateSnapshot(snap *models.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}

	players := make(map[int]struct{}, len(snap.Players))
	for _, p := range snap.Players {
		if _, dup := players[p.ID]; dup {
			return fmt.Errorf("duplicate player %d", p.ID)
		}
		players[p.ID] = struct{}{}
	}

	type rankingKey struct {
		id int
		sc models.ScoringConvention
	}
	rankings := make(map[rankingKey]struct{}, len(snap.Rankings))
	for _, r := range snap.Rankings {
		if _, ok := players[r.PlayerID]; !ok {
			return fmt.Errorf("ranking for unknown player %d (%s)", r.PlayerID, r.Convention)
		}
		key := rankingKey{r.PlayerID, r.Convention}
		if _, dup := rankings[key]; dup {
			return fmt.Errorf("duplicate %s ranking for player %d", r.Convention, r.PlayerID)
		}
		rankings[key] = struct{}{}
	}

	stats := make(map[int]struct{}, len(snap.Stats))
	for _, s := range snap.Stats {
		if _, dup := stats[s.PlayerID]; dup {
			return fmt.Errorf("duplicate stat line for player %d", s.PlayerID)
		}
		stats[s.PlayerID] = struct{}{}
	}

	return nil
}
