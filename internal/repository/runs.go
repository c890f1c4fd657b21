package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"

	"github.com/jackc/pgx/v5"
)

// ErrNoRuns is returned by Latest before the first successful publish
var ErrNoRuns = errors.New("no successful run recorded")

// RunMarkerRepository reads the append-only run_markers table
type RunMarkerRepository struct {
	db *Database
}

// Latest returns the newest run marker
func (r *RunMarkerRepository) Latest(ctx context.Context) (*models.RunMarker, error) {
	query := `
		SELECT run_id, completed_at
		FROM run_markers
		ORDER BY completed_at DESC
		LIMIT 1
	`

	var m models.RunMarker
	err := r.db.Pool.QueryRow(ctx, query).Scan(&m.RunID, &m.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run marker: %w", err)
	}

	return &m, nil
}

// Count returns how many runs have been published
func (r *RunMarkerRepository) Count(ctx context.Context) (int, error) {
	return r.db.count(ctx, "run_markers")
}

// LatestRun returns the newest run marker, or ErrNoRuns
func (db *Database) LatestRun(ctx context.Context) (*models.RunMarker, error) {
	return db.RunMarkers.Latest(ctx)
}
