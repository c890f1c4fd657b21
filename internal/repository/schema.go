package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"

	"github.com/rs/zerolog/log"
)

const playersDDL = `
	CREATE TABLE IF NOT EXISTS players (
		id         INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		position   TEXT NOT NULL,
		team       TEXT NOT NULL,
		height     TEXT NOT NULL DEFAULT '',
		weight     TEXT NOT NULL DEFAULT '',
		age        INTEGER NOT NULL DEFAULT 0,
		college    TEXT NOT NULL DEFAULT '',
		bye_week   INTEGER NOT NULL DEFAULT 0,
		image_url  TEXT NOT NULL DEFAULT ''
	)
`

const rankingsDDL = `
	CREATE TABLE IF NOT EXISTS rankings (
		player_id          INTEGER NOT NULL REFERENCES players(id),
		scoring_convention TEXT NOT NULL,
		overall            INTEGER NOT NULL,
		position_rank      INTEGER NOT NULL,
		best               INTEGER NOT NULL DEFAULT 0,
		worst              INTEGER NOT NULL DEFAULT 0,
		average            DOUBLE PRECISION NOT NULL DEFAULT 0,
		standard_deviation DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (player_id, scoring_convention)
	)
`

const runMarkersDDL = `
	CREATE TABLE IF NOT EXISTS run_markers (
		run_id       UUID PRIMARY KEY,
		completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// statsColumns is the stats table column list in models.StatLine.Row order
func statsColumns() []string {
	cols := make([]string, 0, 1+len(models.StatFields)+len(models.PointFields))
	cols = append(cols, "player_id")
	cols = append(cols, models.StatFields...)
	return append(cols, models.PointFields...)
}

// statsDDL has no foreign key to players: defenses and retired players appear in the
// stats tables without a ranking.
func statsDDL() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS stats (\n\t\tplayer_id INTEGER PRIMARY KEY")
	for _, col := range statsColumns()[1:] {
		fmt.Fprintf(&b, ",\n\t\t%s DOUBLE PRECISION NOT NULL DEFAULT 0", quoteIdent(col))
	}
	b.WriteString("\n\t)")
	return b.String()
}

// quoteIdent quotes reserved words used as column names ("int")
func quoteIdent(col string) string {
	if col == "int" {
		return `"int"`
	}
	return col
}

// Migrate creates the tables if they do not exist
func (db *Database) Migrate(ctx context.Context) error {
	statements := []string{
		playersDDL,
		rankingsDDL,
		statsDDL(),
		runMarkersDDL,
		`CREATE INDEX IF NOT EXISTS idx_run_markers_completed_at ON run_markers (completed_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	log.Info().Msg("Database schema ready")
	return nil
}
