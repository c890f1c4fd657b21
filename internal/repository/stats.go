package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"

	"github.com/jackc/pgx/v5"
)

// StatsRepository reads the published stats table
type StatsRepository struct {
	db *Database
}

func selectStatsColumns() string {
	cols := statsColumns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// scanTargets returns Scan destinations in statsColumns order
func scanTargets(s *models.StatLine) []any {
	dest := make([]any, 0, 1+len(models.StatFields)+len(models.PointFields))
	dest = append(dest, &s.PlayerID)
	for _, name := range models.StatFields {
		dest = append(dest, s.Field(name))
	}
	return append(dest,
		&s.StandardPts, &s.StandardPtsPerGame,
		&s.HalfPPRPts, &s.HalfPPRPtsPerGame,
		&s.PPRPts, &s.PPRPtsPerGame,
	)
}

// GetByPlayerID retrieves one player's season stat line
func (r *StatsRepository) GetByPlayerID(ctx context.Context, playerID int) (*models.StatLine, error) {
	query := fmt.Sprintf(`SELECT %s FROM stats WHERE player_id = $1`, selectStatsColumns())

	var line models.StatLine
	err := r.db.Pool.QueryRow(ctx, query, playerID).Scan(scanTargets(&line)...)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("stats not found: player_id=%d", playerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return &line, nil
}

// List returns every published stat line ordered by PPR points
func (r *StatsRepository) List(ctx context.Context) ([]*models.StatLine, error) {
	query := fmt.Sprintf(`SELECT %s FROM stats ORDER BY ppr_pts DESC, player_id`, selectStatsColumns())

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stats: %w", err)
	}
	defer rows.Close()

	var lines []*models.StatLine
	for rows.Next() {
		var line models.StatLine
		if err := rows.Scan(scanTargets(&line)...); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		lines = append(lines, &line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats: %w", err)
	}

	return lines, nil
}

// Count returns the number of published stat lines
func (r *StatsRepository) Count(ctx context.Context) (int, error) {
	return r.db.count(ctx, "stats")
}
