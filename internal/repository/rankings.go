package repository

import (
	"context"
	"fmt"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"
)

var rankingColumns = []string{
	"player_id", "scoring_convention", "overall", "position_rank",
	"best", "worst", "average", "standard_deviation",
}

func rankingRow(r *models.Ranking) []any {
	return []any{
		r.PlayerID, string(r.Convention), r.Overall, r.PositionRank,
		r.Best, r.Worst, r.Average, r.StdDev,
	}
}

// RankingRepository reads the published rankings table
type RankingRepository struct {
	db *Database
}

// ListByConvention returns one convention's rankings in overall order
func (r *RankingRepository) ListByConvention(ctx context.Context, sc models.ScoringConvention) ([]*models.Ranking, error) {
	query := `
		SELECT player_id, scoring_convention, overall, position_rank,
		       best, worst, average, standard_deviation
		FROM rankings
		WHERE scoring_convention = $1
		ORDER BY overall
	`

	rows, err := r.db.Pool.Query(ctx, query, string(sc))
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings: %w", err)
	}
	defer rows.Close()

	var rankings []*models.Ranking
	for rows.Next() {
		var rk models.Ranking
		var convention string
		err := rows.Scan(
			&rk.PlayerID, &convention, &rk.Overall, &rk.PositionRank,
			&rk.Best, &rk.Worst, &rk.Average, &rk.StdDev,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ranking: %w", err)
		}
		rk.Convention = models.ScoringConvention(convention)
		rankings = append(rankings, &rk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rankings: %w", err)
	}

	return rankings, nil
}

// Count returns the number of published ranking rows across all conventions
func (r *RankingRepository) Count(ctx context.Context) (int, error) {
	return r.db.count(ctx, "rankings")
}
