package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/metrics"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"

	"github.com/jackc/pgx/v5"
)

var playerColumns = []string{
	"id", "name", "position", "team", "height", "weight", "age", "college", "bye_week", "image_url",
}

func playerRow(p *models.Player) []any {
	return []any{
		p.ID, p.Name, string(p.Position), string(p.Team),
		p.Height, p.Weight, p.Age, p.College, p.ByeWeek, p.ImageURL,
	}
}

// PlayerRepository reads the published players table
type PlayerRepository struct {
	db *Database
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	var position, team string
	err := row.Scan(
		&p.ID, &p.Name, &position, &team,
		&p.Height, &p.Weight, &p.Age, &p.College, &p.ByeWeek, &p.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	p.Position = models.Position(position)
	p.Team = models.Team(team)
	return &p, nil
}

// GetByID retrieves a player by source id
func (r *PlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, name, position, team, height, weight, age, college, bye_week, image_url
		FROM players
		WHERE id = $1
	`

	start := time.Now()
	p, err := scanPlayer(r.db.Pool.QueryRow(ctx, query, id))
	metrics.RecordDBQuery("select", "players", queryStatus(err), time.Since(start).Seconds())

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("player not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return p, nil
}

// List returns every published player ordered by id
func (r *PlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `
		SELECT id, name, position, team, height, weight, age, college, bye_week, image_url
		FROM players
		ORDER BY id
	`

	start := time.Now()
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		metrics.RecordDBQuery("select", "players", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	metrics.RecordDBQuery("select", "players", "success", time.Since(start).Seconds())
	return players, nil
}

// Count returns the number of published players
func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	return r.db.count(ctx, "players")
}

// count is shared by the read repositories. table is never user input.
func (db *Database) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

func queryStatus(err error) string {
	if err != nil && err != pgx.ErrNoRows {
		return "error"
	}
	return "success"
}
