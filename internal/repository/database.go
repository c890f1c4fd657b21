package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxConns   = 10
	healthCheckBudget = 2 * time.Second
)

// Database is the board store. Each refresh runs in one transaction on one
// connection; the admin API and health checks share what is left of the pool.
type Database struct {
	Pool *pgxpool.Pool

	Players    *PlayerRepository
	Rankings   *RankingRepository
	Stats      *StatsRepository
	RunMarkers *RunMarkerRepository
}

// Config locates the board database
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	// MaxConns caps the pool. Zero means defaultMaxConns.
	MaxConns int32
}

// connString builds a postgres URL. Credentials are escaped so passwords
// with reserved characters survive the round trip through pgx.
func (c Config) connString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

func (c Config) poolConfig() (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(c.connString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pc.MaxConns = c.MaxConns
	if pc.MaxConns <= 0 {
		pc.MaxConns = defaultMaxConns
	}
	// one warm connection for the refresh transaction, one for the admin API
	pc.MinConns = min(2, pc.MaxConns)
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 30 * time.Minute
	pc.HealthCheckPeriod = time.Minute
	return pc, nil
}

// NewDatabase opens the pool and verifies the server answers
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	pc, err := cfg.poolConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach board database at %s: %w", net.JoinHostPort(cfg.Host, cfg.Port), err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Int32("max_conns", pc.MaxConns).
		Msg("Board database connected")

	db := &Database{Pool: pool}
	db.Players = &PlayerRepository{db: db}
	db.Rankings = &RankingRepository{db: db}
	db.Stats = &StatsRepository{db: db}
	db.RunMarkers = &RunMarkerRepository{db: db}
	return db, nil
}

// Close releases the pool
func (db *Database) Close() {
	if db.Pool == nil {
		return
	}
	db.Pool.Close()
	log.Info().Msg("Board database pool closed")
}

// Health reports whether the board tables are reachable. A server that answers
// but was never migrated counts as unhealthy.
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckBudget)
	defer cancel()

	var one int
	err := db.Pool.QueryRow(ctx, `SELECT 1 FROM run_markers LIMIT 1`).Scan(&one)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// PoolUsage is a snapshot of the connection pool
type PoolUsage struct {
	Total    int32
	Acquired int32
	Idle     int32
	Max      int32
}

// PoolUsage samples the pool and publishes the connection gauges
func (db *Database) PoolUsage() PoolUsage {
	stat := db.Pool.Stat()
	usage := PoolUsage{
		Total:    stat.TotalConns(),
		Acquired: stat.AcquiredConns(),
		Idle:     stat.IdleConns(),
		Max:      stat.MaxConns(),
	}
	metrics.UpdateDBConnectionStats(usage.Acquired, usage.Idle)
	return usage
}
