// Package history persists scan results to PostgreSQL. It is optional:
// when no DSN is configured the service runs without it and the
// history endpoint reports the feature as disabled.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"market-scanner/internal/logging"
	"market-scanner/internal/scan"
)

// Record is one persisted scan result row.
type Record struct {
	ID          int64             `json:"id"`
	ScanID      string            `json:"scan_id"`
	Symbol      string            `json:"symbol"`
	GateSet     string            `json:"gate_set"`
	Direction   string            `json:"direction"`
	Score       float64           `json:"score"`
	PassedGates int               `json:"passed_gates"`
	TotalGates  int               `json:"total_gates"`
	Passed      bool              `json:"passed"`
	Gates       []scan.GateResult `json:"gates"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Repository wraps the PostgreSQL connection pool.
type Repository struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Open connects to PostgreSQL and runs migrations.
func Open(ctx context.Context, dsn string) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.HealthCheckPeriod = time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &Repository{pool: pool, log: logging.Component("history")}
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	r.log.Info().Msg("scan history storage connected")
	return r, nil
}

// Close releases the connection pool.
func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

func (r *Repository) migrate(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS scan_results (
		id BIGSERIAL PRIMARY KEY,
		scan_id VARCHAR(64) NOT NULL,
		symbol VARCHAR(20) NOT NULL,
		gate_set VARCHAR(100) NOT NULL,
		direction VARCHAR(10),
		score DECIMAL(10, 2) NOT NULL,
		passed_gates INT NOT NULL,
		total_gates INT NOT NULL,
		passed BOOLEAN NOT NULL,
		gates JSONB,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_scan_results_created_at ON scan_results(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_scan_results_symbol ON scan_results(symbol);`

	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Save stores every evaluated result of one watchlist run.
func (r *Repository) Save(ctx context.Context, wl *scan.WatchlistResult) error {
	const query = `
	INSERT INTO scan_results (scan_id, symbol, gate_set, direction, score, passed_gates, total_gates, passed, gates)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, res := range wl.Results {
		gates, err := json.Marshal(res.Gates)
		if err != nil {
			return fmt.Errorf("encode gates for %s: %w", res.Symbol, err)
		}
		_, err = r.pool.Exec(ctx, query,
			wl.ScanID, res.Symbol, res.GateSet, string(res.Direction),
			res.Score, res.PassedGates, res.TotalGates, res.Passed, gates,
		)
		if err != nil {
			return fmt.Errorf("insert scan result for %s: %w", res.Symbol, err)
		}
	}
	return nil
}

// ListRecent returns the newest records, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	const query = `
	SELECT id, scan_id, symbol, gate_set, direction, score, passed_gates, total_gates, passed, gates, created_at
	FROM scan_results
	ORDER BY created_at DESC
	LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query scan history: %w", err)
	}
	defer rows.Close()

	records := make([]*Record, 0, limit)
	for rows.Next() {
		var rec Record
		var gates []byte
		if err := rows.Scan(
			&rec.ID, &rec.ScanID, &rec.Symbol, &rec.GateSet, &rec.Direction,
			&rec.Score, &rec.PassedGates, &rec.TotalGates, &rec.Passed, &gates, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if len(gates) > 0 {
			if err := json.Unmarshal(gates, &rec.Gates); err != nil {
				r.log.Warn().Err(err).Int64("id", rec.ID).Msg("corrupt gates payload, row kept without gates")
			}
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
