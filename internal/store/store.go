// Package store persists import runs to PostgreSQL.
//
// A run is written in a single transaction: the run row first, then its
// divisions, people and collected line failures through the COPY protocol.
// Either all of it is visible or none of it is.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/roster/internal/config"
	"github.com/JonMunkholm/roster/internal/core"
)

// ErrDuplicateRun is returned when a run id has already been saved.
var ErrDuplicateRun = errors.New("duplicate key: import run already saved")

// DBTX is the subset of pgx used to write a run. pgx.Tx and *pgxpool.Pool
// both satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// Run is one finished import.
type Run struct {
	ID        uuid.UUID
	FileName  string
	CreatedAt time.Time
	Result    *core.Result
}

// RunSummary is the persisted aggregate view of a run.
type RunSummary struct {
	ID          uuid.UUID       `json:"id"`
	FileName    string          `json:"fileName"`
	CreatedAt   time.Time       `json:"createdAt"`
	Duration    time.Duration   `json:"-"`
	Lines       int             `json:"lines"`
	FailedLines int             `json:"failedLines"`
	Statistics  core.Statistics `json:"statistics"`
}

// Store writes runs through a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects a pool sized from cfg and verifies it with a ping.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return New(pool), nil
}

// Close releases every pooled connection.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema creates missing tables and indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveRun writes run in one transaction.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op once committed

	if err := writeRun(ctx, tx, run); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}

	slog.Debug("import run saved",
		"run_id", run.ID,
		"people", len(run.Result.People),
		"divisions", len(run.Result.Divisions),
		"failed", len(run.Result.Failed),
	)
	return nil
}

// writeRun inserts the run row and copies its children. Divisions go
// before people so the composite foreign key resolves.
func writeRun(ctx context.Context, db DBTX, run Run) error {
	if run.Result == nil {
		return fmt.Errorf("save run %s: no result", run.ID)
	}

	if _, err := db.Exec(ctx, insertRunSQL, runArgs(run)...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrDuplicateRun, run.ID)
		}
		return fmt.Errorf("insert run: %w", err)
	}

	copies := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{"divisions", divisionColumns, divisionRows(run.ID, run.Result.Divisions)},
		{"people", peopleColumns, peopleRows(run.ID, run.Result.People)},
		{"import_failures", failureColumns, failureRows(run.ID, run.Result.Failed)},
	}

	for _, c := range copies {
		if len(c.rows) == 0 {
			continue
		}
		n, err := db.CopyFrom(ctx, pgx.Identifier{c.table}, c.columns, pgx.CopyFromRows(c.rows))
		if err != nil {
			return fmt.Errorf("copy %s: %w", c.table, err)
		}
		if n != int64(len(c.rows)) {
			return fmt.Errorf("copy %s: wrote %d of %d rows", c.table, n, len(c.rows))
		}
	}

	return nil
}

// LoadRun reads a persisted run summary. Unknown ids return
// core.ErrRunNotFound.
func (s *Store) LoadRun(ctx context.Context, id uuid.UUID) (RunSummary, error) {
	return loadRun(ctx, s.pool, id)
}

func loadRun(ctx context.Context, db DBTX, id uuid.UUID) (RunSummary, error) {
	var (
		pgID      pgtype.UUID
		fileName  pgtype.Text
		createdAt pgtype.Timestamptz
		durMS     int64
		sum       RunSummary
	)

	err := db.QueryRow(ctx, selectRunSQL, toPgUUID(id)).Scan(
		&pgID, &fileName, &createdAt, &durMS, &sum.Lines,
		&sum.Statistics.Total, &sum.Statistics.Male, &sum.Statistics.Female,
		&sum.Statistics.UniqueDivisions, &sum.Statistics.AverageSalary,
		&sum.Statistics.MaxSalary, &sum.Statistics.MinSalary, &sum.FailedLines,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return RunSummary{}, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return RunSummary{}, fmt.Errorf("load run %s: %w", id, err)
	}

	sum.ID = uuid.UUID(pgID.Bytes)
	sum.FileName = fromPgText(fileName)
	sum.CreatedAt = createdAt.Time
	sum.Duration = time.Duration(durMS) * time.Millisecond
	return sum, nil
}
