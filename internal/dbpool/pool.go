// Package dbpool owns the PostgreSQL connection pool shared by the stores,
// the migration runner and the change-notification listener.
//
// The pgxpool is kept private so stores open tenant-scoped transactions
// through the store helpers rather than running bare statements.
package dbpool

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/persistorai/kinship/internal/metrics"
)

const statementTimeout = 30 * time.Second

// Pool is a PostgreSQL connection pool.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to databaseURL and verifies the server answers. maxConns
// must leave room for the connection the notification listener holds.
func NewPool(ctx context.Context, databaseURL string, maxConns int32) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	cfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(statementTimeout.Milliseconds(), 10)
	cfg.ConnConfig.RuntimeParams["application_name"] = "kinship"

	cfg.MaxConns = maxConns
	cfg.MinConns = min(2, maxConns)
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// Acquire takes a dedicated connection; the caller must Release it.
func (p *Pool) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	return p.pool.Acquire(ctx)
}

// Exec runs a statement outside any transaction.
func (p *Pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.pool.Exec(ctx, sql, args...)
}

// Query runs a query outside any transaction.
func (p *Pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return p.pool.Query(ctx, sql, args...)
}

// QueryRow runs a single-row query outside any transaction.
func (p *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.pool.QueryRow(ctx, sql, args...)
}

// Begin starts a read-write transaction.
func (p *Pool) Begin(ctx context.Context) (pgx.Tx, error) {
	return p.pool.Begin(ctx)
}

// BeginTx starts a transaction with opts.
func (p *Pool) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) { //nolint:gocritic // mirrors pgxpool.
	return p.pool.BeginTx(ctx, opts)
}

// Ping checks the server answers.
func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// HealthCheck round-trips a query and samples pool usage into metrics.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var one int
	if err := p.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("health check query: %w", err)
	}

	st := p.pool.Stat()
	metrics.DBPoolConnections.WithLabelValues("acquired").Set(float64(st.AcquiredConns()))
	metrics.DBPoolConnections.WithLabelValues("idle").Set(float64(st.IdleConns()))
	metrics.DBPoolConnections.WithLabelValues("max").Set(float64(st.MaxConns()))

	return nil
}

// DB returns a database/sql handle over the pool for libraries that need
// one. Closing it does not close the pool.
func (p *Pool) DB() *sql.DB {
	return stdlib.OpenDBFromPool(p.pool)
}

// Close closes every connection in the pool.
func (p *Pool) Close() {
	p.pool.Close()
}
