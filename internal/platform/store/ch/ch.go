// Package ch provides a clickhouse client over the native protocol
package ch

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures clickhouse client
type Config struct {
	URL string

	// Role tags connections in system.query_log client info
	Role string
}

// Rows is the minimal result set iteration for ch
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
	Columns() []string
}

// CH wraps a native protocol connection pool
type CH struct {
	conn driver.Conn
}

// Open parses the DSN, dials clickhouse, and verifies the connection
func Open(ctx context.Context, cfg Config) (*CH, error) {
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("ch dsn: %w", err)
	}
	opts.ClientInfo = BuildClientInfo(cfg.Role, "")

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("ch open: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ch ping: %w", err)
	}
	return &CH{conn: conn}, nil
}

// Insert appends rows to table through a prepared batch
// callers pass literal table names, never user input
func (c *CH) Insert(ctx context.Context, table string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO "+table)
	if err != nil {
		return fmt.Errorf("ch prepare %s: %w", table, err)
	}
	for _, row := range rows {
		if err := batch.Append(row...); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("ch append %s: %w", table, err)
		}
	}
	return batch.Send()
}

// Query runs a query and returns ch.Rows
func (c *CH) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return driverRows{r: r}, nil
}

// Ping verifies connectivity
func (c *CH) Ping(ctx context.Context) error { return c.conn.Ping(ctx) }

// Close closes the connection pool
func (c *CH) Close() error { return c.conn.Close() }

// driverRows adapts driver.Rows to ch.Rows
type driverRows struct{ r driver.Rows }

func (x driverRows) Next() bool             { return x.r.Next() }
func (x driverRows) Scan(dest ...any) error { return x.r.Scan(dest...) }
func (x driverRows) Err() error             { return x.r.Err() }
func (x driverRows) Close() error           { return x.r.Close() }
func (x driverRows) Columns() []string      { return x.r.Columns() }
