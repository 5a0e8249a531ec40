package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nmd-agent/pkg/monitor"
)

// Conn is one storage session. It holds at most one open transaction and is not
// safe for concurrent use.
type Conn struct {
	db  *sql.DB
	tx  *sql.Tx
	log *zap.Logger

	unavailableAsNull bool
}

func newConn(db *sql.DB, log *zap.Logger, unavailableAsNull bool) *Conn {
	return &Conn{db: db, log: log, unavailableAsNull: unavailableAsNull}
}

// Execute inserts m inside a new transaction, left open for Commit. On failure the
// transaction is rolled back and the error wraps ErrWrite.
func (c *Conn) Execute(ctx context.Context, m monitor.Measurement) error {
	if c.tx != nil {
		// a previous Execute was never committed
		_ = c.tx.Rollback()
		c.tx = nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %w", ErrWrite, err)
	}
	_, err = tx.ExecContext(ctx, InsertMeasurement,
		c.bindFloat(m.ProcessorLoad),
		c.bindFloat(m.TotalDiskSpaceGB),
		c.bindFloat(m.UsedDiskSpaceGB),
		m.FormattedTimestamp(),
		m.ComponentID,
		c.bindString(m.Uptime),
	)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			c.log.Debug("rollback after failed insert", zap.Error(rbErr))
		}
		return fmt.Errorf("%w: insert measurement: %w", ErrWrite, err)
	}
	c.tx = tx
	return nil
}

// Commit makes the pending insert durable. The error wraps ErrCommit.
func (c *Conn) Commit() error {
	if c.tx == nil {
		return fmt.Errorf("%w: no pending transaction", ErrCommit)
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}
	return nil
}

// Close rolls back any pending transaction and releases the handle.
func (c *Conn) Close() error {
	if c.tx != nil {
		_ = c.tx.Rollback()
		c.tx = nil
	}
	return c.db.Close()
}

// SQL has no NaN. An unavailable reading is stored as NULL, or as
// UnavailableValue / "" for schemas that declare the columns NOT NULL.
func (c *Conn) bindFloat(v float64) any {
	switch {
	case !monitor.IsSentinel(v):
		return v
	case c.unavailableAsNull:
		return sql.NullFloat64{}
	default:
		return UnavailableValue
	}
}

func (c *Conn) bindString(s string) any {
	if s == "" && c.unavailableAsNull {
		return sql.NullString{}
	}
	return s
}
