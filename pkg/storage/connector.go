package storage

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/nmd-agent/pkg/config"
	"github.com/nmd-agent/pkg/monitor"
)

// Connector establishes storage sessions and retries until one succeeds.
type Connector struct {
	cfg     config.DBConfig
	open    OpenFunc
	clock   clockwork.Clock
	log     *zap.Logger
	metrics monitor.StorageMetrics
}

// NewConnector uses Open when open is nil and the real clock when clock is nil.
func NewConnector(cfg config.DBConfig, open OpenFunc, clock clockwork.Clock, metrics monitor.StorageMetrics, log *zap.Logger) *Connector {
	if open == nil {
		open = Open
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Connector{
		cfg:     cfg,
		open:    open,
		clock:   clock,
		log:     log,
		metrics: metrics,
	}
}

// Connect blocks until a session is established. Backend failures are logged and
// retried every reconnect-interval without limit; the only error is ctx cancellation.
func (c *Connector) Connect(ctx context.Context) (*Conn, error) {
	target := Target(c.cfg)
	c.log.Info("connecting to storage", zap.String("target", target))

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConnect, err)
		}

		conn, err := c.dial(ctx)
		if err == nil {
			c.metrics.ConnectAttempts.WithLabelValues("success").Inc()
			c.log.Info("connected to storage", zap.String("target", target), zap.Int("attempt", attempt))
			return conn, nil
		}

		c.metrics.ConnectAttempts.WithLabelValues("failure").Inc()
		c.log.Error("could not connect to storage",
			zap.String("target", target),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", c.cfg.ReconnectDelay()),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrConnect, ctx.Err())
		case <-c.clock.After(c.cfg.ReconnectDelay()):
		}
	}
}

// Reconnect discards old (if any) before establishing a fresh session.
func (c *Connector) Reconnect(ctx context.Context, old *Conn) (*Conn, error) {
	if old != nil {
		if err := old.Close(); err != nil {
			c.log.Debug("closing stale storage session", zap.Error(err))
		}
	}
	return c.Connect(ctx)
}

func (c *Connector) dial(ctx context.Context) (*Conn, error) {
	db, err := c.open(c.cfg)
	if err != nil {
		return nil, err
	}
	// one session, one handle
	db.SetMaxOpenConns(1)

	pingCtx := ctx
	if timeout := c.cfg.DialTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return newConn(db, c.log, c.cfg.UnavailableAsNull), nil
}
