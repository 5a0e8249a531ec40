package sampler

import (
	"context"

	"github.com/nmd-agent/pkg/monitor"
	"github.com/nmd-agent/pkg/storage"
)

// Session is one established storage session.
type Session interface {
	Execute(ctx context.Context, m monitor.Measurement) error
	Commit() error
	Close() error
}

// Storage hands out sessions. Connect and Reconnect block until they succeed and
// fail only when ctx is done.
type Storage interface {
	Connect(ctx context.Context) (Session, error)
	Reconnect(ctx context.Context, old Session) (Session, error)
}

// Sampler produces one set of readings per cycle. It never fails.
type Sampler interface {
	Sample(ctx context.Context) monitor.Readings
}

// connectorStorage adapts *storage.Connector to Storage.
type connectorStorage struct {
	c *storage.Connector
}

// FromConnector exposes c as a Storage.
func FromConnector(c *storage.Connector) Storage {
	return connectorStorage{c: c}
}

func (s connectorStorage) Connect(ctx context.Context) (Session, error) {
	conn, err := s.c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (s connectorStorage) Reconnect(ctx context.Context, old Session) (Session, error) {
	oldConn, _ := old.(*storage.Conn)
	conn, err := s.c.Reconnect(ctx, oldConn)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
