package sampler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/nmd-agent/pkg/config"
	"github.com/nmd-agent/pkg/monitor"
	"github.com/nmd-agent/pkg/storage"
)

// Loop samples the sensors on a fixed interval and persists one measurement per
// cycle through a single storage session.
type Loop struct {
	componentID string
	interval    time.Duration
	storage     Storage
	sensors     Sampler
	clock       clockwork.Clock
	metrics     monitor.LoopMetrics
	log         *zap.Logger

	state atomic.Int32
}

// New builds a loop for cfg. A nil clock means the real clock.
func New(cfg config.MonitorConfig, store Storage, sensors Sampler, clock clockwork.Clock, metrics monitor.LoopMetrics, log *zap.Logger) *Loop {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	l := &Loop{
		componentID: cfg.ComponentID,
		interval:    cfg.SampleInterval(),
		storage:     store,
		sensors:     sensors,
		clock:       clock,
		metrics:     metrics,
		log:         log,
	}
	l.setState(StateConnecting)
	return l
}

// State is safe to call from any goroutine.
func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) setState(s State) {
	prev := State(l.state.Swap(int32(s)))
	for _, st := range States() {
		v := 0.0
		if st == s {
			v = 1
		}
		l.metrics.State.WithLabelValues(st.String()).Set(v)
	}
	if prev != s {
		l.log.Debug("loop state", zap.Stringer("from", prev), zap.Stringer("to", s))
	}
}

// Run drives connecting -> sampling -> persisting until ctx is cancelled. Runtime
// faults never end the loop; the returned error is non-nil only for failures that
// are not caused by shutdown.
func (l *Loop) Run(ctx context.Context) error {
	defer l.setState(StateStopped)

	l.setState(StateConnecting)
	session, err := l.storage.Connect(ctx)
	if err != nil {
		return shutdownErr(ctx, err)
	}
	defer func() {
		if session == nil {
			return
		}
		if err := session.Close(); err != nil {
			l.log.Debug("closing storage session", zap.Error(err))
		}
	}()

	l.log.Info("sampling started",
		zap.String("component_id", l.componentID),
		zap.Duration("interval", l.interval))

	for {
		// stop is checked before each cycle; an in-flight write is never interrupted
		if ctx.Err() != nil {
			l.log.Info("sampling stopped", zap.Error(ctx.Err()))
			return nil
		}

		l.setState(StateSampling)
		readings := l.sensors.Sample(ctx)
		m := monitor.NewMeasurement(l.clock.Now(), l.componentID, readings)

		l.setState(StatePersisting)
		if err := l.persist(ctx, session, m); err != nil {
			l.setState(StateConnecting)
			session, err = l.storage.Reconnect(ctx, session)
			if err != nil {
				session = nil
				return shutdownErr(ctx, err)
			}
			// next cycle starts fresh; the failed measurement is not resent
			continue
		}

		select {
		case <-ctx.Done():
			l.log.Info("sampling stopped", zap.Error(ctx.Err()))
			return nil
		case <-l.clock.After(l.interval):
		}
	}
}

// persist runs execute and commit as one unit. It uses a context detached from
// cancellation so a shutdown signal cannot split them.
func (l *Loop) persist(ctx context.Context, session Session, m monitor.Measurement) error {
	writeCtx := context.WithoutCancel(ctx)

	if err := session.Execute(writeCtx, m); err != nil {
		l.metrics.PersistFailures.WithLabelValues("execute").Inc()
		l.log.Error("could not write measurement, reconnecting",
			zap.String("timestamp", m.FormattedTimestamp()),
			zap.Error(err))
		return err
	}
	if err := session.Commit(); err != nil {
		l.metrics.PersistFailures.WithLabelValues("commit").Inc()
		l.log.Error("could not commit measurement, reconnecting",
			zap.String("timestamp", m.FormattedTimestamp()),
			zap.Error(err))
		return err
	}

	l.metrics.Persisted.Inc()
	l.metrics.LastPersist.Set(float64(m.Timestamp.Unix()))
	l.log.Info("measurement persisted",
		zap.String("timestamp", m.FormattedTimestamp()),
		zap.Float64("processor_load", m.ProcessorLoad),
		zap.Float64("used_disk_space_gb", m.UsedDiskSpaceGB),
		zap.Float64("total_disk_space_gb", m.TotalDiskSpaceGB),
		zap.String("uptime", m.Uptime))
	return nil
}

func shutdownErr(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(err, storage.ErrConnect) {
		return nil
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}
