package sensor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/nmd-agent/pkg/config"
	"github.com/nmd-agent/pkg/monitor"
)

// Sensor names, used as log fields and metric labels.
const (
	NameCPULoad   = "cpu_load"
	NameDiskSpace = "disk_space"
	NameUptime    = "uptime"
)

// ErrSensor marks a probe that could not produce a value.
var ErrSensor = errors.New("sensor unavailable")

// FloatProbe produces one numeric reading on demand.
type FloatProbe interface {
	Name() string
	ReadFloat(ctx context.Context) (float64, error)
}

// StringProbe produces one textual reading on demand.
type StringProbe interface {
	Name() string
	ReadString(ctx context.Context) (string, error)
}

// DiskUsage is the space of all mounted filesystems, in GB.
type DiskUsage struct {
	UsedGB  float64
	TotalGB float64
}

// DiskProbe reads used and total space from one snapshot.
type DiskProbe interface {
	Name() string
	ReadDisk(ctx context.Context) (DiskUsage, error)
}

// Probes is the fixed collection the Set samples. Probes of disabled families may be nil.
type Probes struct {
	CPULoad FloatProbe
	Disk    DiskProbe
	Uptime  StringProbe
}

// Set samples every enabled probe, isolating failures per field.
type Set struct {
	probes  Probes
	toggles config.SensorToggles
	metrics monitor.SensorMetrics
	log     *zap.Logger
}

// NewSet validates that every enabled family has a probe.
func NewSet(toggles config.SensorToggles, probes Probes, metrics monitor.SensorMetrics, log *zap.Logger) (*Set, error) {
	if toggles.CPULoad && probes.CPULoad == nil {
		return nil, errors.New("cpu-load enabled without a probe")
	}
	if toggles.DiskSpace && probes.Disk == nil {
		return nil, errors.New("disk-space enabled without a probe")
	}
	if toggles.Uptime && probes.Uptime == nil {
		return nil, errors.New("uptime enabled without a probe")
	}
	return &Set{
		probes:  probes,
		toggles: toggles,
		metrics: metrics,
		log:     log,
	}, nil
}

// Sample reads every enabled probe once. It never fails: an unavailable or
// disabled field carries the sentinel (NaN, or "" for uptime).
func (s *Set) Sample(ctx context.Context) monitor.Readings {
	r := monitor.SentinelReadings()
	if s.toggles.CPULoad {
		r.ProcessorLoad = s.readFloat(ctx, s.probes.CPULoad)
	}
	if s.toggles.DiskSpace {
		if u, ok := s.readDisk(ctx, s.probes.Disk); ok {
			r.UsedDiskSpaceGB = u.UsedGB
			r.TotalDiskSpaceGB = u.TotalGB
		}
	}
	if s.toggles.Uptime {
		r.Uptime = s.readString(ctx, s.probes.Uptime)
	}
	return r
}

func (s *Set) readFloat(ctx context.Context, p FloatProbe) float64 {
	start := time.Now()
	v, err := safeReadFloat(ctx, p)
	s.metrics.Duration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		s.fail(p.Name(), err)
		return math.NaN()
	}
	s.log.Debug("sensor read", zap.String("sensor", p.Name()), zap.Float64("value", v))
	return v
}

func (s *Set) readDisk(ctx context.Context, p DiskProbe) (DiskUsage, bool) {
	start := time.Now()
	u, err := safeReadDisk(ctx, p)
	s.metrics.Duration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		s.fail(p.Name(), err)
		return DiskUsage{}, false
	}
	s.log.Debug("sensor read", zap.String("sensor", p.Name()),
		zap.Float64("used_gb", u.UsedGB), zap.Float64("total_gb", u.TotalGB))
	return u, true
}

func (s *Set) readString(ctx context.Context, p StringProbe) string {
	start := time.Now()
	v, err := safeReadString(ctx, p)
	s.metrics.Duration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		s.fail(p.Name(), err)
		return ""
	}
	s.log.Debug("sensor read", zap.String("sensor", p.Name()), zap.String("value", v))
	return v
}

func (s *Set) fail(name string, err error) {
	s.metrics.Errors.WithLabelValues(name).Inc()
	s.log.Warn("sensor failed, using sentinel", zap.String("sensor", name), zap.Error(err))
}

func safeReadFloat(ctx context.Context, p FloatProbe) (v float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s panicked: %v", ErrSensor, p.Name(), r)
		}
	}()
	return p.ReadFloat(ctx)
}

func safeReadString(ctx context.Context, p StringProbe) (v string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s panicked: %v", ErrSensor, p.Name(), r)
		}
	}()
	return p.ReadString(ctx)
}

func safeReadDisk(ctx context.Context, p DiskProbe) (u DiskUsage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s panicked: %v", ErrSensor, p.Name(), r)
		}
	}()
	return p.ReadDisk(ctx)
}
