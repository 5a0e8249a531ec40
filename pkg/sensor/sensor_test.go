package sensor

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nmd-agent/pkg/config"
	"github.com/nmd-agent/pkg/metrics"
	"github.com/nmd-agent/pkg/monitor"
)

type fakeFloat struct {
	name  string
	value float64
	err   error
	panic bool
	calls int
}

func (f *fakeFloat) Name() string { return f.name }

func (f *fakeFloat) ReadFloat(context.Context) (float64, error) {
	f.calls++
	if f.panic {
		panic("probe exploded")
	}
	return f.value, f.err
}

type fakeDisk struct {
	usage DiskUsage
	err   error
	panic bool
	calls int
}

func (f *fakeDisk) Name() string { return NameDiskSpace }

func (f *fakeDisk) ReadDisk(context.Context) (DiskUsage, error) {
	f.calls++
	if f.panic {
		panic("probe exploded")
	}
	return f.usage, f.err
}

type fakeString struct {
	value string
	err   error
	calls int
}

func (f *fakeString) Name() string { return NameUptime }

func (f *fakeString) ReadString(context.Context) (string, error) {
	f.calls++
	return f.value, f.err
}

var allEnabled = config.SensorToggles{CPULoad: true, DiskSpace: true, Uptime: true}

func newTestSet(t *testing.T, toggles config.SensorToggles, probes Probes) (*Set, monitor.SensorMetrics, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	factory, _ := metrics.NewTestFactory()
	m := factory.SensorMetrics()
	set, err := NewSet(toggles, probes, m, zap.New(core))
	require.NoError(t, err)
	return set, m, logs
}

func TestSampleIsolatesFailingSensor(t *testing.T) {
	cpuProbe := &fakeFloat{name: NameCPULoad, err: errors.New("boom")}
	diskProbe := &fakeDisk{usage: DiskUsage{UsedGB: 42, TotalGB: 120}}
	uptime := &fakeString{value: "up 3 days, 4 hours"}

	set, m, logs := newTestSet(t, allEnabled, Probes{CPULoad: cpuProbe, Disk: diskProbe, Uptime: uptime})
	r := set.Sample(context.Background())

	assert.True(t, monitor.IsSentinel(r.ProcessorLoad))
	assert.Equal(t, 42.0, r.UsedDiskSpaceGB)
	assert.Equal(t, 120.0, r.TotalDiskSpaceGB)
	assert.Equal(t, "up 3 days, 4 hours", r.Uptime)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel)
	require.Equal(t, 1, warnings.Len())
	assert.Equal(t, NameCPULoad, warnings.All()[0].ContextMap()["sensor"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues(NameCPULoad)))
}

func TestSampleRecoversPanickingSensor(t *testing.T) {
	cpuProbe := &fakeFloat{name: NameCPULoad, value: 7.5}
	diskProbe := &fakeDisk{panic: true}
	uptime := &fakeString{err: errors.New("uptime: not found")}

	set, m, logs := newTestSet(t, allEnabled, Probes{CPULoad: cpuProbe, Disk: diskProbe, Uptime: uptime})
	r := set.Sample(context.Background())

	assert.Equal(t, 7.5, r.ProcessorLoad)
	assert.True(t, monitor.IsSentinel(r.UsedDiskSpaceGB))
	assert.True(t, monitor.IsSentinel(r.TotalDiskSpaceGB))
	assert.Empty(t, r.Uptime)
	assert.Equal(t, 2, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues(NameDiskSpace)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues(NameUptime)))
}

func TestSampleSkipsDisabledFamilies(t *testing.T) {
	cpuProbe := &fakeFloat{name: NameCPULoad, value: 12.5}
	diskProbe := &fakeDisk{usage: DiskUsage{UsedGB: 42, TotalGB: 120}}

	set, _, logs := newTestSet(t, config.SensorToggles{CPULoad: true},
		Probes{CPULoad: cpuProbe, Disk: diskProbe})
	r := set.Sample(context.Background())

	assert.Equal(t, 12.5, r.ProcessorLoad)
	assert.True(t, monitor.IsSentinel(r.UsedDiskSpaceGB))
	assert.True(t, monitor.IsSentinel(r.TotalDiskSpaceGB))
	assert.Empty(t, r.Uptime)
	assert.Zero(t, diskProbe.calls)
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestNewSetRequiresProbesForEnabledFamilies(t *testing.T) {
	factory, _ := metrics.NewTestFactory()
	m := factory.SensorMetrics()

	_, err := NewSet(allEnabled, Probes{CPULoad: &fakeFloat{name: NameCPULoad}}, m, zap.NewNop())
	assert.Error(t, err)

	_, err = NewSet(config.SensorToggles{CPULoad: true}, Probes{CPULoad: &fakeFloat{name: NameCPULoad}}, m, zap.NewNop())
	assert.NoError(t, err)
}
