package sensor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "up 0 minutes"},
		{time.Minute, "up 1 minute"},
		{3*24*time.Hour + 4*time.Hour, "up 3 days, 4 hours"},
		{8*24*time.Hour + time.Hour + 5*time.Minute, "up 1 week, 1 day, 1 hour, 5 minutes"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatUptime(tc.in))
	}
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0.0, clampPercent(-3))
	assert.Equal(t, 55.5, clampPercent(55.5))
	assert.Equal(t, 100.0, clampPercent(100.4))
}

func TestNewProbes(t *testing.T) {
	runner := &fakeRunner{}
	p, err := NewProbes(SourceCommand, runner)
	require.NoError(t, err)
	assert.IsType(t, &DiskCommand{}, p.Disk)
	assert.IsType(t, &UptimeCommand{}, p.Uptime)
	assert.Equal(t, NameDiskSpace, p.Disk.Name())

	p, err = NewProbes(SourceNative, nil)
	require.NoError(t, err)
	assert.IsType(t, &NativeDiskProbe{}, p.Disk)
	assert.Equal(t, NameCPULoad, p.CPULoad.Name())

	_, err = NewProbes("wmi", nil)
	assert.Error(t, err)
}

func fakeDiskProbe(partitions []disk.PartitionStat, usage map[string]*disk.UsageStat) *NativeDiskProbe {
	return &NativeDiskProbe{
		partitions: func(context.Context, bool) ([]disk.PartitionStat, error) { return partitions, nil },
		usage: func(_ context.Context, path string) (*disk.UsageStat, error) {
			if u, ok := usage[path]; ok {
				return u, nil
			}
			return nil, errors.New("statfs " + path + ": permission denied")
		},
	}
}

const gib = 1 << 30

func TestNativeDiskSumsDistinctDevices(t *testing.T) {
	probe := fakeDiskProbe(
		[]disk.PartitionStat{
			{Device: "/dev/sda1", Mountpoint: "/"},
			{Device: "/dev/sda1", Mountpoint: "/var/lib/docker"},
			{Device: "/dev/sdb1", Mountpoint: "/data"},
			{Device: "/dev/sdc1", Mountpoint: "/broken"},
		},
		map[string]*disk.UsageStat{
			"/":               {Used: 40 * gib, Total: 98 * gib},
			"/var/lib/docker": {Used: 40 * gib, Total: 98 * gib},
			"/data":           {Used: 2 * gib, Total: 6 * gib},
		},
	)

	u, err := probe.ReadDisk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DiskUsage{UsedGB: 42, TotalGB: 104}, u)
}

func TestNativeDiskFailsWhenNothingMeasured(t *testing.T) {
	probe := fakeDiskProbe(
		[]disk.PartitionStat{{Device: "/dev/sda1", Mountpoint: "/"}, {Device: "/dev/sdb1", Mountpoint: "/data"}},
		nil,
	)
	_, err := probe.ReadDisk(context.Background())
	assert.ErrorIs(t, err, ErrSensor)
	assert.Contains(t, err.Error(), "permission denied")

	_, err = fakeDiskProbe(nil, nil).ReadDisk(context.Background())
	assert.ErrorIs(t, err, ErrSensor)
}
