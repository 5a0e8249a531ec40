package sensor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
)

// DefaultCPUWindow is how long CPUProbe measures utilisation.
const DefaultCPUWindow = 500 * time.Millisecond

// CPUProbe reports overall processor utilisation in percent over a short window.
type CPUProbe struct {
	Window time.Duration
}

func (c *CPUProbe) Name() string { return NameCPULoad }

func (c *CPUProbe) ReadFloat(ctx context.Context) (float64, error) {
	window := c.Window
	if window <= 0 {
		window = DefaultCPUWindow
	}
	usage, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return 0, fmt.Errorf("%w: cpu percent: %w", ErrSensor, err)
	}
	if len(usage) == 0 {
		return 0, fmt.Errorf("%w: cpu percent returned no samples", ErrSensor)
	}
	return clampPercent(usage[0]), nil
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// NativeDiskProbe sums physical partitions through statfs, like the df total row.
type NativeDiskProbe struct {
	partitions func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	usage      func(ctx context.Context, path string) (*disk.UsageStat, error)
}

func NewNativeDiskProbe() *NativeDiskProbe {
	return &NativeDiskProbe{
		partitions: disk.PartitionsWithContext,
		usage:      disk.UsageWithContext,
	}
}

func (n *NativeDiskProbe) Name() string { return NameDiskSpace }

// ReadDisk fails unless at least one partition could be measured.
func (n *NativeDiskProbe) ReadDisk(ctx context.Context) (DiskUsage, error) {
	partitions, err := n.partitions(ctx, false)
	if err != nil {
		return DiskUsage{}, fmt.Errorf("%w: list partitions: %w", ErrSensor, err)
	}
	seen := make(map[string]struct{}, len(partitions))
	var used, total uint64
	var measured int
	var lastErr error
	for _, p := range partitions {
		// bind mounts of the same device would be counted twice
		if _, ok := seen[p.Device]; ok {
			continue
		}
		usage, err := n.usage(ctx, p.Mountpoint)
		if err != nil {
			lastErr = err
			continue
		}
		seen[p.Device] = struct{}{}
		used += usage.Used
		total += usage.Total
		measured++
	}
	if measured == 0 {
		if lastErr != nil {
			return DiskUsage{}, fmt.Errorf("%w: no partition could be measured: %w", ErrSensor, lastErr)
		}
		return DiskUsage{}, fmt.Errorf("%w: no mounted partitions", ErrSensor)
	}
	return DiskUsage{
		UsedGB:  float64(used) / float64(humanize.GiByte),
		TotalGB: float64(total) / float64(humanize.GiByte),
	}, nil
}

// NativeUptimeProbe formats the kernel uptime the way `uptime -p` does.
type NativeUptimeProbe struct{}

func (NativeUptimeProbe) Name() string { return NameUptime }

func (NativeUptimeProbe) ReadString(ctx context.Context) (string, error) {
	secs, err := host.UptimeWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: uptime: %w", ErrSensor, err)
	}
	return FormatUptime(time.Duration(secs) * time.Second), nil
}

// FormatUptime renders d as "up 1 week, 3 days, 4 hours, 5 minutes".
func FormatUptime(d time.Duration) string {
	minutes := int64(d / time.Minute)
	units := []struct {
		name string
		size int64
	}{
		{"week", 7 * 24 * 60},
		{"day", 24 * 60},
		{"hour", 60},
		{"minute", 1},
	}
	var parts []string
	for _, u := range units {
		n := minutes / u.size
		minutes %= u.size
		if n == 0 {
			continue
		}
		label := u.name
		if n != 1 {
			label += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, label))
	}
	if len(parts) == 0 {
		return "up 0 minutes"
	}
	return "up " + strings.Join(parts, ", ")
}
