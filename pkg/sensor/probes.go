package sensor

import (
	"fmt"
	"time"
)

// Probe families selectable with nmd.source.
const (
	SourceCommand = "command"
	SourceNative  = "native"
)

// DefaultCommandTimeout bounds each external command.
const DefaultCommandTimeout = 10 * time.Second

// NewProbes builds the probe family for source. CPU load is always read through
// gopsutil: there is no portable command that prints a single percentage.
func NewProbes(source string, runner Runner) (Probes, error) {
	cpuProbe := &CPUProbe{Window: DefaultCPUWindow}
	switch source {
	case SourceCommand:
		if runner == nil {
			runner = ExecRunner{Timeout: DefaultCommandTimeout}
		}
		return Probes{
			CPULoad: cpuProbe,
			Disk:    NewDiskCommand(runner),
			Uptime:  NewUptimeCommand(runner),
		}, nil
	case SourceNative:
		return Probes{
			CPULoad: cpuProbe,
			Disk:    NewNativeDiskProbe(),
			Uptime:  NativeUptimeProbe{},
		}, nil
	default:
		return Probes{}, fmt.Errorf("unknown sensor source %q", source)
	}
}
