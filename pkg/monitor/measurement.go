package monitor

import (
	"math"
	"time"
)

// TimestampLayout is the storage representation of Measurement.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// Measurement is one sample of a component's health. It is built once per cycle
// and never retained after it has been handed to storage.
type Measurement struct {
	Timestamp        time.Time
	ComponentID      string
	ProcessorLoad    float64 // percent, 0-100
	UsedDiskSpaceGB  float64
	TotalDiskSpaceGB float64
	Uptime           string // opaque, e.g. "up 3 days, 4 hours"
}

// NewMeasurement stamps readings with a second-precision timestamp.
func NewMeasurement(now time.Time, componentID string, r Readings) Measurement {
	return Measurement{
		Timestamp:        now.Truncate(time.Second),
		ComponentID:      componentID,
		ProcessorLoad:    r.ProcessorLoad,
		UsedDiskSpaceGB:  r.UsedDiskSpaceGB,
		TotalDiskSpaceGB: r.TotalDiskSpaceGB,
		Uptime:           r.Uptime,
	}
}

// FormattedTimestamp renders the timestamp as YYYY-MM-DD HH:MM:SS.
func (m Measurement) FormattedTimestamp() string {
	return m.Timestamp.Format(TimestampLayout)
}

// Readings are the raw sensor values of one cycle.
type Readings struct {
	ProcessorLoad    float64
	UsedDiskSpaceGB  float64
	TotalDiskSpaceGB float64
	Uptime           string
}

// SentinelReadings has every field unavailable.
func SentinelReadings() Readings {
	return Readings{
		ProcessorLoad:    math.NaN(),
		UsedDiskSpaceGB:  math.NaN(),
		TotalDiskSpaceGB: math.NaN(),
		Uptime:           "",
	}
}

// IsSentinel reports whether v is the numeric "unavailable" value.
func IsSentinel(v float64) bool { return math.IsNaN(v) }
