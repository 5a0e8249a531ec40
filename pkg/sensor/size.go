package sensor

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseSize converts a human-readable df size ("42G", "512M", "1.5T") into gigabytes.
// df -h prints binary multiples with a bare suffix, so "42G" is 42 GiB and parses to 42.0.
func ParseSize(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty size", ErrSensor)
	}
	if strings.ContainsAny(s[len(s)-1:], "KMGTPEkmgtpe") {
		s += "i"
	}
	b, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w: parse size %q: %w", ErrSensor, s, err)
	}
	return float64(b) / float64(humanize.GiByte), nil
}
