package sensor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Runner executes a local command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec with a C locale.
type ExecRunner struct {
	Timeout time.Duration
}

// Run fails on a non-zero exit, including stderr in the error.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s exited with %d: %s", name, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	return out, nil
}

// UptimeCommand reads `uptime -p` and passes its phrase through unmodified.
type UptimeCommand struct {
	runner Runner
}

func NewUptimeCommand(runner Runner) *UptimeCommand {
	return &UptimeCommand{runner: runner}
}

func (u *UptimeCommand) Name() string { return NameUptime }

func (u *UptimeCommand) ReadString(ctx context.Context) (string, error) {
	out, err := u.runner.Run(ctx, "uptime", "-p")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSensor, err)
	}
	phrase := strings.TrimSpace(string(out))
	if phrase == "" {
		return "", fmt.Errorf("%w: uptime printed nothing", ErrSensor)
	}
	return phrase, nil
}

// diskColumn selects a column of the df "total" row.
type diskColumn int

const (
	columnSize diskColumn = 1
	columnUsed diskColumn = 2
)

// DiskCommand reads the aggregate row of `df -h --total`, once per call.
type DiskCommand struct {
	runner Runner
}

func NewDiskCommand(runner Runner) *DiskCommand {
	return &DiskCommand{runner: runner}
}

func (d *DiskCommand) Name() string { return NameDiskSpace }

func (d *DiskCommand) ReadDisk(ctx context.Context) (DiskUsage, error) {
	out, err := d.runner.Run(ctx, "df", "-h", "--total")
	if err != nil {
		return DiskUsage{}, fmt.Errorf("%w: %w", ErrSensor, err)
	}
	report := string(out)

	sizeField, err := totalRowField(report, columnSize)
	if err != nil {
		return DiskUsage{}, err
	}
	usedField, err := totalRowField(report, columnUsed)
	if err != nil {
		return DiskUsage{}, err
	}
	total, err := ParseSize(sizeField)
	if err != nil {
		return DiskUsage{}, err
	}
	used, err := ParseSize(usedField)
	if err != nil {
		return DiskUsage{}, err
	}
	return DiskUsage{UsedGB: used, TotalGB: total}, nil
}

// totalRowField finds the "total" row of a df report and returns one of its columns.
func totalRowField(report string, column diskColumn) (string, error) {
	for _, line := range strings.Split(report, "\n") {
		fields := strings.Fields(line)
		if len(fields) > int(column) && fields[0] == "total" {
			return fields[column], nil
		}
	}
	return "", fmt.Errorf("%w: no total row in df output", ErrSensor)
}
