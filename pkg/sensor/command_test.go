package sensor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/nmd-agent/pkg/config"
	"github.com/nmd-agent/pkg/monitor"
)

type fakeRunner struct {
	outputs map[string]string
	err     error
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, name string, _ ...string) ([]byte, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.outputs[name]), nil
}

const dfReport = `Filesystem      Size  Used Avail Use% Mounted on
udev            3.9G     0  3.9G   0% /dev
/dev/sda1        98G   40G   53G  43% /
/dev/sdb1       2.0G  2.0G     0 100% /data
total           104G   42G   57G  43% -
`

func TestDiskCommandParsesTotalRow(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"df": dfReport}}

	u, err := NewDiskCommand(runner).ReadDisk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DiskUsage{UsedGB: 42, TotalGB: 104}, u)
}

func TestSampleRunsDiskCommandOnce(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"df": dfReport}}
	set, _, _ := newTestSet(t, config.SensorToggles{DiskSpace: true}, Probes{Disk: NewDiskCommand(runner)})

	r := set.Sample(context.Background())
	assert.Equal(t, 42.0, r.UsedDiskSpaceGB)
	assert.Equal(t, 104.0, r.TotalDiskSpaceGB)
	assert.Equal(t, []string{"df"}, runner.calls)
}

func TestDiskCommandMalformedOutputYieldsSentinel(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"df":     "Filesystem Size Used Avail Use% Mounted on\ntotal N/A N/A N/A - -\n",
		"uptime": "up 5 minutes\n",
	}}
	probes := Probes{
		Disk:   NewDiskCommand(runner),
		Uptime: NewUptimeCommand(runner),
	}

	set, _, logs := newTestSet(t, config.SensorToggles{DiskSpace: true, Uptime: true}, probes)
	r := set.Sample(context.Background())

	assert.True(t, monitor.IsSentinel(r.UsedDiskSpaceGB))
	assert.True(t, monitor.IsSentinel(r.TotalDiskSpaceGB))
	assert.Equal(t, "up 5 minutes", r.Uptime)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestDiskCommandWithoutTotalRow(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"df": "Filesystem Size Used\n/dev/sda1 98G 40G\n"}}
	_, err := NewDiskCommand(runner).ReadDisk(context.Background())
	assert.ErrorIs(t, err, ErrSensor)
}

func TestCommandFailureIsSensorError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("df exited with 1")}

	_, err := NewDiskCommand(runner).ReadDisk(context.Background())
	assert.ErrorIs(t, err, ErrSensor)

	_, err = NewUptimeCommand(runner).ReadString(context.Background())
	assert.ErrorIs(t, err, ErrSensor)
}

func TestUptimeCommandPassesPhraseThrough(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"uptime": "  up 1 week, 2 days, 3 hours\n"}}
	got, err := NewUptimeCommand(runner).ReadString(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "up 1 week, 2 days, 3 hours", got)

	runner.outputs["uptime"] = "\n"
	_, err = NewUptimeCommand(runner).ReadString(context.Background())
	assert.ErrorIs(t, err, ErrSensor)
}

func TestExecRunner(t *testing.T) {
	out, err := ExecRunner{}.Run(context.Background(), "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))

	_, err = ExecRunner{}.Run(context.Background(), "sh", "-c", "echo nope >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited with 3")
	assert.Contains(t, err.Error(), "nope")
}
