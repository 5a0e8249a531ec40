package agent

import (
	"github.com/spf13/cobra"
)

func initMonitorFlags(root *cobra.Command) {
	f := root.PersistentFlags()

	f.Int("nmd.interval", defaultCfg.NMD.Interval, "-> Seconds between samples | 采集间隔(秒)")
	f.String("nmd.source", defaultCfg.NMD.Source, "-> Sensor source [command,native] | 采集方式")
	f.Int("db.reconnect-interval", defaultCfg.DB.ReconnectInterval, "-> Seconds between connection attempts | 重连间隔(秒)")
}
