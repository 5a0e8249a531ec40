package agent

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nmd-agent/pkg/config"
)

var cfgFile string

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "nmd",
		Short:         "Node monitoring daemon: samples CPU load, disk space and uptime into a central database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfigWithCli(cmd)
			if err != nil {
				// config errors exit here instead of going through cobra
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				fmt.Fprintf(os.Stderr, "check the config file or pass one with -c\n")
				os.Exit(1)
			}
			return runDaemon(cmd.Context(), cfg)
		},
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultConfigFile, "-> Config file path | 配置文件路径")
	initMonitorFlags(cmd)
	initServerFlags(cmd)
	initLogFlags(cmd)
	return cmd
}

// Execute runs the root command; any runtime error exits with status 1.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "nmd: %v\n", err)
		os.Exit(1)
	}
}
