package agent

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/nmd-agent/cmd/server"
	"github.com/nmd-agent/pkg/config"
	"github.com/nmd-agent/pkg/logger"
	"github.com/nmd-agent/pkg/metrics"
	"github.com/nmd-agent/pkg/sampler"
	"github.com/nmd-agent/pkg/sensor"
	"github.com/nmd-agent/pkg/signal"
	"github.com/nmd-agent/pkg/storage"
	"github.com/nmd-agent/pkg/util"
)

const enableProcessMetrics = true

// runDaemon wires the configuration into the sampling loop and blocks until a
// shutdown signal arrives.
func runDaemon(ctx context.Context, cfg *config.Config) error {
	// 1. logger
	if err := logger.Init(cfg.Log); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// 2. banner
	util.PrintBanner(os.Stdout, "nmd", "ColorBlue", server.Version)

	logger.SetDefaultComponent(cfg.NMD.ComponentID)
	logger.Info("log initialization successful",
		zap.String("path", cfg.Log.Path),
		zap.String("level", cfg.Log.Level),
		zap.String("format", cfg.Log.Format))
	logger.Debug("configuration loaded",
		zap.String("config", cfgFile),
		zap.String("source", cfg.NMD.Source),
		zap.Duration("interval", cfg.NMD.SampleInterval()),
		zap.String("storage", storage.Target(cfg.DB)))

	registry, factory := metrics.InitPromRegistry(enableProcessMetrics)

	// 3. sensors
	probes, err := sensor.NewProbes(cfg.NMD.Source, nil)
	if err != nil {
		return err
	}
	sensors, err := sensor.NewSet(cfg.NMD.Sensors, probes, factory.SensorMetrics(), logger.Named("sensor"))
	if err != nil {
		return err
	}

	// 4. storage and sampling loop
	connector := storage.NewConnector(cfg.DB, nil, nil, factory.StorageMetrics(), logger.Named("storage"))
	loop := sampler.New(cfg.NMD, sampler.FromConnector(connector), sensors, nil, factory.LoopMetrics(), logger.Named("sampler"))

	ctx, stop := signal.NotifyShutdown(ctx, logger.GetLogger())
	defer stop()

	// 5. HTTP server, optional
	var httpServer *server.Server
	if cfg.Server.Enable {
		httpServer = server.NewHTTPServer(cfg.Server, cfg.NMD.ComponentID, logger.Named("http"), registry, loop.State)
		if err := httpServer.Start(); err != nil {
			return fmt.Errorf("start HTTP server: %w", err)
		}
	}

	runErr := loop.Run(ctx)

	if httpServer != nil {
		_ = signal.Graceful(logger.GetLogger(), server.DefaultShutdownTimeout, httpServer.Shutdown)
	}
	if runErr != nil {
		logger.Error("sampling loop failed", zap.Error(runErr))
		return runErr
	}
	logger.Info("nmd stopped")
	return nil
}
