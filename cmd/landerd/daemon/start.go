package daemon

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperlane-xyz/lander/adapter/sim"
	"github.com/hyperlane-xyz/lander/dispatcher/config"
	"github.com/hyperlane-xyz/lander/dispatcher/service"
	"github.com/hyperlane-xyz/lander/log"
	"github.com/hyperlane-xyz/lander/metrics"
	"github.com/hyperlane-xyz/lander/util"
)

// CommandStart returns the start command of landerd.
//
// The daemon runs the pipeline against the simulated chain adapter, which is
// useful for smoke-testing a deployment; production embedders construct a
// Dispatcher directly with their chain's adapter.
func CommandStart(binaryName string) *cobra.Command {
	var cmd = &cobra.Command{
		Use:     "start",
		Short:   "Start the payload dispatcher daemon.",
		Long:    `Start the payload dispatcher with the simulated chain adapter. Run init beforehand`,
		Example: fmt.Sprintf(`%s start --home /home/user/.landerd`, binaryName),
		Args:    cobra.NoArgs,
		RunE:    runStartCmd,
	}
	cmd.Flags().Duration(SimBlockTimeFlag, 2*time.Second, "The block cadence of the simulated chain")

	return cmd
}

func runStartCmd(cmd *cobra.Command, _ []string) error {
	home, err := cmd.Flags().GetString(HomeFlag)
	if err != nil {
		return fmt.Errorf("failed to read flag %s: %w", HomeFlag, err)
	}
	homePath, err := filepath.Abs(home)
	if err != nil {
		return fmt.Errorf("failed to get home path: %w", err)
	}
	homePath = util.CleanAndExpandPath(homePath)

	cfg, err := config.LoadConfig(homePath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	blockTime, err := cmd.Flags().GetDuration(SimBlockTimeFlag)
	if err != nil {
		return fmt.Errorf("failed to read flag %s: %w", SimBlockTimeFlag, err)
	}

	logger, err := log.NewRootLoggerWithFile(config.LogFile(homePath), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize the logger: %w", err)
	}

	dbBackend, err := cfg.DatabaseConfig.GetDBBackend()
	if err != nil {
		return fmt.Errorf("failed to create db backend: %w", err)
	}
	defer func() {
		_ = dbBackend.Close()
	}()

	metricsAddr, err := cfg.Metrics.Address()
	if err != nil {
		return fmt.Errorf("invalid metrics address: %w", err)
	}

	dispatcherMetrics := metrics.NewDispatcherMetrics()
	metricsServer := metrics.Start(logger, metricsAddr, dispatcherMetrics.Registry())

	chainAdapter := sim.New(blockTime, cfg.BatchSize)

	dispatcher, err := service.NewDispatcher(cfg, logger, dbBackend, chainAdapter, dispatcherMetrics)
	if err != nil {
		return fmt.Errorf("failed to create the dispatcher: %w", err)
	}

	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start the dispatcher: %w", err)
	}

	<-cmd.Context().Done()

	if err := dispatcher.Stop(); err != nil {
		return fmt.Errorf("failed to stop the dispatcher: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return metricsServer.Stop(shutdownCtx)
}
