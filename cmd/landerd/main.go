package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hyperlane-xyz/lander/cmd/landerd/daemon"
	"github.com/hyperlane-xyz/lander/dispatcher/config"
	"github.com/hyperlane-xyz/lander/version"
)

const BinaryName = "landerd"

// NewRootCmd creates a new root command for landerd. It is called once in the main function.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           BinaryName,
		Short:         fmt.Sprintf("%s - Payload submission daemon.", BinaryName),
		Long:          fmt.Sprintf(`%s drives payloads through building, inclusion and finality on a target chain.`, BinaryName),
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().String(daemon.HomeFlag, config.DefaultHomeDir, "The application home directory")

	return rootCmd
}

func main() {
	cmd := NewRootCmd()

	cmd.AddCommand(
		daemon.CommandInit(BinaryName),
		daemon.CommandStart(BinaryName),
		version.CommandVersion(BinaryName),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your landerd CLI '%s'", err)
		os.Exit(1) //nolint:gocritic
	}
}
