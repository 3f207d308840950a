package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Asami3315/Emergency-Ringer/internal/config"
	"github.com/Asami3315/Emergency-Ringer/internal/service/control"
	"github.com/Asami3315/Emergency-Ringer/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the daemon address from config.
	serverAddress string
	// retry repeats failed commands at this interval.
	retry time.Duration

	// rootCmd represents the base command for controlling the daemon.
	rootCmd = &cobra.Command{
		Use:   "ringerctl",
		Short: "Control the emergency ringer daemon.",
		Long: `Controls a running ringer-server over gRPC.

Manage trusted contacts, switch call monitoring, inspect the daemon status,
start or stop the alert by hand, and inject notifications for testing.
The server address is taken from the configuration file unless --server is given.`,
		SilenceUsage: true,
	}
)

// Execute runs the ringerctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	rootCmd.AddCommand(
		newTriggerCommand(),
		newStopCommand(),
		newStatusCommand(),
		newNotifyCommand(),
		newContactsCommand(),
		newMonitoringCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run executes one control command with signal-aware cancellation.
func run(cmd *cobra.Command, command control.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return control.Run(ctx, &control.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
		Retry:         retry,
		Out:           cmd.OutOrStdout(),
	}, command)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "", "daemon address (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&retry, "retry", 0, "retry failed commands at this interval until success")
}
