package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Asami3315/Emergency-Ringer/internal/config"
	"github.com/Asami3315/Emergency-Ringer/internal/service/server"
	"github.com/Asami3315/Emergency-Ringer/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// contactsFile overrides where trusted contacts are persisted.
	contactsFile string
	// logLevel overrides the configured log level.
	logLevel string
	// noDBus disables the session-bus notification feed.
	noDBus bool

	// rootCmd represents the base command for running the ringer daemon.
	rootCmd = &cobra.Command{
		Use:   "ringer-server [listen-address]",
		Short: "Run the emergency ringer daemon.",
		Long: `Starts the emergency ringer daemon.

The daemon watches desktop notifications on the session bus and recognises
incoming calls from trusted contacts. When one arrives it unmutes the audio
output, lifts do-not-disturb and plays a loud alert until it is stopped or
the auto-stop timer fires.

A gRPC control plane is served on the configured address for ringerctl.
Listen address can be provided as argument to override config (e.g., 127.0.0.1:9090).
Trusted contacts are persisted to a JSON file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return server.Run(ctx, &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				ContactsFile:  contactsFile,
				LogLevel:      logLevel,
				NoDBus:        noDBus,
			})
		},
	}
)

// Execute runs the ringer-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&contactsFile, "contacts-file", "f", "", "path to trusted contacts file (overrides config)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.Flags().BoolVar(&noDBus, "no-dbus", false, "do not watch session-bus notifications")
}
