package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/Asami3315/Emergency-Ringer/internal/alert"
	api "github.com/Asami3315/Emergency-Ringer/internal/api/grpc/ringer"
	"github.com/Asami3315/Emergency-Ringer/internal/classifier"
	"github.com/Asami3315/Emergency-Ringer/internal/config"
	"github.com/Asami3315/Emergency-Ringer/internal/device"
	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
	dbusfeed "github.com/Asami3315/Emergency-Ringer/internal/feed/dbus"
	"github.com/Asami3315/Emergency-Ringer/internal/logger"
	"github.com/Asami3315/Emergency-Ringer/internal/platform/desktop"
	"github.com/Asami3315/Emergency-Ringer/internal/repository/contacts"
	"github.com/Asami3315/Emergency-Ringer/internal/version"
)

// Options controls the ringer-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// ContactsFile overrides the trusted-contacts file from the settings.
	ContactsFile string
	// LogLevel overrides the log level from the settings.
	LogLevel string
	// NoDBus disables the session-bus notification feed.
	NoDBus bool
}

var (
	// ErrNoServerAddress indicates missing server configuration.
	ErrNoServerAddress = errors.New("no server address configured")
	// errBadLogLevel is returned for an unknown log level override.
	errBadLogLevel = errors.New("unknown log level")
)

// Run starts the daemon and blocks until the context is canceled or the
// gRPC server stops.
func Run(ctx context.Context, opts *Options) error {
	settings, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// The named logger is derived after the debug file is attached.
	closeLog, err := setupLogging(settings, opts.LogLevel)
	if err != nil {
		return err
	}

	ctx = logger.WithName(ctx, "ringer-server")

	defer func() {
		if closeErr := closeLog(); closeErr != nil {
			logger.Warnf(ctx, "Failed to close debug log: %v", closeErr)
		}
	}()

	contactsFile := settings.ContactsFile
	if opts.ContactsFile != "" {
		contactsFile = opts.ContactsFile
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	host := desktop.NewHost(ctx, &settings.Desktop)
	if err = host.Available(); err != nil {
		logger.Warnf(ctx, "Audio control unavailable, alerts may stay silent: %v", err)
	}

	var feeds []Feed
	if settings.Desktop.DBusFeed && !opts.NoDBus {
		feeds = append(feeds, dbusfeed.NewMonitor())
	}

	deps := &dependencies{
		contacts:   contacts.NewFileRepository(contactsFile),
		classifier: classifier.New(settings.MonitoredSources),
		override:   host.Override(device.WithSettleDelay(settings.Desktop.SettleDelay)),
		alerts:     alert.NewActuator(newSettingsFile(opts.ConfigPath, settings), host.Devices, nil),
		feeds:      feeds,
		trace:      notificationTrace(settings),
	}

	if host.Banner != nil {
		deps.banner = host.Banner
	}

	svc := newService(deps)

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	return serve(ctx, svc, lis, grpc.NewServer())
}

// serve runs the pipeline, the feeds and the gRPC server until ctx ends.
func serve(ctx context.Context, svc *service, lis net.Listener, grpcServer *grpc.Server) error {
	api.RegisterRingerServiceServer(grpcServer, api.NewServer(svc))

	var wg sync.WaitGroup

	wg.Go(func() {
		svc.runPipeline(ctx)
	})

	for _, feed := range svc.feeds {
		wg.Go(func() {
			if err := feed.Run(ctx, svc.feedHandler(feed.Name())); err != nil {
				logger.Errorf(ctx, "Feed %s stopped: %v", feed.Name(), err)
			}
		})
	}

	logger.InfoKV(
		ctx,
		"Ringer server listening",
		"listen_address", lis.Addr().String(),
		"feeds", len(svc.feeds),
		"version", version.Short(),
	)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	wg.Wait()
	logger.Info(ctx, "Ringer server stopped")

	return nil
}

// feedHandler tags feed notifications with the feed name.
func (s *service) feedHandler(name string) dbusfeed.Handler {
	return func(ctx context.Context, event *domain.NotificationEvent) {
		s.HandleNotification(logger.WithKV(ctx, "feed", name), event)
	}
}

// setupLogging applies the log level and the optional debug file.
// The returned closer is never nil.
func setupLogging(settings *config.Config, override string) (func() error, error) {
	raw := settings.LogLevel
	if override != "" {
		raw = override
	}

	level, ok := logger.ParseLogLevel(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errBadLogLevel, raw)
	}

	logger.SetLevel(level)

	if settings.DebugLogFile == "" {
		return func() error { return nil }, nil
	}

	l, closeFile, err := logger.NewWithDebugFile(logger.AtomicLevel(), settings.DebugLogFile)
	if err != nil {
		return nil, err
	}

	logger.SetLogger(l)

	return closeFile, nil
}

// notificationTrace returns the logger for notification contents.
func notificationTrace(settings *config.Config) *zap.SugaredLogger {
	level, _ := logger.ParseLogLevel(settings.NotificationLogLevel)

	return logger.Logger().Named("notifications").WithOptions(logger.WithLevel(level))
}

// resolveListenAddress determines the listen address for the gRPC server.
// The override wins; otherwise the configured address is used as is so the
// loopback default stays private.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}
