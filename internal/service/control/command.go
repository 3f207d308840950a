package control

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/Asami3315/Emergency-Ringer/internal/alert"
	"github.com/Asami3315/Emergency-Ringer/internal/config"
	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
	"github.com/Asami3315/Emergency-Ringer/internal/logger"
	"github.com/Asami3315/Emergency-Ringer/internal/service/common"
)

// API is the subset of the daemon client used by ringerctl.
type API interface {
	PostNotification(ctx context.Context, event *domain.NotificationEvent) (domain.Verdict, error)
	Trigger(ctx context.Context, actor *domain.Actor, req alert.Request) (domain.AlertStatus, error)
	Stop(ctx context.Context, actor *domain.Actor) (domain.AlertStatus, error)
	Status(ctx context.Context) (*domain.Status, error)
	ListContacts(ctx context.Context) ([]domain.TrustedContact, bool, error)
	AddContact(ctx context.Context, actor *domain.Actor, contact domain.TrustedContact) (bool, error)
	RemoveContact(ctx context.Context, actor *domain.Actor, contact domain.TrustedContact) (bool, error)
	SetMonitoring(ctx context.Context, actor *domain.Actor, enabled bool) (bool, error)
}

// Session is a connected control channel.
type Session struct {
	// Client talks to the daemon.
	Client API
	// Actor is attached to every mutating request.
	Actor *domain.Actor
	// Out receives the human-readable results.
	Out io.Writer
}

// Command is one ringerctl operation.
type Command func(ctx context.Context, s *Session) error

// Options configures how ringerctl reaches the daemon.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string

	// Retry keeps repeating a failed command at this interval until it
	// succeeds or the context ends. Zero runs the command once.
	Retry time.Duration

	// Out receives command output, stdout when nil.
	Out io.Writer
}

// Run connects to the daemon and executes the command.
func Run(ctx context.Context, opts *Options, cmd Command) error {
	ctx = logger.WithName(ctx, "ringerctl")

	// A missing config file is fine here, ringerctl only needs the address.
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	logger.DebugKV(ctx, "Connected to ringer server", "server_address", serverAddress, "actor", actor.String())

	return Execute(ctx, &Session{Client: client, Actor: actor, Out: out}, cmd, opts.Retry)
}

// Execute runs the command on an existing session, retrying on failure when
// retry is positive.
func Execute(ctx context.Context, s *Session, cmd Command, retry time.Duration) error {
	err := cmd(ctx, s)
	if err == nil || retry <= 0 || errors.Is(err, errUsage) {
		return err
	}

	ticker := time.NewTicker(retry)
	defer ticker.Stop()

	for {
		// Log error but continue retrying for transient failures.
		logger.ErrorKV(ctx, "Command failed, retrying", "error", err, "retry_in", retry)

		select {
		case <-ctx.Done():
			return errors.Join(ctx.Err(), err)
		case <-ticker.C:
		}

		err = cmd(ctx, s)
		if err == nil || errors.Is(err, errUsage) {
			return err
		}
	}
}
