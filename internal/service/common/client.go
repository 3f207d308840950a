//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/Asami3315/Emergency-Ringer/internal/alert"
	api "github.com/Asami3315/Emergency-Ringer/internal/api/grpc/ringer"
	"github.com/Asami3315/Emergency-Ringer/internal/config"
	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
	"github.com/Asami3315/Emergency-Ringer/internal/version"
)

// Client wraps the RingerService stub with typed helpers.
type Client struct {
	// conn is the underlying gRPC connection to the ringer daemon.
	conn *grpc.ClientConn
	// api is the RingerService client stub.
	api *api.RingerServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errActorRequired is returned when an actor is not provided but is required for the operation.
	errActorRequired = errors.New("actor must be provided")
	// errEventRequired is returned when no notification is given.
	errEventRequired = errors.New("notification must be provided")
)

// Dial creates a client of the ringer daemon.
// Note: this uses insecure transport credentials; the daemon listens on
// loopback by default.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(
		address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUserAgent(version.UserAgent("ctl")),
	)
	if err != nil {
		return nil, fmt.Errorf("dial ringer server: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewRingerServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// PostNotification submits a notification for classification.
func (c *Client) PostNotification(ctx context.Context, event *domain.NotificationEvent) (domain.Verdict, error) {
	if event == nil {
		return domain.Verdict{}, errEventRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.PostNotification(callCtx, api.EventToStruct(event))
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("post notification: %w", err)
	}

	return api.VerdictFromStruct(resp)
}

// Trigger starts a manual alert.
func (c *Client) Trigger(ctx context.Context, actor *domain.Actor, req alert.Request) (domain.AlertStatus, error) {
	if actor == nil {
		return domain.AlertStatus{}, errActorRequired
	}

	callCtx, cancel := c.callContext(api.WithActor(ctx, actor))
	defer cancel()

	resp, err := c.api.Trigger(callCtx, api.TriggerRequestToStruct(req))
	if err != nil {
		return domain.AlertStatus{}, fmt.Errorf("trigger alert: %w", err)
	}

	return api.AlertStatusFromStruct(resp)
}

// Stop ends the running alert.
func (c *Client) Stop(ctx context.Context, actor *domain.Actor) (domain.AlertStatus, error) {
	if actor == nil {
		return domain.AlertStatus{}, errActorRequired
	}

	callCtx, cancel := c.callContext(api.WithActor(ctx, actor))
	defer cancel()

	resp, err := c.api.Stop(callCtx)
	if err != nil {
		return domain.AlertStatus{}, fmt.Errorf("stop alert: %w", err)
	}

	return api.AlertStatusFromStruct(resp)
}

// Status retrieves the daemon status.
func (c *Client) Status(ctx context.Context) (*domain.Status, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetStatus(callCtx)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return api.StatusFromStruct(resp)
}

// ListContacts retrieves the trusted contacts and the monitoring switch.
func (c *Client) ListContacts(ctx context.Context) ([]domain.TrustedContact, bool, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ListContacts(callCtx)
	if err != nil {
		return nil, false, fmt.Errorf("list contacts: %w", err)
	}

	return api.ContactsFromStruct(resp)
}

// AddContact stores a trusted contact and reports whether it was new.
func (c *Client) AddContact(ctx context.Context, actor *domain.Actor, contact domain.TrustedContact) (bool, error) {
	if actor == nil {
		return false, errActorRequired
	}

	callCtx, cancel := c.callContext(api.WithActor(ctx, actor))
	defer cancel()

	resp, err := c.api.AddContact(callCtx, api.ContactToStruct(contact))
	if err != nil {
		return false, fmt.Errorf("add contact: %w", err)
	}

	return api.ChangedFromStruct(resp)
}

// RemoveContact deletes a trusted contact and reports whether it existed.
func (c *Client) RemoveContact(ctx context.Context, actor *domain.Actor, contact domain.TrustedContact) (bool, error) {
	if actor == nil {
		return false, errActorRequired
	}

	callCtx, cancel := c.callContext(api.WithActor(ctx, actor))
	defer cancel()

	resp, err := c.api.RemoveContact(callCtx, api.ContactToStruct(contact))
	if err != nil {
		return false, fmt.Errorf("remove contact: %w", err)
	}

	return api.ChangedFromStruct(resp)
}

// SetMonitoring switches call monitoring and returns the stored value.
func (c *Client) SetMonitoring(ctx context.Context, actor *domain.Actor, enabled bool) (bool, error) {
	if actor == nil {
		return false, errActorRequired
	}

	callCtx, cancel := c.callContext(api.WithActor(ctx, actor))
	defer cancel()

	resp, err := c.api.SetMonitoring(callCtx, enabled)
	if err != nil {
		return false, fmt.Errorf("set monitoring: %w", err)
	}

	return api.MonitoringFromStruct(resp)
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
