package dbus

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	godbus "github.com/godbus/dbus/v5"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
	"github.com/Asami3315/Emergency-Ringer/internal/logger"
)

const (
	// DefaultRetryInterval is the delay between reconnect attempts.
	DefaultRetryInterval = 10 * time.Second

	becomeMonitorMethod = "org.freedesktop.DBus.Monitoring.BecomeMonitor"
	messageBuffer       = 64
)

var errDisconnected = errors.New("session bus disconnected")

// Handler receives converted notifications. It runs on the receive goroutine
// and must not block.
type Handler func(ctx context.Context, event *domain.NotificationEvent)

// Conn is a bus connection able to monitor messages.
type Conn interface {
	// Monitor turns the connection into a monitor for rules and delivers
	// matching messages to ch until the connection closes.
	Monitor(ctx context.Context, rules []string, ch chan *godbus.Message) error
	Close() error
}

// Dialer opens a bus connection.
type Dialer func(ctx context.Context) (Conn, error)

// Monitor is the session-bus notification feed.
type Monitor struct {
	dial      Dialer
	retry     time.Duration
	connected atomic.Bool
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithDialer replaces the session-bus dialer.
func WithDialer(dial Dialer) Option {
	return func(m *Monitor) {
		m.dial = dial
	}
}

// WithRetryInterval sets the reconnect delay.
func WithRetryInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.retry = d
		}
	}
}

// NewMonitor creates a disconnected feed.
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{
		dial:  DialSession,
		retry: DefaultRetryInterval,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Name identifies the feed in status reports.
func (m *Monitor) Name() string {
	return "dbus"
}

// Connected reports whether the feed currently receives notifications.
func (m *Monitor) Connected() bool {
	return m.connected.Load()
}

// Run delivers notifications to handle until ctx ends, reconnecting
// whenever the bus goes away.
func (m *Monitor) Run(ctx context.Context, handle Handler) error {
	ctx = logger.WithName(ctx, "dbus-feed")

	ticker := time.NewTicker(m.retry)
	defer ticker.Stop()

	for {
		err := m.session(ctx, handle)
		m.connected.Store(false)

		if ctx.Err() != nil {
			logger.Info(ctx, "notification feed stopped")

			return nil
		}

		logger.Warnf(ctx, "notification feed disconnected, retrying in %s: %v", m.retry, err)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (m *Monitor) session(ctx context.Context, handle Handler) error {
	conn, err := m.dial(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Debugf(ctx, "failed to close bus connection: %v", closeErr)
		}
	}()

	messages := make(chan *godbus.Message, messageBuffer)
	if err = conn.Monitor(ctx, []string{MatchRule}, messages); err != nil {
		return fmt.Errorf("failed to monitor notifications: %w", err)
	}

	m.connected.Store(true)
	logger.Info(ctx, "notification feed connected")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return errDisconnected
			}

			event, ok := ParseNotify(msg, time.Now())
			if !ok {
				continue
			}

			logger.DebugKV(ctx, "notification received", "source", event.Source, "category", event.Category)
			handle(ctx, event)
		}
	}
}

// sessionConn adapts a godbus connection.
type sessionConn struct {
	conn *godbus.Conn
}

// DialSession opens a private session-bus connection.
func DialSession(ctx context.Context) (Conn, error) {
	conn, err := godbus.ConnectSessionBus(godbus.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	return &sessionConn{conn: conn}, nil
}

func (c *sessionConn) Monitor(ctx context.Context, rules []string, ch chan *godbus.Message) error {
	call := c.conn.BusObject().CallWithContext(ctx, becomeMonitorMethod, 0, rules, uint32(0))
	if call.Err != nil {
		return call.Err
	}

	c.conn.Eavesdrop(ch)

	return nil
}

func (c *sessionConn) Close() error {
	return c.conn.Close()
}
