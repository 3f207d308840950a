package dbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/require"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

var errTestNoBus = errors.New("test: no bus")

func notifyMessage(appName, summary, body string, hints map[string]godbus.Variant) *godbus.Message {
	return &godbus.Message{
		Type: godbus.TypeMethodCall,
		Headers: map[godbus.HeaderField]godbus.Variant{
			godbus.FieldInterface: godbus.MakeVariant(notificationsInterface),
			godbus.FieldMember:    godbus.MakeVariant(notifyMember),
		},
		Body: []any{
			appName, uint32(0), "call-start", summary, body,
			[]string{"answer", "Answer"}, hints, int32(-1),
		},
	}
}

func TestParseNotify(t *testing.T) {
	t.Parallel()

	posted := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	t.Run("call with desktop entry", func(t *testing.T) {
		t.Parallel()

		msg := notifyMessage("Calls", "Mom", "Incoming call", map[string]godbus.Variant{
			"desktop-entry": godbus.MakeVariant("org.gnome.Calls.desktop"),
			"category":      godbus.MakeVariant("call.incoming"),
		})

		event, ok := ParseNotify(msg, posted)
		require.True(t, ok)
		require.Equal(t, &domain.NotificationEvent{
			Source:       "org.gnome.Calls",
			Category:     domain.CategoryCall,
			TemplateHint: "call.incoming",
			Title:        "Mom",
			Body:         "Incoming call",
			SubText:      "Calls",
			PostedAt:     posted,
		}, event)
	})

	t.Run("app name without hints", func(t *testing.T) {
		t.Parallel()

		event, ok := ParseNotify(notifyMessage("whatsapp", "Dad", "hi", nil), posted)
		require.True(t, ok)
		require.Equal(t, "whatsapp", event.Source)
		require.Equal(t, domain.CategoryNone, event.Category)
	})

	t.Run("message category", func(t *testing.T) {
		t.Parallel()

		msg := notifyMessage("chat", "Dad", "hi", map[string]godbus.Variant{
			"category": godbus.MakeVariant("im.received"),
		})

		event, ok := ParseNotify(msg, posted)
		require.True(t, ok)
		require.Equal(t, domain.CategoryMessage, event.Category)
	})

	t.Run("other member", func(t *testing.T) {
		t.Parallel()

		msg := notifyMessage("chat", "Dad", "hi", nil)
		msg.Headers[godbus.FieldMember] = godbus.MakeVariant("CloseNotification")

		_, ok := ParseNotify(msg, posted)
		require.False(t, ok)
	})

	t.Run("signal", func(t *testing.T) {
		t.Parallel()

		msg := notifyMessage("chat", "Dad", "hi", nil)
		msg.Type = godbus.TypeSignal

		_, ok := ParseNotify(msg, posted)
		require.False(t, ok)
	})

	t.Run("short body", func(t *testing.T) {
		t.Parallel()

		msg := notifyMessage("chat", "Dad", "hi", nil)
		msg.Body = msg.Body[:3]

		_, ok := ParseNotify(msg, posted)
		require.False(t, ok)
	})

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		_, ok := ParseNotify(nil, posted)
		require.False(t, ok)
	})
}

// fakeConn replays messages and then closes, as a dropped bus does.
type fakeConn struct {
	mu       sync.Mutex
	messages []*godbus.Message
	rules    []string
	closed   bool
}

func (c *fakeConn) Monitor(_ context.Context, rules []string, ch chan *godbus.Message) error {
	c.mu.Lock()
	c.rules = rules
	c.mu.Unlock()

	go func() {
		for _, msg := range c.messages {
			ch <- msg
		}

		close(ch)
	}()

	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true

	return nil
}

func TestMonitor_RunReconnects(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		var (
			mu     sync.Mutex
			dials  int
			conns  []*fakeConn
			events []*domain.NotificationEvent
		)

		dial := func(context.Context) (Conn, error) {
			mu.Lock()
			defer mu.Unlock()

			dials++
			if dials == 2 {
				return nil, errTestNoBus
			}

			conn := &fakeConn{messages: []*godbus.Message{
				notifyMessage("Calls", "Mom", "Incoming call", nil),
				{Type: godbus.TypeSignal},
			}}
			conns = append(conns, conn)

			return conn, nil
		}

		monitor := NewMonitor(WithDialer(dial), WithRetryInterval(time.Second))
		require.Equal(t, "dbus", monitor.Name())

		done := make(chan error, 1)

		go func() {
			done <- monitor.Run(ctx, func(_ context.Context, event *domain.NotificationEvent) {
				mu.Lock()
				defer mu.Unlock()

				events = append(events, event)
			})
		}()

		synctest.Wait()
		require.False(t, monitor.Connected())

		mu.Lock()
		require.Equal(t, 1, dials)
		require.Len(t, events, 1)
		require.Equal(t, "Mom", events[0].Title)
		first := conns[0]
		mu.Unlock()

		first.mu.Lock()
		require.True(t, first.closed)
		require.Equal(t, []string{MatchRule}, first.rules)
		first.mu.Unlock()

		// The second attempt fails, the third connects again.
		time.Sleep(2500 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		require.Equal(t, 3, dials)
		require.Len(t, events, 2)
		mu.Unlock()

		cancel()
		require.NoError(t, <-done)
	})
}

func TestMonitor_StaysConnected(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())

		monitor := NewMonitor(WithDialer(func(context.Context) (Conn, error) {
			return blockingConn{}, nil
		}))

		done := make(chan error, 1)

		go func() {
			done <- monitor.Run(ctx, func(context.Context, *domain.NotificationEvent) {})
		}()

		synctest.Wait()
		require.True(t, monitor.Connected())

		cancel()
		require.NoError(t, <-done)
		require.False(t, monitor.Connected())
	})
}

// blockingConn never delivers or drops.
type blockingConn struct{}

func (blockingConn) Monitor(context.Context, []string, chan *godbus.Message) error { return nil }

func (blockingConn) Close() error { return nil }
