package control

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Asami3315/Emergency-Ringer/internal/alert"
	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

var errUnavailable = errors.New("unavailable")

// fakeAPI is an in-memory daemon.
type fakeAPI struct {
	mu sync.Mutex

	contacts   []domain.TrustedContact
	monitoring bool
	alert      domain.AlertStatus
	actors     []string
	failures   int
	calls      int
}

func (f *fakeAPI) fail() error {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errUnavailable
	}

	return nil
}

func (f *fakeAPI) PostNotification(_ context.Context, event *domain.NotificationEvent) (domain.Verdict, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fail(); err != nil {
		return domain.Verdict{}, err
	}

	for i := range f.contacts {
		if event.Category == domain.CategoryCall && event.Title == f.contacts[i].Name {
			return domain.Verdict{IsIncomingCall: true, MatchedContact: &f.contacts[i]}, nil
		}
	}

	return domain.Verdict{IsIncomingCall: event.Category == domain.CategoryCall}, nil
}

func (f *fakeAPI) Trigger(_ context.Context, actor *domain.Actor, req alert.Request) (domain.AlertStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fail(); err != nil {
		return domain.AlertStatus{}, err
	}

	f.actors = append(f.actors, actor.String())

	voice := req.Voice
	if voice == domain.VoiceNone {
		voice = domain.VoiceSiren
	}

	f.alert = domain.AlertStatus{SessionID: "s1", Voice: voice, Playing: true, Preview: req.Preview}

	return f.alert, nil
}

func (f *fakeAPI) Stop(_ context.Context, actor *domain.Actor) (domain.AlertStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fail(); err != nil {
		return domain.AlertStatus{}, err
	}

	f.actors = append(f.actors, actor.String())
	f.alert = domain.AlertStatus{}

	return f.alert, nil
}

func (f *fakeAPI) Status(context.Context) (*domain.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fail(); err != nil {
		return nil, err
	}

	return &domain.Status{
		Alert:             f.alert,
		MonitoringEnabled: f.monitoring,
		ContactCount:      len(f.contacts),
		Feeds:             []domain.FeedStatus{{Name: "grpc", Connected: true}, {Name: "dbus"}},
		LastDetection: &domain.Detection{
			Source:  "org.telegram.desktop",
			Contact: domain.TrustedContact{Name: "Mom"},
			At:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Audible: true,
		},
	}, nil
}

func (f *fakeAPI) ListContacts(context.Context) ([]domain.TrustedContact, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fail(); err != nil {
		return nil, false, err
	}

	return append([]domain.TrustedContact(nil), f.contacts...), f.monitoring, nil
}

func (f *fakeAPI) AddContact(_ context.Context, _ *domain.Actor, contact domain.TrustedContact) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fail(); err != nil {
		return false, err
	}

	for _, c := range f.contacts {
		if c.Equal(contact) {
			return false, nil
		}
	}

	f.contacts = append(f.contacts, contact)

	return true, nil
}

func (f *fakeAPI) RemoveContact(_ context.Context, _ *domain.Actor, contact domain.TrustedContact) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fail(); err != nil {
		return false, err
	}

	for i, c := range f.contacts {
		if c.Equal(contact) {
			f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
			return true, nil
		}
	}

	return false, nil
}

func (f *fakeAPI) SetMonitoring(_ context.Context, _ *domain.Actor, enabled bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fail(); err != nil {
		return false, err
	}

	f.monitoring = enabled

	return enabled, nil
}

func newSession(api *fakeAPI) (*Session, *bytes.Buffer) {
	out := new(bytes.Buffer)

	return &Session{
		Client: api,
		Actor:  &domain.Actor{Hostname: "laptop", Username: "alice"},
		Out:    out,
	}, out
}

// TestTriggerAndStop checks the alert commands and actor propagation.
func TestTriggerAndStop(t *testing.T) {
	t.Parallel()

	api := new(fakeAPI)
	s, out := newSession(api)
	ctx := t.Context()

	require.NoError(t, Trigger(alert.Request{Voice: domain.VoiceBeep, Preview: true})(ctx, s))
	require.Contains(t, out.String(), "Alert started: beep voice, preview (session s1)")

	out.Reset()
	require.NoError(t, Stop()(ctx, s))
	require.Equal(t, "Alert: idle\n", out.String())
	require.Equal(t, []string{"alice@laptop", "alice@laptop"}, api.actors)
}

// TestContacts covers add, duplicate add, list, remove and missing remove.
func TestContacts(t *testing.T) {
	t.Parallel()

	api := new(fakeAPI)
	s, out := newSession(api)
	ctx := t.Context()
	mom := domain.TrustedContact{Name: "Mom", Number: "+1 555 0100"}

	require.NoError(t, AddContact(mom)(ctx, s))
	require.NoError(t, AddContact(mom)(ctx, s))
	require.NoError(t, ListContacts()(ctx, s))
	require.NoError(t, RemoveContact(mom)(ctx, s))
	require.NoError(t, RemoveContact(mom)(ctx, s))

	require.Equal(t, "Contact added: Mom <+1 555 0100>\n"+
		"Contact already trusted: Mom <+1 555 0100>\n"+
		"Monitoring: off\n"+
		"  Mom <+1 555 0100>\n"+
		"Contact removed: Mom <+1 555 0100>\n"+
		"Contact not found: Mom <+1 555 0100>\n", out.String())

	err := AddContact(domain.TrustedContact{Name: "  "})(ctx, s)
	require.ErrorIs(t, err, errUsage)
	require.ErrorIs(t, err, domain.ErrInvalidContact)
}

// TestMonitoring checks explicit and toggled switching.
func TestMonitoring(t *testing.T) {
	t.Parallel()

	api := new(fakeAPI)
	s, out := newSession(api)
	ctx := t.Context()

	require.NoError(t, SetMonitoring(true)(ctx, s))
	require.NoError(t, ToggleMonitoring()(ctx, s))
	require.NoError(t, ToggleMonitoring()(ctx, s))

	require.Equal(t, "Monitoring: on\nMonitoring: off\nMonitoring: on\n", out.String())
	require.True(t, api.monitoring)
}

// TestNotify checks verdict rendering.
func TestNotify(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{contacts: []domain.TrustedContact{{Name: "Mom"}}}
	s, out := newSession(api)
	ctx := t.Context()

	require.NoError(t, Notify(&domain.NotificationEvent{
		Source:   "org.telegram.desktop",
		Category: domain.CategoryCall,
		Title:    "Mom",
	})(ctx, s))
	require.NoError(t, Notify(&domain.NotificationEvent{
		Source:   "org.telegram.desktop",
		Category: domain.CategoryCall,
		Title:    "Bob",
	})(ctx, s))
	require.NoError(t, Notify(&domain.NotificationEvent{Source: "org.telegram.desktop", Title: "Mom"})(ctx, s))

	require.Equal(t, "Trusted incoming call from Mom\n"+
		"Incoming call, caller is not trusted\n"+
		"Not an incoming call\n", out.String())

	require.ErrorIs(t, Notify(&domain.NotificationEvent{Title: "Mom"})(ctx, s), errUsage)
}

// TestStatus checks the status report layout.
func TestStatus(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{monitoring: true, contacts: []domain.TrustedContact{{Name: "Mom"}}}
	s, out := newSession(api)

	require.NoError(t, Status()(t.Context(), s))

	report := out.String()
	require.Contains(t, report, "Alert:      idle\n")
	require.Contains(t, report, "Monitoring: on\n")
	require.Contains(t, report, "Contacts:   1\n")
	require.Contains(t, report, "Feed:       grpc connected\n")
	require.Contains(t, report, "Feed:       dbus disconnected\n")
	require.Contains(t, report, "Last call:  Mom via org.telegram.desktop")
}

// TestExecute_Retry verifies that failed commands are retried until success.
func TestExecute_Retry(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		api := &fakeAPI{failures: 2}
		s, out := newSession(api)

		start := time.Now()
		require.NoError(t, Execute(t.Context(), s, SetMonitoring(true), time.Second))
		require.Equal(t, 2*time.Second, time.Since(start))
		require.Equal(t, 3, api.calls)
		require.Equal(t, "Monitoring: on\n", out.String())
	})
}

// TestExecute_NoRetry covers single-shot mode, usage errors and cancellation.
func TestExecute_NoRetry(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{failures: 1}
	s, _ := newSession(api)

	err := Execute(t.Context(), s, Stop(), 0)
	require.ErrorIs(t, err, errUnavailable)
	require.Equal(t, 1, api.calls)

	err = Execute(t.Context(), s, AddContact(domain.TrustedContact{}), time.Second)
	require.ErrorIs(t, err, errUsage)

	synctest.Test(t, func(t *testing.T) {
		api := &fakeAPI{failures: 100}
		s, _ := newSession(api)

		ctx, cancel := context.WithTimeout(t.Context(), 3500*time.Millisecond)
		defer cancel()

		err := Execute(ctx, s, Stop(), time.Second)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.ErrorIs(t, err, errUnavailable)
		require.Equal(t, 4, api.calls)
	})
}
