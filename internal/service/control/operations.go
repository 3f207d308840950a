package control

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Asami3315/Emergency-Ringer/internal/alert"
	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

var (
	// errUsage marks errors caused by bad input; they are never retried.
	errUsage = errors.New("invalid usage")
	// errNotStarted is returned when the daemon could not start any voice.
	errNotStarted = errors.New("alert did not start")
)

// Trigger starts a manual alert and prints the resulting session.
func Trigger(req alert.Request) Command {
	return func(ctx context.Context, s *Session) error {
		status, err := s.Client.Trigger(ctx, s.Actor, req)
		if err != nil {
			return err
		}

		if !status.Active() {
			return errNotStarted
		}

		_, err = fmt.Fprintln(s.Out, "Alert started:", formatAlert(status))

		return err
	}
}

// Stop ends the running alert.
func Stop() Command {
	return func(ctx context.Context, s *Session) error {
		status, err := s.Client.Stop(ctx, s.Actor)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(s.Out, "Alert:", formatAlert(status))

		return err
	}
}

// Status prints the daemon status.
func Status() Command {
	return func(ctx context.Context, s *Session) error {
		status, err := s.Client.Status(ctx)
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(s.Out, formatStatus(status))

		return err
	}
}

// Notify injects a notification and prints the verdict.
func Notify(event *domain.NotificationEvent) Command {
	return func(ctx context.Context, s *Session) error {
		if event == nil || event.Source == "" {
			return fmt.Errorf("%w: notification source is required", errUsage)
		}

		verdict, err := s.Client.PostNotification(ctx, event)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(s.Out, formatVerdict(verdict))

		return err
	}
}

// ListContacts prints the trusted contacts and the monitoring switch.
func ListContacts() Command {
	return func(ctx context.Context, s *Session) error {
		contacts, monitoring, err := s.Client.ListContacts(ctx)
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(s.Out, formatContacts(contacts, monitoring))

		return err
	}
}

// AddContact stores a trusted contact.
func AddContact(contact domain.TrustedContact) Command {
	return func(ctx context.Context, s *Session) error {
		if strings.TrimSpace(contact.Name) == "" {
			return fmt.Errorf("%w: %w", errUsage, domain.ErrInvalidContact)
		}

		added, err := s.Client.AddContact(ctx, s.Actor, contact)
		if err != nil {
			return err
		}

		msg := "Contact added: "
		if !added {
			msg = "Contact already trusted: "
		}

		_, err = fmt.Fprintln(s.Out, msg+formatContact(contact))

		return err
	}
}

// RemoveContact deletes a trusted contact.
func RemoveContact(contact domain.TrustedContact) Command {
	return func(ctx context.Context, s *Session) error {
		if strings.TrimSpace(contact.Name) == "" {
			return fmt.Errorf("%w: %w", errUsage, domain.ErrInvalidContact)
		}

		removed, err := s.Client.RemoveContact(ctx, s.Actor, contact)
		if err != nil {
			return err
		}

		msg := "Contact removed: "
		if !removed {
			msg = "Contact not found: "
		}

		_, err = fmt.Fprintln(s.Out, msg+formatContact(contact))

		return err
	}
}

// SetMonitoring switches call monitoring on or off.
func SetMonitoring(enabled bool) Command {
	return func(ctx context.Context, s *Session) error {
		stored, err := s.Client.SetMonitoring(ctx, s.Actor, enabled)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(s.Out, "Monitoring:", onOff(stored))

		return err
	}
}

// ToggleMonitoring flips the current monitoring switch.
func ToggleMonitoring() Command {
	return func(ctx context.Context, s *Session) error {
		_, current, err := s.Client.ListContacts(ctx)
		if err != nil {
			return err
		}

		return SetMonitoring(!current)(ctx, s)
	}
}

// formatAlert renders an alert status as a single line.
func formatAlert(status domain.AlertStatus) string {
	if !status.Active() {
		return "idle"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s voice", status.Voice)

	if status.Vibrating {
		b.WriteString(", vibrating")
	}

	if status.Strobing {
		b.WriteString(", strobing")
	}

	if status.Preview {
		b.WriteString(", preview")
	}

	if !status.Deadline.IsZero() {
		fmt.Fprintf(&b, ", stops at %s", status.Deadline.Local().Format(time.TimeOnly))
	}

	if status.SessionID != "" {
		fmt.Fprintf(&b, " (session %s)", status.SessionID)
	}

	return b.String()
}

// formatStatus renders the daemon status as a short report.
func formatStatus(status *domain.Status) string {
	if status == nil {
		return "<nil status>\n"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Alert:      %s\n", formatAlert(status.Alert))
	fmt.Fprintf(&b, "Monitoring: %s\n", onOff(status.MonitoringEnabled))
	fmt.Fprintf(&b, "Contacts:   %d\n", status.ContactCount)

	for _, feed := range status.Feeds {
		state := "disconnected"
		if feed.Connected {
			state = "connected"
		}

		fmt.Fprintf(&b, "Feed:       %s %s\n", feed.Name, state)
	}

	if d := status.LastDetection; d != nil {
		audible := "audible"
		if !d.Audible {
			audible = "partially audible"
		}

		fmt.Fprintf(
			&b,
			"Last call:  %s via %s at %s (%s)\n",
			formatContact(d.Contact),
			d.Source,
			d.At.Local().Format(time.RFC3339),
			audible,
		)
	}

	return b.String()
}

// formatVerdict renders a classification verdict.
func formatVerdict(verdict domain.Verdict) string {
	switch {
	case verdict.Matched():
		return "Trusted incoming call from " + formatContact(*verdict.MatchedContact)
	case verdict.IsIncomingCall:
		return "Incoming call, caller is not trusted"
	default:
		return "Not an incoming call"
	}
}

// formatContacts renders the contact list with the monitoring switch.
func formatContacts(contacts []domain.TrustedContact, monitoring bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Monitoring: %s\n", onOff(monitoring))

	if len(contacts) == 0 {
		b.WriteString("No trusted contacts\n")

		return b.String()
	}

	for _, c := range contacts {
		fmt.Fprintf(&b, "  %s\n", formatContact(c))
	}

	return b.String()
}

func formatContact(c domain.TrustedContact) string {
	if c.Number == "" {
		return c.Name
	}

	return fmt.Sprintf("%s <%s>", c.Name, c.Number)
}

func onOff(v bool) string {
	if v {
		return "on"
	}

	return "off"
}
