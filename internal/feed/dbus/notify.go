package dbus

import (
	"strings"
	"time"

	godbus "github.com/godbus/dbus/v5"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

const (
	notificationsInterface = "org.freedesktop.Notifications"
	notifyMember           = "Notify"

	// MatchRule selects Notify calls on the session bus.
	MatchRule = "type='method_call',interface='" + notificationsInterface + "',member='" + notifyMember + "'"
)

// Notify argument positions, signature susssasa{sv}i.
const (
	argAppName = iota
	argReplacesID
	argIcon
	argSummary
	argBody
	argActions
	argHints
	argTimeout
)

// Hint keys read from the notification.
const (
	hintDesktopEntry = "desktop-entry"
	hintCategory     = "category"
)

// ParseNotify converts a Notify method call into an event.
// It reports false for any other message.
func ParseNotify(msg *godbus.Message, postedAt time.Time) (*domain.NotificationEvent, bool) {
	if msg == nil || msg.Type != godbus.TypeMethodCall {
		return nil, false
	}

	if headerString(msg, godbus.FieldInterface) != notificationsInterface ||
		headerString(msg, godbus.FieldMember) != notifyMember {
		return nil, false
	}

	if len(msg.Body) <= argBody {
		return nil, false
	}

	appName, _ := msg.Body[argAppName].(string)
	summary, _ := msg.Body[argSummary].(string)
	body, _ := msg.Body[argBody].(string)

	var hints map[string]godbus.Variant
	if len(msg.Body) > argHints {
		hints, _ = msg.Body[argHints].(map[string]godbus.Variant)
	}

	source := hintString(hints, hintDesktopEntry)
	if source == "" {
		source = appName
	}

	category := hintString(hints, hintCategory)

	event := &domain.NotificationEvent{
		Source:       strings.TrimSuffix(source, ".desktop"),
		Category:     mapCategory(category),
		TemplateHint: category,
		Title:        summary,
		Body:         body,
		SubText:      appName,
		PostedAt:     postedAt,
	}

	return event, true
}

// mapCategory maps freedesktop categories such as "call.incoming" or
// "im.received" onto the ringer categories.
func mapCategory(category string) domain.Category {
	class, _, _ := strings.Cut(strings.ToLower(category), ".")

	switch class {
	case "call", "x-gnome-call", "x-kde-call":
		return domain.CategoryCall
	case "im", "email":
		return domain.CategoryMessage
	default:
		return domain.CategoryNone
	}
}

func headerString(msg *godbus.Message, field godbus.HeaderField) string {
	variant, ok := msg.Headers[field]
	if !ok {
		return ""
	}

	value, _ := variant.Value().(string)

	return value
}

func hintString(hints map[string]godbus.Variant, key string) string {
	variant, ok := hints[key]
	if !ok {
		return ""
	}

	value, _ := variant.Value().(string)

	return value
}
