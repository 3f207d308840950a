package classifier

import (
	"strings"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
	"github.com/Asami3315/Emergency-Ringer/internal/textmatch"
)

// DefaultSources are the call-capable notification sources monitored when
// the configuration does not provide its own list.
//
//nolint:gochecknoglobals // Fixed default table.
var DefaultSources = []string{
	// Messaging apps with VoIP calls.
	"com.whatsapp",
	"com.whatsapp.w4b",
	// Telephony and dialer packages.
	"com.android.server.telecom",
	"com.android.dialer",
	"com.google.android.dialer",
	"com.samsung.android.dialer",
	"com.samsung.android.incallui",
	"com.android.incallui",
	"com.android.phone",
	"com.oneplus.dialer",
	"com.asus.contacts",
	"com.huawei.contacts",
	"com.xiaomi.incallui",
	// Desktop calling apps (freedesktop desktop-entry names).
	"org.gnome.calls",
	"sm.puri.calls",
	"org.kde.phone.dialer",
	"whatsapp",
	// Generic platform identifier.
	"android",
}

// callCapableHints are fragments of source names that usually belong to
// calling apps.
//
//nolint:gochecknoglobals // Fixed lookup table.
var callCapableHints = []string{"phone", "call", "dialer", "telecom", "whatsapp"}

// Signals holds the independent "is a call" signals of one notification.
type Signals struct {
	// Category reports category == call.
	Category bool
	// Template reports a template hint naming a call style.
	Template bool
	// Text reports an incoming-call phrase in the notification text.
	Text bool
}

// Any reports whether at least one signal fired.
func (s Signals) Any() bool {
	return s.Category || s.Template || s.Text
}

// Classifier applies the source filter and call signals to notifications.
type Classifier struct {
	// sources is the lower-cased allow-list of monitored sources.
	sources map[string]struct{}
}

// New creates a classifier for the given source allow-list.
// An empty list falls back to DefaultSources.
func New(sources []string) *Classifier {
	if len(sources) == 0 {
		sources = DefaultSources
	}

	set := make(map[string]struct{}, len(sources))
	for _, source := range sources {
		source = strings.ToLower(strings.TrimSpace(source))
		if source != "" {
			set[source] = struct{}{}
		}
	}

	return &Classifier{
		sources: set,
	}
}

// Monitors reports whether events from source are classified at all.
func (c *Classifier) Monitors(source string) bool {
	_, ok := c.sources[strings.ToLower(strings.TrimSpace(source))]

	return ok
}

// Signals computes the call signals of an event without filtering its source.
func (c *Classifier) Signals(event *domain.NotificationEvent) Signals {
	return Signals{
		Category: event.Category == domain.CategoryCall,
		Template: strings.Contains(strings.ToLower(event.TemplateHint), "call"),
		// A phrase may be split across fields when joined, so each field is
		// also checked on its own.
		Text: textmatch.IndicatesIncomingCall(event.CallText()) ||
			textmatch.IndicatesIncomingCall(event.Body) ||
			textmatch.IndicatesIncomingCall(event.ExpandedText) ||
			textmatch.IndicatesIncomingCall(event.SubText),
	}
}

// Classify decides whether event is an incoming call and which trusted
// contact, if any, it comes from. The first matching contact in list order
// wins; name matching is the permissive fuzzy match of package textmatch and
// a contact whose phone number appears in the text matches as well.
func (c *Classifier) Classify(event *domain.NotificationEvent, contacts []domain.TrustedContact) domain.Verdict {
	if event == nil || !c.Monitors(event.Source) {
		return domain.Verdict{}
	}

	if !c.Signals(event).Any() {
		return domain.Verdict{}
	}

	verdict := domain.Verdict{
		IsIncomingCall: true,
	}

	if len(contacts) == 0 {
		return verdict
	}

	candidate := event.CallerText()

	for i := range contacts {
		contact := &contacts[i]
		if textmatch.Matches(contact.Name, candidate) || textmatch.MatchesPhone(contact.Number, candidate) {
			verdict.MatchedContact = contact.Clone()

			return verdict
		}
	}

	return verdict
}

// LooksCallCapable reports whether an unmonitored source name looks like a
// calling app, so operators can be told to add it to the allow-list.
func LooksCallCapable(source string) bool {
	source = strings.ToLower(source)
	for _, hint := range callCapableHints {
		if strings.Contains(source, hint) {
			return true
		}
	}

	return false
}
