package ringer

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Asami3315/Emergency-Ringer/internal/alert"
	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

// Document field names.
const (
	fieldSource         = "source"
	fieldCategory       = "category"
	fieldTemplate       = "template"
	fieldTitle          = "title"
	fieldBody           = "body"
	fieldExpandedText   = "expanded_text"
	fieldSubText        = "sub_text"
	fieldPostedAt       = "posted_at"
	fieldIsIncomingCall = "is_incoming_call"
	fieldMatchedContact = "matched_contact"
	fieldName           = "name"
	fieldNumber         = "number"
	fieldVoice          = "voice"
	fieldDuration       = "duration"
	fieldPreview        = "preview"
	fieldSessionID      = "session_id"
	fieldPlaying        = "playing"
	fieldVibrating      = "vibrating"
	fieldStrobing       = "strobing"
	fieldStartedAt      = "started_at"
	fieldDeadline       = "deadline"
	fieldChanged        = "changed"
	fieldMonitoring     = "monitoring_enabled"
	fieldContacts       = "contacts"
	fieldContactCount   = "contact_count"
	fieldAlert          = "alert"
	fieldFeeds          = "feeds"
	fieldConnected      = "connected"
	fieldLastDetection  = "last_detection"
	fieldContact        = "contact"
	fieldAt             = "at"
	fieldAudible        = "audible"
)

// ErrMalformedDocument is returned when a document has the wrong shape.
var ErrMalformedDocument = errors.New("malformed document")

// EventToStruct encodes a notification event.
func EventToStruct(event *domain.NotificationEvent) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldSource:       structpb.NewStringValue(event.Source),
		fieldCategory:     structpb.NewStringValue(string(event.Category)),
		fieldTemplate:     structpb.NewStringValue(event.TemplateHint),
		fieldTitle:        structpb.NewStringValue(event.Title),
		fieldBody:         structpb.NewStringValue(event.Body),
		fieldExpandedText: structpb.NewStringValue(event.ExpandedText),
		fieldSubText:      structpb.NewStringValue(event.SubText),
	}
	putTime(fields, fieldPostedAt, event.PostedAt)

	return &structpb.Struct{Fields: fields}
}

// EventFromStruct decodes a notification event. The source is required and
// a missing posting time becomes now.
func EventFromStruct(doc *structpb.Struct) (*domain.NotificationEvent, error) {
	source, err := stringField(doc, fieldSource)
	if err != nil {
		return nil, err
	}

	if source == "" {
		return nil, fmt.Errorf("%w: %s is required", ErrMalformedDocument, fieldSource)
	}

	event := &domain.NotificationEvent{Source: source}

	texts := []struct {
		key    string
		target *string
	}{
		{fieldTemplate, &event.TemplateHint},
		{fieldTitle, &event.Title},
		{fieldBody, &event.Body},
		{fieldExpandedText, &event.ExpandedText},
		{fieldSubText, &event.SubText},
	}

	for _, text := range texts {
		if *text.target, err = stringField(doc, text.key); err != nil {
			return nil, err
		}
	}

	category, err := stringField(doc, fieldCategory)
	if err != nil {
		return nil, err
	}

	event.Category = domain.Category(category)

	if event.PostedAt, err = timeField(doc, fieldPostedAt); err != nil {
		return nil, err
	}

	if event.PostedAt.IsZero() {
		event.PostedAt = time.Now()
	}

	return event, nil
}

// VerdictToStruct encodes a classification verdict.
func VerdictToStruct(verdict domain.Verdict) *structpb.Struct {
	matched := structpb.NewNullValue()
	if verdict.MatchedContact != nil {
		matched = structpb.NewStructValue(ContactToStruct(*verdict.MatchedContact))
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldIsIncomingCall: structpb.NewBoolValue(verdict.IsIncomingCall),
		fieldMatchedContact: matched,
	}}
}

// VerdictFromStruct decodes a classification verdict.
func VerdictFromStruct(doc *structpb.Struct) (domain.Verdict, error) {
	isCall, err := boolField(doc, fieldIsIncomingCall)
	if err != nil {
		return domain.Verdict{}, err
	}

	verdict := domain.Verdict{IsIncomingCall: isCall}

	nested, err := structField(doc, fieldMatchedContact)
	if err != nil {
		return domain.Verdict{}, err
	}

	if nested != nil {
		contact, err := ContactFromStruct(nested)
		if err != nil {
			return domain.Verdict{}, err
		}

		verdict.MatchedContact = &contact
	}

	return verdict, nil
}

// ContactToStruct encodes a trusted contact.
func ContactToStruct(contact domain.TrustedContact) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldName:   structpb.NewStringValue(contact.Name),
		fieldNumber: structpb.NewStringValue(contact.Number),
	}}
}

// ContactFromStruct decodes a trusted contact.
func ContactFromStruct(doc *structpb.Struct) (domain.TrustedContact, error) {
	name, err := stringField(doc, fieldName)
	if err != nil {
		return domain.TrustedContact{}, err
	}

	number, err := stringField(doc, fieldNumber)
	if err != nil {
		return domain.TrustedContact{}, err
	}

	return domain.TrustedContact{Name: name, Number: number}, nil
}

// ContactsToStruct encodes the contact list and the monitoring switch.
func ContactsToStruct(contacts []domain.TrustedContact, monitoring bool) *structpb.Struct {
	values := make([]*structpb.Value, 0, len(contacts))
	for _, contact := range contacts {
		values = append(values, structpb.NewStructValue(ContactToStruct(contact)))
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldMonitoring: structpb.NewBoolValue(monitoring),
		fieldContacts:   structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}
}

// ContactsFromStruct decodes the contact list and the monitoring switch.
func ContactsFromStruct(doc *structpb.Struct) ([]domain.TrustedContact, bool, error) {
	monitoring, err := boolField(doc, fieldMonitoring)
	if err != nil {
		return nil, false, err
	}

	items, err := listField(doc, fieldContacts)
	if err != nil {
		return nil, false, err
	}

	contacts := make([]domain.TrustedContact, 0, len(items))

	for _, item := range items {
		nested := item.GetStructValue()
		if nested == nil {
			return nil, false, fmt.Errorf("%w: contact is not an object", ErrMalformedDocument)
		}

		contact, err := ContactFromStruct(nested)
		if err != nil {
			return nil, false, err
		}

		contacts = append(contacts, contact)
	}

	return contacts, monitoring, nil
}

// ChangedToStruct encodes the outcome of a contact mutation.
func ChangedToStruct(changed bool) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldChanged: structpb.NewBoolValue(changed),
	}}
}

// ChangedFromStruct decodes the outcome of a contact mutation.
func ChangedFromStruct(doc *structpb.Struct) (bool, error) {
	return boolField(doc, fieldChanged)
}

// MonitoringToStruct encodes the monitoring switch.
func MonitoringToStruct(enabled bool) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldMonitoring: structpb.NewBoolValue(enabled),
	}}
}

// MonitoringFromStruct decodes the monitoring switch.
func MonitoringFromStruct(doc *structpb.Struct) (bool, error) {
	return boolField(doc, fieldMonitoring)
}

// TriggerRequestToStruct encodes a manual trigger.
func TriggerRequestToStruct(req alert.Request) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldVoice:   structpb.NewStringValue(req.Voice.String()),
		fieldPreview: structpb.NewBoolValue(req.Preview),
	}

	if req.Duration > 0 {
		fields[fieldDuration] = structpb.NewStringValue(req.Duration.String())
	}

	return &structpb.Struct{Fields: fields}
}

// TriggerRequestFromStruct decodes a manual trigger.
func TriggerRequestFromStruct(doc *structpb.Struct) (alert.Request, error) {
	var req alert.Request

	voice, err := stringField(doc, fieldVoice)
	if err != nil {
		return req, err
	}

	if req.Voice, err = domain.ParseVoice(voice); err != nil {
		return req, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	duration, err := stringField(doc, fieldDuration)
	if err != nil {
		return req, err
	}

	if duration != "" {
		if req.Duration, err = time.ParseDuration(duration); err != nil || req.Duration < 0 {
			return req, fmt.Errorf("%w: invalid %s %q", ErrMalformedDocument, fieldDuration, duration)
		}
	}

	if req.Preview, err = boolField(doc, fieldPreview); err != nil {
		return req, err
	}

	return req, nil
}

// AlertStatusToStruct encodes an alert status.
func AlertStatusToStruct(status domain.AlertStatus) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldSessionID: structpb.NewStringValue(status.SessionID),
		fieldVoice:     structpb.NewStringValue(status.Voice.String()),
		fieldPlaying:   structpb.NewBoolValue(status.Playing),
		fieldVibrating: structpb.NewBoolValue(status.Vibrating),
		fieldStrobing:  structpb.NewBoolValue(status.Strobing),
		fieldPreview:   structpb.NewBoolValue(status.Preview),
	}
	putTime(fields, fieldStartedAt, status.StartedAt)
	putTime(fields, fieldDeadline, status.Deadline)

	return &structpb.Struct{Fields: fields}
}

// AlertStatusFromStruct decodes an alert status.
func AlertStatusFromStruct(doc *structpb.Struct) (domain.AlertStatus, error) {
	var (
		status domain.AlertStatus
		voice  string
		err    error
	)

	if status.SessionID, err = stringField(doc, fieldSessionID); err != nil {
		return status, err
	}

	if voice, err = stringField(doc, fieldVoice); err != nil {
		return status, err
	}

	if status.Voice, err = domain.ParseVoice(voice); err != nil {
		return status, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	flags := []struct {
		key    string
		target *bool
	}{
		{fieldPlaying, &status.Playing},
		{fieldVibrating, &status.Vibrating},
		{fieldStrobing, &status.Strobing},
		{fieldPreview, &status.Preview},
	}

	for _, flag := range flags {
		if *flag.target, err = boolField(doc, flag.key); err != nil {
			return status, err
		}
	}

	if status.StartedAt, err = timeField(doc, fieldStartedAt); err != nil {
		return status, err
	}

	if status.Deadline, err = timeField(doc, fieldDeadline); err != nil {
		return status, err
	}

	return status, nil
}

// StatusToStruct encodes the daemon status.
func StatusToStruct(status *domain.Status) *structpb.Struct {
	feeds := make([]*structpb.Value, 0, len(status.Feeds))
	for _, feed := range status.Feeds {
		feeds = append(feeds, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			fieldName:      structpb.NewStringValue(feed.Name),
			fieldConnected: structpb.NewBoolValue(feed.Connected),
		}}))
	}

	detection := structpb.NewNullValue()

	if last := status.LastDetection; last != nil {
		fields := map[string]*structpb.Value{
			fieldSource:  structpb.NewStringValue(last.Source),
			fieldContact: structpb.NewStructValue(ContactToStruct(last.Contact)),
			fieldAudible: structpb.NewBoolValue(last.Audible),
		}
		putTime(fields, fieldAt, last.At)

		detection = structpb.NewStructValue(&structpb.Struct{Fields: fields})
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldAlert:         structpb.NewStructValue(AlertStatusToStruct(status.Alert)),
		fieldMonitoring:    structpb.NewBoolValue(status.MonitoringEnabled),
		fieldContactCount:  structpb.NewNumberValue(float64(status.ContactCount)),
		fieldFeeds:         structpb.NewListValue(&structpb.ListValue{Values: feeds}),
		fieldLastDetection: detection,
	}}
}

// StatusFromStruct decodes the daemon status.
func StatusFromStruct(doc *structpb.Struct) (*domain.Status, error) {
	status := new(domain.Status)

	alertDoc, err := structField(doc, fieldAlert)
	if err != nil {
		return nil, err
	}

	if alertDoc != nil {
		if status.Alert, err = AlertStatusFromStruct(alertDoc); err != nil {
			return nil, err
		}
	}

	if status.MonitoringEnabled, err = boolField(doc, fieldMonitoring); err != nil {
		return nil, err
	}

	if value, ok := doc.GetFields()[fieldContactCount]; ok {
		status.ContactCount = int(value.GetNumberValue())
	}

	feeds, err := listField(doc, fieldFeeds)
	if err != nil {
		return nil, err
	}

	for _, item := range feeds {
		feedDoc := item.GetStructValue()
		if feedDoc == nil {
			return nil, fmt.Errorf("%w: feed is not an object", ErrMalformedDocument)
		}

		name, err := stringField(feedDoc, fieldName)
		if err != nil {
			return nil, err
		}

		connected, err := boolField(feedDoc, fieldConnected)
		if err != nil {
			return nil, err
		}

		status.Feeds = append(status.Feeds, domain.FeedStatus{Name: name, Connected: connected})
	}

	detectionDoc, err := structField(doc, fieldLastDetection)
	if err != nil {
		return nil, err
	}

	if detectionDoc != nil {
		if status.LastDetection, err = detectionFromStruct(detectionDoc); err != nil {
			return nil, err
		}
	}

	return status, nil
}

func detectionFromStruct(doc *structpb.Struct) (*domain.Detection, error) {
	var (
		detection domain.Detection
		err       error
	)

	if detection.Source, err = stringField(doc, fieldSource); err != nil {
		return nil, err
	}

	contactDoc, err := structField(doc, fieldContact)
	if err != nil {
		return nil, err
	}

	if contactDoc != nil {
		if detection.Contact, err = ContactFromStruct(contactDoc); err != nil {
			return nil, err
		}
	}

	if detection.At, err = timeField(doc, fieldAt); err != nil {
		return nil, err
	}

	if detection.Audible, err = boolField(doc, fieldAudible); err != nil {
		return nil, err
	}

	return &detection, nil
}

func putTime(fields map[string]*structpb.Value, key string, t time.Time) {
	if t.IsZero() {
		return
	}

	fields[key] = structpb.NewStringValue(t.UTC().Format(time.RFC3339Nano))
}

// stringField returns the string at key, or "" when absent or null.
func stringField(doc *structpb.Struct, key string) (string, error) {
	value, ok := doc.GetFields()[key]
	if !ok {
		return "", nil
	}

	switch kind := value.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	case *structpb.Value_NullValue:
		return "", nil
	default:
		return "", fmt.Errorf("%w: %s is not a string", ErrMalformedDocument, key)
	}
}

// boolField returns the bool at key, or false when absent or null.
func boolField(doc *structpb.Struct, key string) (bool, error) {
	value, ok := doc.GetFields()[key]
	if !ok {
		return false, nil
	}

	switch kind := value.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return kind.BoolValue, nil
	case *structpb.Value_NullValue:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s is not a bool", ErrMalformedDocument, key)
	}
}

// structField returns the object at key, or nil when absent or null.
func structField(doc *structpb.Struct, key string) (*structpb.Struct, error) {
	value, ok := doc.GetFields()[key]
	if !ok {
		return nil, nil //nolint:nilnil // Absent objects are not an error.
	}

	switch kind := value.GetKind().(type) {
	case *structpb.Value_StructValue:
		return kind.StructValue, nil
	case *structpb.Value_NullValue:
		return nil, nil //nolint:nilnil // Null objects are not an error.
	default:
		return nil, fmt.Errorf("%w: %s is not an object", ErrMalformedDocument, key)
	}
}

// listField returns the items at key, or nil when absent or null.
func listField(doc *structpb.Struct, key string) ([]*structpb.Value, error) {
	value, ok := doc.GetFields()[key]
	if !ok {
		return nil, nil
	}

	switch kind := value.GetKind().(type) {
	case *structpb.Value_ListValue:
		return kind.ListValue.GetValues(), nil
	case *structpb.Value_NullValue:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s is not a list", ErrMalformedDocument, key)
	}
}

// timeField returns the RFC 3339 time at key, or the zero time when absent.
func timeField(doc *structpb.Struct, key string) (time.Time, error) {
	raw, err := stringField(doc, key)
	if err != nil || raw == "" {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s is not a RFC 3339 time", ErrMalformedDocument, key)
	}

	return t, nil
}
