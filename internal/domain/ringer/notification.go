package ringer

import (
	"strings"
	"time"
)

// Category is the structured notification category supplied by the platform.
type Category string

const (
	// CategoryNone means the platform did not supply a category.
	CategoryNone Category = ""
	// CategoryCall marks an incoming voice or video call.
	CategoryCall Category = "call"
	// CategoryMessage marks a chat message.
	CategoryMessage Category = "msg"
)

// NotificationEvent is one posted notification as seen by the classifier.
// It only lives for the duration of a classification.
type NotificationEvent struct {
	// Source identifies the posting application (package or desktop entry).
	Source string
	// Category is the structured category, if any.
	Category Category
	// TemplateHint names the notification style or template, if any.
	TemplateHint string
	// Title is usually the caller or conversation name.
	Title string
	// Body is the main notification text.
	Body string
	// ExpandedText is the long form of the body.
	ExpandedText string
	// SubText is the secondary line.
	SubText string
	// PostedAt is when the feed received the event.
	PostedAt time.Time
}

// CallText joins the fields that may carry an incoming-call phrase.
func (e *NotificationEvent) CallText() string {
	return strings.TrimSpace(e.Body + " " + e.ExpandedText + " " + e.SubText)
}

// CallerText joins every field where a caller name may appear.
func (e *NotificationEvent) CallerText() string {
	return e.Title + " " + e.Body + " " + e.ExpandedText + " " + e.SubText
}

// Verdict is the result of classifying one notification.
type Verdict struct {
	// IsIncomingCall reports whether any call signal fired.
	IsIncomingCall bool
	// MatchedContact is the first trusted contact found in the notification.
	MatchedContact *TrustedContact
}

// Matched reports whether the verdict should raise an alert.
func (v Verdict) Matched() bool {
	return v.IsIncomingCall && v.MatchedContact != nil
}
