package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Asami3315/Emergency-Ringer/internal/alert"
	"github.com/Asami3315/Emergency-Ringer/internal/classifier"
	"github.com/Asami3315/Emergency-Ringer/internal/device"
	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
	dbusfeed "github.com/Asami3315/Emergency-Ringer/internal/feed/dbus"
	"github.com/Asami3315/Emergency-Ringer/internal/logger"
	"github.com/Asami3315/Emergency-Ringer/internal/repository/contacts"
)

const (
	// pipelineCapacity bounds the jobs waiting for the pipeline goroutine.
	pipelineCapacity = 32
	// grpcFeedName identifies notifications posted over the control plane.
	grpcFeedName = "grpc"
	// maxHintedSources bounds the unmonitored sources remembered for hints.
	maxHintedSources = 256

	bannerTitle = "Emergency call"
)

var errPipelineStopped = errors.New("notification pipeline stopped")

// Overrider forces the host audible.
type Overrider interface {
	ForceAudible(ctx context.Context) *device.Result
}

// Alerter drives the alert.
type Alerter interface {
	Trigger(ctx context.Context, req alert.Request) domain.AlertStatus
	Stop(ctx context.Context)
	State() *alert.State
}

// Notifier shows a desktop banner.
type Notifier interface {
	Show(ctx context.Context, title, message string)
}

// Feed is a source of platform notifications.
type Feed interface {
	Name() string
	Connected() bool
	Run(ctx context.Context, handle dbusfeed.Handler) error
}

// service holds the notification pipeline and the control-plane operations.
// Override and alert work runs on the pipeline goroutine only.
type service struct {
	// contacts persists trusted contacts and the monitoring switch.
	contacts contacts.Repository
	// classifier decides whether a notification is a trusted call.
	classifier *classifier.Classifier
	// override forces the host audible before the alert starts.
	override Overrider
	// alerts plays the alert.
	alerts Alerter
	// banner is optional.
	banner Notifier
	// feeds are the platform notification feeds.
	feeds []Feed
	// trace logs notification contents.
	trace *zap.SugaredLogger

	// jobs is consumed by the pipeline goroutine.
	jobs chan func(context.Context)
	// stopped is closed when the pipeline goroutine exits.
	stopped chan struct{}

	// mu protects the fields below.
	mu sync.RWMutex
	// lastDetection is the most recent trusted call.
	lastDetection *domain.Detection
	// hinted holds unmonitored call-capable sources already reported.
	hinted map[string]struct{}
}

// dependencies bundles the collaborators of the service.
type dependencies struct {
	contacts   contacts.Repository
	classifier *classifier.Classifier
	override   Overrider
	alerts     Alerter
	banner     Notifier
	feeds      []Feed
	trace      *zap.SugaredLogger
}

func newService(deps *dependencies) *service {
	trace := deps.trace
	if trace == nil {
		trace = zap.NewNop().Sugar()
	}

	clf := deps.classifier
	if clf == nil {
		clf = classifier.New(nil)
	}

	return &service{
		contacts:   deps.contacts,
		classifier: clf,
		override:   deps.override,
		alerts:     deps.alerts,
		banner:     deps.banner,
		feeds:      deps.feeds,
		trace:      trace,
		jobs:       make(chan func(context.Context), pipelineCapacity),
		stopped:    make(chan struct{}),
		hinted:     make(map[string]struct{}),
	}
}

// runPipeline executes queued jobs one at a time until ctx ends.
// The running alert is stopped on the way out.
func (s *service) runPipeline(ctx context.Context) {
	defer close(s.stopped)

	for {
		select {
		case <-ctx.Done():
			s.alerts.Stop(context.WithoutCancel(ctx))

			return
		case job := <-s.jobs:
			job(ctx)
		}
	}
}

// submit queues a job without waiting. It reports false when the queue is full.
func (s *service) submit(job func(context.Context)) bool {
	select {
	case s.jobs <- job:
		return true
	default:
		return false
	}
}

// call queues a job and waits for its result.
func call[T any](ctx context.Context, s *service, job func(context.Context) T) (T, error) {
	var zero T

	result := make(chan T, 1)
	wrapped := func(pipelineCtx context.Context) {
		// Nobody waits for the result of an abandoned request.
		if ctx.Err() != nil {
			return
		}

		result <- job(pipelineCtx)
	}

	select {
	case s.jobs <- wrapped:
	case <-s.stopped:
		return zero, errPipelineStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case value := <-result:
		return value, nil
	case <-s.stopped:
		return zero, errPipelineStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// HandleNotification classifies the event and, on a trusted call, queues
// the response on the pipeline. It never blocks on the pipeline.
func (s *service) HandleNotification(ctx context.Context, event *domain.NotificationEvent) domain.Verdict {
	if event == nil {
		return domain.Verdict{}
	}

	s.trace.Debugw("notification",
		"source", event.Source,
		"category", event.Category,
		"title", event.Title,
		"body", event.Body,
	)

	if !s.monitoringEnabled(ctx) {
		return domain.Verdict{}
	}

	if !s.classifier.Monitors(event.Source) {
		s.hintUnmonitored(ctx, event.Source)

		return domain.Verdict{}
	}

	list, err := s.contacts.List(ctx)
	if err != nil {
		logger.Errorf(ctx, "Failed to read trusted contacts: %v", err)
	}

	verdict := s.classifier.Classify(event, list)
	if !verdict.IsIncomingCall {
		return verdict
	}

	signals := s.classifier.Signals(event)
	logger.DebugKV(ctx, "Incoming call detected",
		"source", event.Source,
		"category_signal", signals.Category,
		"template_signal", signals.Template,
		"text_signal", signals.Text,
		"matched", verdict.Matched(),
	)

	if !verdict.Matched() {
		return verdict
	}

	source := event.Source
	contact := *verdict.MatchedContact

	if !s.submit(func(ctx context.Context) { s.respond(ctx, source, contact) }) {
		logger.ErrorKV(ctx, "Notification pipeline is full, dropping trusted call", "source", source)
	}

	return verdict
}

// respond forces the host audible and starts the alert for a trusted call.
func (s *service) respond(ctx context.Context, source string, contact domain.TrustedContact) {
	ctx = logger.WithKV(ctx, "contact", contact.Name)

	logger.InfoKV(ctx, "Trusted contact is calling", "source", source)

	result := s.override.ForceAudible(ctx)

	status := s.alerts.Trigger(ctx, alert.Request{})
	if !status.Playing {
		logger.Error(ctx, "Alert could not be started")
	}

	if s.banner != nil {
		s.banner.Show(ctx, bannerTitle, contact.Name+" is calling")
	}

	s.mu.Lock()
	s.lastDetection = &domain.Detection{
		Source:  source,
		Contact: contact,
		At:      time.Now(),
		Audible: result.Audible(),
	}
	s.mu.Unlock()
}

// Trigger starts a manual alert on the pipeline.
func (s *service) Trigger(ctx context.Context, actor *domain.Actor, req alert.Request) domain.AlertStatus {
	logger.InfoKV(ctx, "Manual alert requested", "actor", actor, "voice", req.Voice, "preview", req.Preview)

	status, err := call(ctx, s, func(ctx context.Context) domain.AlertStatus {
		return s.alerts.Trigger(ctx, req)
	})
	if err != nil {
		logger.Warnf(ctx, "Manual alert not started: %v", err)

		return s.alerts.State().Snapshot()
	}

	return status
}

// Stop ends the running alert on the pipeline.
func (s *service) Stop(ctx context.Context, actor *domain.Actor) domain.AlertStatus {
	logger.InfoKV(ctx, "Alert stop requested", "actor", actor)

	_, err := call(ctx, s, func(ctx context.Context) struct{} {
		s.alerts.Stop(ctx)

		return struct{}{}
	})
	if err != nil {
		logger.Warnf(ctx, "Alert stop not queued: %v", err)
	}

	return s.alerts.State().Snapshot()
}

// Status reports the daemon state.
func (s *service) Status(ctx context.Context) (*domain.Status, error) {
	list, err := s.contacts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	monitoring, err := s.contacts.MonitoringEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("read monitoring state: %w", err)
	}

	status := &domain.Status{
		Alert:             s.alerts.State().Snapshot(),
		MonitoringEnabled: monitoring,
		ContactCount:      len(list),
		Feeds:             []domain.FeedStatus{{Name: grpcFeedName, Connected: true}},
	}

	for _, feed := range s.feeds {
		status.Feeds = append(status.Feeds, domain.FeedStatus{Name: feed.Name(), Connected: feed.Connected()})
	}

	s.mu.RLock()
	if s.lastDetection != nil {
		detection := *s.lastDetection
		status.LastDetection = &detection
	}
	s.mu.RUnlock()

	return status, nil
}

// ListContacts returns the trusted contacts and the monitoring switch.
func (s *service) ListContacts(ctx context.Context) ([]domain.TrustedContact, bool, error) {
	list, err := s.contacts.List(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("list contacts: %w", err)
	}

	monitoring, err := s.contacts.MonitoringEnabled(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("read monitoring state: %w", err)
	}

	return list, monitoring, nil
}

// AddContact stores a trusted contact.
func (s *service) AddContact(ctx context.Context, actor *domain.Actor, contact domain.TrustedContact) (bool, error) {
	changed, err := s.contacts.Add(ctx, contact)
	if err != nil {
		logger.Errorf(ctx, "Failed to add trusted contact: %v", err)

		return false, fmt.Errorf("add contact: %w", err)
	}

	logger.InfoKV(ctx, "Trusted contact added", "name", contact.Name, "changed", changed, "actor", actor)

	return changed, nil
}

// RemoveContact deletes a trusted contact.
func (s *service) RemoveContact(ctx context.Context, actor *domain.Actor, contact domain.TrustedContact) (bool, error) {
	changed, err := s.contacts.Remove(ctx, contact)
	if err != nil {
		logger.Errorf(ctx, "Failed to remove trusted contact: %v", err)

		return false, fmt.Errorf("remove contact: %w", err)
	}

	logger.InfoKV(ctx, "Trusted contact removed", "name", contact.Name, "changed", changed, "actor", actor)

	return changed, nil
}

// SetMonitoring persists the monitoring switch.
func (s *service) SetMonitoring(ctx context.Context, actor *domain.Actor, enabled bool) (bool, error) {
	if err := s.contacts.SetMonitoringEnabled(ctx, enabled); err != nil {
		logger.Errorf(ctx, "Failed to persist monitoring state: %v", err)

		return false, fmt.Errorf("set monitoring: %w", err)
	}

	logger.InfoKV(ctx, "Monitoring switched", "enabled", enabled, "actor", actor)

	return enabled, nil
}

// monitoringEnabled reads the switch. A failing store keeps monitoring on.
func (s *service) monitoringEnabled(ctx context.Context) bool {
	enabled, err := s.contacts.MonitoringEnabled(ctx)
	if err != nil {
		logger.Errorf(ctx, "Failed to read monitoring state, keeping it on: %v", err)

		return true
	}

	return enabled
}

// hintUnmonitored logs once per source that looks like a calling app but is
// not on the allow-list. The memory of reported sources is bounded by
// maxHintedSources and starts over when full.
func (s *service) hintUnmonitored(ctx context.Context, source string) {
	if !classifier.LooksCallCapable(source) {
		return
	}

	key := strings.ToLower(strings.TrimSpace(source))

	s.mu.Lock()
	_, seen := s.hinted[key]
	if !seen {
		if len(s.hinted) >= maxHintedSources {
			clear(s.hinted)
		}

		s.hinted[key] = struct{}{}
	}
	s.mu.Unlock()

	if !seen {
		logger.InfoKV(ctx, "Notifications from this app are not monitored; add it to monitored_sources to catch its calls",
			"source", source)
	}
}
