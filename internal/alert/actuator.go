package alert

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
	"github.com/Asami3315/Emergency-Ringer/internal/logger"
)

// Delays used when neither the request nor the settings carry a duration.
const (
	fallbackAutoStop = 30 * time.Second
	fallbackPreview  = 5 * time.Second
)

// Request describes one alert trigger.
type Request struct {
	// Voice overrides the configured voice unless VoiceNone.
	Voice domain.Voice
	// Duration overrides the auto-stop delay unless zero.
	Duration time.Duration
	// Preview suppresses vibration and strobe.
	Preview bool
}

// Actuator plays the alert. It is safe for concurrent use.
type Actuator struct {
	mu       sync.Mutex
	settings SettingsProvider
	devices  Devices
	state    *State
	session  *session
	// liveTasks counts running task goroutines.
	liveTasks atomic.Int32
}

// session is one running alert. It is only touched under Actuator.mu.
type session struct {
	id        string
	status    domain.AlertStatus
	volume    float64
	voice     *task
	playback  Playback
	vibration *task
	strobe    *task
	release   func()
	timer     *time.Timer
}

// NewActuator creates an idle actuator writing into state.
// A nil state gets a fresh one.
func NewActuator(settings SettingsProvider, devices Devices, state *State) *Actuator {
	if state == nil {
		state = NewState()
	}

	return &Actuator{
		settings: settings,
		devices:  devices,
		state:    state,
	}
}

// State returns the observable alert state.
func (a *Actuator) State() *State {
	return a.state
}

// IsPlaying reports whether an alert voice is sounding.
func (a *Actuator) IsPlaying() bool {
	return a.state.IsPlaying()
}

// Trigger stops any running alert and starts a new one.
// It returns the resulting status, which is idle when no voice could start.
func (a *Actuator) Trigger(ctx context.Context, req Request) domain.AlertStatus {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.teardownLocked(ctx)

	var settings domain.AlertSettings
	if a.settings != nil {
		settings = a.settings.AlertSettings()
	}

	voice := req.Voice
	if voice == domain.VoiceNone {
		voice = settings.Voice
	}

	if voice == domain.VoiceNone {
		voice = domain.VoiceRingtone
	}

	duration := autoStopDelay(req, &settings)

	sess := &session{
		id:     uuid.NewString(),
		volume: settings.Volume(),
	}

	// Session tasks outlive the request that started them.
	ctx = logger.WithKV(context.WithoutCancel(ctx), "session", sess.id)

	sess.status = domain.AlertStatus{
		SessionID: sess.id,
		Preview:   req.Preview,
		StartedAt: time.Now(),
	}

	a.acquireWake(ctx, sess, &settings)

	started := a.startVoice(ctx, sess, voice, &settings)
	if !started && voice == domain.VoiceRingtone {
		logger.Warn(ctx, "ringtone unavailable, falling back to beep")

		voice = domain.VoiceBeep
		started = a.startVoice(ctx, sess, voice, &settings)
	}

	if !started {
		logger.Error(ctx, "no alert voice could be started")
		a.releaseSession(ctx, sess)
		a.state.set(domain.AlertStatus{})

		return domain.AlertStatus{}
	}

	sess.status.Voice = voice
	sess.status.Playing = true

	if !req.Preview {
		if settings.Vibrate {
			a.startVibration(ctx, sess)
		}

		if settings.Strobe {
			a.startStrobe(ctx, sess)
		}
	}

	id := sess.id
	sess.timer = time.AfterFunc(duration, func() {
		a.expire(ctx, id)
	})
	sess.status.Deadline = sess.status.StartedAt.Add(duration)

	a.session = sess
	a.state.set(sess.status)

	logger.InfoKV(ctx, "alert started",
		"voice", voice,
		"preview", req.Preview,
		"auto_stop", duration,
		"vibrating", sess.status.Vibrating,
		"strobing", sess.status.Strobing,
	)

	return sess.status
}

// Stop ends the running alert. It is idempotent and never fails.
func (a *Actuator) Stop(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.teardownLocked(ctx)
}

// expire is the auto-stop timer callback.
func (a *Actuator) expire(ctx context.Context, id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil || a.session.id != id {
		return
	}

	logger.Info(ctx, "alert auto-stopped")
	a.teardownLocked(ctx)
}

// complete handles the ringtone ending on its own. The timer stays armed
// and finds no session when it fires.
func (a *Actuator) complete(ctx context.Context, id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil || a.session.id != id {
		return
	}

	logger.Info(ctx, "ringtone finished")

	sess := a.session
	a.session = nil
	a.releaseSession(ctx, sess)
	a.state.set(domain.AlertStatus{})
}

// ringtoneFailed replaces a ringtone that ended right after starting with
// the beep voice. Side-channels, wake hold and the timer keep running.
func (a *Actuator) ringtoneFailed(ctx context.Context, id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess := a.session
	if sess == nil || sess.id != id {
		return
	}

	logger.Warn(ctx, "ringtone stopped right after start, falling back to beep")

	sess.voice.stop()
	sess.voice = nil

	if sess.playback != nil {
		if err := safeCall(sess.playback.Stop); err != nil {
			logger.Warnf(ctx, "failed to stop playback: %v", err)
		}

		sess.playback = nil
	}

	if !a.startTones(ctx, sess, sess.volume, beepPattern) {
		logger.Error(ctx, "no alert voice could be started")
		a.teardownLocked(ctx)

		return
	}

	sess.status.Voice = domain.VoiceBeep
	a.state.set(sess.status)
}

// teardownLocked stops the current session, if any, and publishes idle.
func (a *Actuator) teardownLocked(ctx context.Context) {
	sess := a.session
	a.session = nil

	if sess != nil {
		if sess.timer != nil {
			sess.timer.Stop()
		}

		a.releaseSession(ctx, sess)
		logger.Debug(ctx, "alert stopped")
	}

	a.state.set(domain.AlertStatus{})
}

// releaseSession stops every task of the session and releases its resources.
func (a *Actuator) releaseSession(ctx context.Context, sess *session) {
	sess.vibration.stop()
	sess.strobe.stop()
	sess.voice.stop()

	if sess.playback != nil {
		if err := safeCall(sess.playback.Stop); err != nil {
			logger.Warnf(ctx, "failed to stop playback: %v", err)
		}

		sess.playback = nil
	}

	if sess.release != nil {
		if err := safeCall(func() error {
			sess.release()

			return nil
		}); err != nil {
			logger.Warnf(ctx, "failed to release wake lock: %v", err)
		}

		sess.release = nil
	}
}

func (a *Actuator) acquireWake(ctx context.Context, sess *session, settings *domain.AlertSettings) {
	if a.devices.WakeLock == nil {
		return
	}

	ceiling := settings.WakeCeiling
	if ceiling <= 0 {
		ceiling = time.Minute
	}

	var release func()

	err := safeCall(func() error {
		var err error

		release, err = a.devices.WakeLock.Acquire(ctx, ceiling)

		return err
	})
	if err != nil {
		logger.Warnf(ctx, "failed to acquire wake lock: %v", err)

		return
	}

	sess.release = release
}

func autoStopDelay(req Request, settings *domain.AlertSettings) time.Duration {
	if req.Duration > 0 {
		return req.Duration
	}

	if req.Preview {
		if settings.PreviewDuration > 0 {
			return settings.PreviewDuration
		}

		return fallbackPreview
	}

	if settings.AutoStop > 0 {
		return settings.AutoStop
	}

	return fallbackAutoStop
}
