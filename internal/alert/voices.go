package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
	"github.com/Asami3315/Emergency-Ringer/internal/logger"
)

// Voice and side-channel cadences.
const (
	sirenHighHz    = 960
	sirenLowHz     = 770
	sirenStep      = 400 * time.Millisecond
	beepHz         = 1000
	beepLength     = 200 * time.Millisecond
	beepPeriod     = 500 * time.Millisecond
	vibrationOn    = time.Second
	vibrationOff   = 500 * time.Millisecond
	strobeInterval = 300 * time.Millisecond
	// ringtoneMinPlay is how long a ringtone must run before its end counts
	// as natural completion rather than a failed start.
	ringtoneMinPlay = time.Second
)

// errPanic wraps a recovered panic from a platform call.
var errPanic = errors.New("platform call panicked")

// task is a cancellable goroutine.
type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// startTask runs fn in its own goroutine until ctx is canceled or fn returns.
func (a *Actuator) startTask(ctx context.Context, fn func(ctx context.Context)) *task {
	ctx, cancel := context.WithCancel(ctx)
	t := &task{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	a.liveTasks.Add(1)

	go func() {
		defer close(t.done)
		defer a.liveTasks.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf(ctx, "alert task panicked: %v", r)
			}
		}()

		fn(ctx)
	}()

	return t
}

// stop cancels the task and waits for it to exit. Nil tasks are ignored.
func (t *task) stop() {
	if t == nil {
		return
	}

	t.cancel()
	<-t.done
}

// startVoice starts the given voice and reports whether it runs.
func (a *Actuator) startVoice(
	ctx context.Context,
	sess *session,
	voice domain.Voice,
	settings *domain.AlertSettings,
) bool {
	switch voice {
	case domain.VoiceRingtone:
		return a.startRingtone(ctx, sess, settings)
	case domain.VoiceSiren:
		return a.startTones(ctx, sess, settings.Volume(), sirenPattern)
	case domain.VoiceBeep:
		return a.startTones(ctx, sess, settings.Volume(), beepPattern)
	default:
		return false
	}
}

func (a *Actuator) startRingtone(ctx context.Context, sess *session, settings *domain.AlertSettings) bool {
	if a.devices.Player == nil {
		return false
	}

	source := a.devices.DefaultRingtone
	if settings.RingtoneSource == domain.RingtoneSourceCustom && settings.RingtonePath != "" {
		source = settings.RingtonePath
	}

	if source == "" {
		logger.Warn(ctx, "no ringtone configured")

		return false
	}

	var playback Playback

	err := safeCall(func() error {
		var err error

		playback, err = a.devices.Player.Play(ctx, source, settings.Volume())

		return err
	})
	if err != nil || playback == nil {
		logger.Warnf(ctx, "failed to play ringtone %q: %v", source, err)

		return false
	}

	sess.playback = playback
	id := sess.id
	done := playback.Done()
	started := time.Now()

	sess.voice = a.startTask(ctx, func(ctx context.Context) {
		select {
		case <-ctx.Done():
		case <-done:
			// The handlers take the actuator lock and wait for this task,
			// so they have to run outside of it.
			if time.Since(started) < ringtoneMinPlay {
				go a.ringtoneFailed(context.WithoutCancel(ctx), id)

				return
			}

			go a.complete(context.WithoutCancel(ctx), id)
		}
	})

	return true
}

// tonePattern returns the tone played at step and the time until the next one.
type tonePattern func(step int) (frequency float64, length, period time.Duration)

func sirenPattern(step int) (float64, time.Duration, time.Duration) {
	if step%2 == 0 {
		return sirenHighHz, sirenStep, sirenStep
	}

	return sirenLowHz, sirenStep, sirenStep
}

func beepPattern(int) (float64, time.Duration, time.Duration) {
	return beepHz, beepLength, beepPeriod
}

func (a *Actuator) startTones(ctx context.Context, sess *session, volume float64, pattern tonePattern) bool {
	tones := a.devices.Tones
	if tones == nil {
		return false
	}

	sess.voice = a.startTask(ctx, func(ctx context.Context) {
		reported := false

		for step := 0; ; step++ {
			frequency, length, period := pattern(step)
			started := time.Now()

			err := safeCall(func() error {
				return tones.Tone(ctx, frequency, length, volume)
			})
			if err != nil && !reported && ctx.Err() == nil {
				logger.Warnf(ctx, "tone generator failed: %v", err)

				reported = true
			}

			if !sleep(ctx, period-time.Since(started)) {
				return
			}
		}
	})

	return true
}

func (a *Actuator) startVibration(ctx context.Context, sess *session) {
	vibrator := a.devices.Vibrator
	if vibrator == nil {
		logger.Debug(ctx, "no vibrator available")

		return
	}

	sess.vibration = a.startTask(ctx, func(ctx context.Context) {
		defer func() {
			if err := safeCall(vibrator.Cancel); err != nil {
				logger.Warnf(ctx, "failed to cancel vibration: %v", err)
			}
		}()

		for {
			err := safeCall(func() error {
				return vibrator.Vibrate(ctx, vibrationOn)
			})
			if err != nil {
				logger.Warnf(ctx, "vibration stopped: %v", err)

				return
			}

			if !sleep(ctx, vibrationOn+vibrationOff) {
				return
			}
		}
	})
	sess.status.Vibrating = true
}

func (a *Actuator) startStrobe(ctx context.Context, sess *session) {
	torch := a.devices.Torch
	if torch == nil {
		logger.Debug(ctx, "no torch available")

		return
	}

	sess.strobe = a.startTask(ctx, func(ctx context.Context) {
		off := context.WithoutCancel(ctx)

		defer func() {
			_ = safeCall(func() error {
				return torch.SetTorch(off, false)
			})
		}()

		for on := true; ; on = !on {
			err := safeCall(func() error {
				return torch.SetTorch(ctx, on)
			})
			if err != nil {
				logger.Warnf(ctx, "strobe stopped: %v", err)

				return
			}

			if !sleep(ctx, strobeInterval) {
				return
			}
		}
	})
	sess.status.Strobing = true
}

// sleep waits for d and reports false when ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// safeCall runs fn and turns a panic into an error.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()

	return fn()
}
