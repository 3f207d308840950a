package alert

import (
	"context"
	"time"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

// MediaPlayer plays sound files.
type MediaPlayer interface {
	// Play starts looping playback of source at volume (0..1). The playback
	// ends when it is stopped or when the sound can no longer be played.
	Play(ctx context.Context, source string, volume float64) (Playback, error)
}

// Playback is one running media playback.
type Playback interface {
	// Done is closed when playback ends on its own.
	Done() <-chan struct{}
	// Stop ends playback and releases it.
	Stop() error
}

// ToneGenerator plays synthesized tones.
type ToneGenerator interface {
	// Tone plays a tone of the given frequency and length at volume (0..1).
	Tone(ctx context.Context, frequency float64, length time.Duration, volume float64) error
}

// Vibrator drives the vibration motor.
type Vibrator interface {
	// Vibrate starts one vibration pulse of the given length.
	Vibrate(ctx context.Context, length time.Duration) error
	// Cancel stops any running pulse.
	Cancel() error
}

// Torch switches the camera flash or an equivalent light.
type Torch interface {
	SetTorch(ctx context.Context, on bool) error
}

// WakeLock keeps the host from suspending while an alert runs.
type WakeLock interface {
	// Acquire holds the wake lock for at most ceiling and returns its release.
	Acquire(ctx context.Context, ceiling time.Duration) (func(), error)
}

// SettingsProvider is the settings store view used on every trigger.
type SettingsProvider interface {
	AlertSettings() domain.AlertSettings
}

// StaticSettings serves fixed settings.
type StaticSettings domain.AlertSettings

// AlertSettings implements SettingsProvider.
func (s StaticSettings) AlertSettings() domain.AlertSettings {
	return domain.AlertSettings(s)
}

// Devices bundles the platform alert services. Nil members are unavailable.
type Devices struct {
	Player   MediaPlayer
	Tones    ToneGenerator
	Vibrator Vibrator
	Torch    Torch
	WakeLock WakeLock
	// DefaultRingtone is the platform ringtone used by the phone source.
	DefaultRingtone string
}
