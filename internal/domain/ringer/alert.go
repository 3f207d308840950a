package ringer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Voice is the sound pattern used for an alert.
type Voice int

const (
	// VoiceNone means no voice is active, or "use the configured voice" in requests.
	VoiceNone Voice = iota
	// VoiceRingtone plays a looping ringtone.
	VoiceRingtone
	// VoiceSiren alternates two pitches.
	VoiceSiren
	// VoiceBeep repeats a single short pulse.
	VoiceBeep
)

// errUnknownVoice is returned when a voice name cannot be parsed.
var errUnknownVoice = errors.New("unknown alert voice")

// ParseVoice converts a voice name into a Voice.
func ParseVoice(s string) (Voice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return VoiceNone, nil
	case "ringtone":
		return VoiceRingtone, nil
	case "siren":
		return VoiceSiren, nil
	case "beep":
		return VoiceBeep, nil
	default:
		return VoiceNone, fmt.Errorf("%w: %q", errUnknownVoice, s)
	}
}

// String returns the voice name.
func (v Voice) String() string {
	switch v {
	case VoiceRingtone:
		return "ringtone"
	case VoiceSiren:
		return "siren"
	case VoiceBeep:
		return "beep"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Voice) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Voice) UnmarshalText(text []byte) error {
	parsed, err := ParseVoice(string(text))
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}

// RingtoneSource selects where the ringtone voice takes its sound from.
type RingtoneSource string

const (
	// RingtoneSourcePhone uses the platform default ringtone.
	RingtoneSourcePhone RingtoneSource = "phone"
	// RingtoneSourceCustom uses the user supplied sound file.
	RingtoneSourceCustom RingtoneSource = "custom"
)

// AlertSettings is the settings-store view consumed by the alert actuator.
type AlertSettings struct {
	// Voice is the configured alert voice.
	Voice Voice `yaml:"voice"`
	// VolumePercent scales the voice output, 0-100.
	VolumePercent int `yaml:"volume_percent"`
	// AutoStop ends an unattended alert.
	AutoStop time.Duration `yaml:"auto_stop"`
	// PreviewDuration is used by preview triggers without an explicit duration.
	PreviewDuration time.Duration `yaml:"preview_duration"`
	// Vibrate enables the vibration side-channel.
	Vibrate bool `yaml:"vibrate"`
	// Strobe enables the torch strobe side-channel.
	Strobe bool `yaml:"strobe"`
	// RingtoneSource picks the platform or the custom ringtone.
	RingtoneSource RingtoneSource `yaml:"ringtone_source"`
	// RingtonePath is the custom ringtone file.
	RingtonePath string `yaml:"ringtone_path"`
	// WakeCeiling bounds how long the wake hold may be kept.
	WakeCeiling time.Duration `yaml:"wake_ceiling"`
}

// Volume returns the configured volume as a 0..1 factor.
func (s *AlertSettings) Volume() float64 {
	switch {
	case s.VolumePercent <= 0:
		return 0
	case s.VolumePercent >= 100:
		return 1
	default:
		return float64(s.VolumePercent) / 100
	}
}

// AlertStatus is an observation of the alert session.
// At most one session is active at a time.
type AlertStatus struct {
	// SessionID identifies the session, empty when idle.
	SessionID string
	// Voice is the voice currently sounding.
	Voice Voice
	// Playing is the single source of truth for "an alert is sounding".
	Playing bool
	// Vibrating reports the vibration side-channel.
	Vibrating bool
	// Strobing reports the strobe side-channel.
	Strobing bool
	// Preview marks a settings preview session.
	Preview bool
	// StartedAt is when the session started.
	StartedAt time.Time
	// Deadline is when the auto-stop timer fires.
	Deadline time.Time
}

// Active reports whether any alert modality is running.
func (s AlertStatus) Active() bool {
	return s.Playing || s.Vibrating || s.Strobing
}
