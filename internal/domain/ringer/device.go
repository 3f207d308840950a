package ringer

import "maps"

// InterruptionFilter is the Do-Not-Disturb policy level.
type InterruptionFilter int

const (
	// FilterUnknown is reported when the level cannot be read.
	FilterUnknown InterruptionFilter = iota
	// FilterAll lets every interruption through (DND off).
	FilterAll
	// FilterPriority lets only priority interruptions through.
	FilterPriority
	// FilterAlarms lets only alarms through.
	FilterAlarms
	// FilterNone silences everything.
	FilterNone
)

// String names the filter level.
func (f InterruptionFilter) String() string {
	switch f {
	case FilterAll:
		return "off"
	case FilterPriority:
		return "priority"
	case FilterAlarms:
		return "alarms"
	case FilterNone:
		return "total-silence"
	default:
		return "unknown"
	}
}

// RingerMode is the platform audio mode.
type RingerMode int

const (
	// RingerUnknown is reported when the mode cannot be read.
	RingerUnknown RingerMode = iota
	// RingerSilent mutes ringing.
	RingerSilent
	// RingerVibrate only vibrates.
	RingerVibrate
	// RingerNormal rings audibly.
	RingerNormal
)

// String names the ringer mode.
func (m RingerMode) String() string {
	switch m {
	case RingerSilent:
		return "silent"
	case RingerVibrate:
		return "vibrate"
	case RingerNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// Stream is an audio output channel.
type Stream int

const (
	// StreamRing carries ringing.
	StreamRing Stream = iota
	// StreamVoiceCall carries call audio.
	StreamVoiceCall
	// StreamNotification carries notification sounds.
	StreamNotification
	// StreamAlarm carries the alert voice so it stays audible when ring changes are denied.
	StreamAlarm
)

// Streams lists every stream in override order.
var Streams = []Stream{StreamRing, StreamVoiceCall, StreamNotification, StreamAlarm} //nolint:gochecknoglobals // Fixed table.

// String names the stream.
func (s Stream) String() string {
	switch s {
	case StreamRing:
		return "ring"
	case StreamVoiceCall:
		return "voice_call"
	case StreamNotification:
		return "notification"
	case StreamAlarm:
		return "alarm"
	default:
		return "unknown"
	}
}

// StreamLevel is a volume reading.
type StreamLevel struct {
	Volume int
	Max    int
}

// AudioSnapshot is a diagnostic capture of the device audio state.
type AudioSnapshot struct {
	// RingerMode is the ringer mode at capture time.
	RingerMode RingerMode
	// Filter is the interruption filter at capture time.
	Filter InterruptionFilter
	// PolicyAccess reports whether the policy may be changed.
	PolicyAccess bool
	// Levels holds the readable stream volumes.
	Levels map[Stream]StreamLevel
}

// Clone returns a deep copy of the snapshot.
func (s *AudioSnapshot) Clone() *AudioSnapshot {
	if s == nil {
		return nil
	}

	cloned := *s
	cloned.Levels = maps.Clone(s.Levels)

	return &cloned
}
