package device

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

// Snapshot captures the readable audio state. Unreadable values are left at
// their unknown defaults; it never fails.
func (o *Override) Snapshot(ctx context.Context) *domain.AudioSnapshot {
	snapshot := &domain.AudioSnapshot{
		Levels: make(map[domain.Stream]domain.StreamLevel, len(domain.Streams)),
	}

	if o.policy != nil {
		if granted, err := safeBool(func() (bool, error) { return o.policy.AccessGranted(ctx) }); err == nil {
			snapshot.PolicyAccess = granted
		}

		_ = safeCall(func() error { //nolint:errcheck // Unreadable filter stays unknown.
			filter, err := o.policy.InterruptionFilter(ctx)
			if err == nil {
				snapshot.Filter = filter
			}

			return err
		})
	}

	if o.audio == nil {
		return snapshot
	}

	_ = safeCall(func() error { //nolint:errcheck // Unreadable mode stays unknown.
		mode, err := o.audio.RingerMode(ctx)
		if err == nil {
			snapshot.RingerMode = mode
		}

		return err
	})

	for _, stream := range domain.Streams {
		level, err := safeInt(func() (int, error) { return o.audio.Volume(ctx, stream) })
		if err != nil {
			continue
		}

		maxLevel, err := safeInt(func() (int, error) { return o.audio.MaxVolume(ctx, stream) })
		if err != nil {
			continue
		}

		snapshot.Levels[stream] = domain.StreamLevel{Volume: level, Max: maxLevel}
	}

	return snapshot
}

// describe renders a snapshot on one log line.
func describe(s *domain.AudioSnapshot) string {
	if s == nil {
		return "<none>"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "dnd=%s access=%t ringer=%s", s.Filter, s.PolicyAccess, s.RingerMode)

	for _, stream := range domain.Streams {
		if level, ok := s.Levels[stream]; ok {
			fmt.Fprintf(&b, " %s=%d/%d", stream, level.Volume, level.Max)
		}
	}

	return b.String()
}
