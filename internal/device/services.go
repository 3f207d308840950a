package device

import (
	"context"
	"errors"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

var (
	// ErrUnavailable is returned when a platform service is absent.
	ErrUnavailable = errors.New("service unavailable")
	// ErrPermissionDenied is returned when policy access has not been granted.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotVerified is returned when a change did not read back as applied.
	ErrNotVerified = errors.New("change not verified")
)

// PolicyService controls the interruption (Do-Not-Disturb) policy.
type PolicyService interface {
	AccessGranted(ctx context.Context) (bool, error)
	InterruptionFilter(ctx context.Context) (domain.InterruptionFilter, error)
	SetInterruptionFilter(ctx context.Context, filter domain.InterruptionFilter) error
}

// AudioService controls ringer mode and stream volumes.
type AudioService interface {
	RingerMode(ctx context.Context) (domain.RingerMode, error)
	SetRingerMode(ctx context.Context, mode domain.RingerMode) error
	Unmute(ctx context.Context, stream domain.Stream) error
	Volume(ctx context.Context, stream domain.Stream) (int, error)
	MaxVolume(ctx context.Context, stream domain.Stream) (int, error)
	SetVolume(ctx context.Context, stream domain.Stream, volume int) error
}
