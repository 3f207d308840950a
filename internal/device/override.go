package device

import (
	"context"
	"fmt"
	"time"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
	"github.com/Asami3315/Emergency-Ringer/internal/logger"
)

// Outcome is how one override step ended.
type Outcome string

const (
	// OutcomeApplied means the change verified on the first attempt.
	OutcomeApplied Outcome = "applied"
	// OutcomeRetried means the change verified after the single retry.
	OutcomeRetried Outcome = "retried"
	// OutcomeFailed means the change did not verify; it is accepted as best effort.
	OutcomeFailed Outcome = "failed"
	// OutcomeSkipped means the step could not run (no service or no permission).
	OutcomeSkipped Outcome = "skipped"
)

// Step names the override steps.
const (
	StepInterruptionFilter = "interruption_filter"
	StepRingerMode         = "ringer_mode"
	stepVolumePrefix       = "volume_"
)

// StepResult is the observable outcome of one step.
type StepResult struct {
	Name    string
	Outcome Outcome
	Err     error
}

// Result is the outcome of ForceAudible.
type Result struct {
	// Steps lists the step outcomes in execution order.
	Steps []StepResult
	// Before is the audio state captured before any change.
	Before *domain.AudioSnapshot
	// After is the audio state captured after the last step.
	After *domain.AudioSnapshot
}

// Step returns the result of the named step.
func (r *Result) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}

	return StepResult{}, false
}

// Audible reports whether every step that ran took effect.
func (r *Result) Audible() bool {
	for _, s := range r.Steps {
		if s.Outcome == OutcomeFailed {
			return false
		}
	}

	return true
}

// VolumeStep names the step raising stream s.
func VolumeStep(s domain.Stream) string {
	return stepVolumePrefix + s.String()
}

// Option configures an Override.
type Option func(*Override)

// WithSettleDelay sets the pause between a change and its verification.
func WithSettleDelay(d time.Duration) Option {
	return func(o *Override) {
		if d >= 0 {
			o.settle = d
		}
	}
}

// Override drives the device into an audible state.
// A nil service is treated as unavailable.
type Override struct {
	// policy controls Do-Not-Disturb; may be nil.
	policy PolicyService
	// audio controls ringer mode and volumes; may be nil.
	audio AudioService
	// settle is waited before each verification read.
	settle time.Duration
}

// defaultSettleDelay lets the platform process a change before it is read back.
const defaultSettleDelay = 50 * time.Millisecond

// NewOverride creates an Override over the given platform services.
func NewOverride(policy PolicyService, audio AudioService, opts ...Option) *Override {
	o := &Override{
		policy: policy,
		audio:  audio,
		settle: defaultSettleDelay,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// ForceAudible opens the interruption policy, sets the ringer to normal and
// raises every stream to its maximum. It is idempotent, never fails and
// never panics: each step is best effort and independent of the others.
func (o *Override) ForceAudible(ctx context.Context) *Result {
	ctx = logger.WithName(ctx, "override")

	result := &Result{
		Before: o.Snapshot(ctx),
	}

	result.Steps = append(result.Steps, o.openPolicy(ctx), o.normalRinger(ctx))

	for _, stream := range domain.Streams {
		result.Steps = append(result.Steps, o.maxVolume(ctx, stream))
	}

	result.After = o.Snapshot(ctx)

	for _, s := range result.Steps {
		if s.Outcome == OutcomeApplied {
			continue
		}

		logger.WarnKV(ctx, "Override step not applied cleanly", "step", s.Name, "outcome", s.Outcome, "error", s.Err)
	}

	logger.InfoKV(ctx, "Override complete",
		"audible", result.Audible(),
		"before", describe(result.Before),
		"after", describe(result.After),
	)

	return result
}

// openPolicy sets the interruption filter to let everything through.
func (o *Override) openPolicy(ctx context.Context) StepResult {
	if o.policy == nil {
		return skipped(StepInterruptionFilter, ErrUnavailable)
	}

	granted, err := safeBool(func() (bool, error) { return o.policy.AccessGranted(ctx) })
	if err != nil {
		return skipped(StepInterruptionFilter, err)
	}

	if !granted {
		return skipped(StepInterruptionFilter, ErrPermissionDenied)
	}

	return o.applyVerified(ctx, StepInterruptionFilter,
		func() error { return o.policy.SetInterruptionFilter(ctx, domain.FilterAll) },
		func() (bool, error) {
			filter, err := o.policy.InterruptionFilter(ctx)
			return filter == domain.FilterAll, err
		},
	)
}

// normalRinger unmutes the ring stream and sets the ringer mode to normal.
func (o *Override) normalRinger(ctx context.Context) StepResult {
	if o.audio == nil {
		return skipped(StepRingerMode, ErrUnavailable)
	}

	return o.applyVerified(ctx, StepRingerMode,
		func() error {
			if err := o.audio.Unmute(ctx, domain.StreamRing); err != nil {
				logger.DebugKV(ctx, "Unmute failed", "error", err)
			}

			return o.audio.SetRingerMode(ctx, domain.RingerNormal)
		},
		func() (bool, error) {
			mode, err := o.audio.RingerMode(ctx)
			return mode == domain.RingerNormal, err
		},
	)
}

// maxVolume raises one stream to its maximum level.
func (o *Override) maxVolume(ctx context.Context, stream domain.Stream) StepResult {
	name := VolumeStep(stream)

	if o.audio == nil {
		return skipped(name, ErrUnavailable)
	}

	maxLevel, err := safeInt(func() (int, error) { return o.audio.MaxVolume(ctx, stream) })
	if err != nil {
		return skipped(name, err)
	}

	return o.applyVerified(ctx, name,
		func() error { return o.audio.SetVolume(ctx, stream, maxLevel) },
		func() (bool, error) {
			level, err := o.audio.Volume(ctx, stream)
			return level >= maxLevel, err
		},
	)
}

// applyVerified runs apply, reads the result back, and retries exactly once
// when the read-back does not confirm the change.
func (o *Override) applyVerified(
	ctx context.Context,
	name string,
	apply func() error,
	verify func() (bool, error),
) StepResult {
	for attempt := range 2 {
		if err := safeCall(apply); err != nil {
			logger.DebugKV(ctx, "Override step apply failed", "step", name, "attempt", attempt+1, "error", err)
		}

		o.pause(ctx)

		ok, err := safeBool(verify)
		if err == nil && ok {
			if attempt == 0 {
				return StepResult{Name: name, Outcome: OutcomeApplied}
			}

			return StepResult{Name: name, Outcome: OutcomeRetried}
		}

		if attempt == 1 {
			if err == nil {
				err = ErrNotVerified
			}

			return StepResult{Name: name, Outcome: OutcomeFailed, Err: err}
		}
	}

	return StepResult{Name: name, Outcome: OutcomeFailed, Err: ErrNotVerified}
}

// pause waits the settle delay unless the context ends first.
func (o *Override) pause(ctx context.Context) {
	if o.settle <= 0 {
		return
	}

	timer := time.NewTimer(o.settle)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// skipped builds the result of a step that could not run.
func skipped(name string, err error) StepResult {
	return StepResult{Name: name, Outcome: OutcomeSkipped, Err: err}
}

// safeCall runs fn and turns a panic from a platform binding into an error.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrUnavailable, r)
		}
	}()

	return fn()
}

// safeBool runs fn and turns a panic into an error.
func safeBool(fn func() (bool, error)) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("%w: panic: %v", ErrUnavailable, r)
		}
	}()

	return fn()
}

// safeInt runs fn and turns a panic into an error.
func safeInt(fn func() (int, error)) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: panic: %v", ErrUnavailable, r)
		}
	}()

	return fn()
}
