package desktop

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/Asami3315/Emergency-Ringer/internal/device"
	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

const (
	pactlCommand = "pactl"
	defaultSink  = "@DEFAULT_SINK@"
	// maxVolumePercent is the loudest level set without amplification.
	maxVolumePercent = 100
)

var errUnexpectedOutput = errors.New("unexpected command output")

// Audio is the AudioService of a PulseAudio or PipeWire host.
// A desktop has a single output, so every stream maps onto the default sink
// and the ringer mode onto its mute switch.
type Audio struct {
	runner    Runner
	processes ProcessLister
}

// NewAudio creates the audio service. Nil arguments use the real system.
func NewAudio(runner Runner, processes ProcessLister) *Audio {
	if runner == nil {
		runner = ExecRunner{}
	}

	if processes == nil {
		processes = ps.Processes
	}

	return &Audio{
		runner:    runner,
		processes: processes,
	}
}

// RingerMode implements device.AudioService.
func (a *Audio) RingerMode(ctx context.Context) (domain.RingerMode, error) {
	out, err := a.pactl(ctx, "get-sink-mute", defaultSink)
	if err != nil {
		return domain.RingerUnknown, err
	}

	muted, err := parseMute(out)
	if err != nil {
		return domain.RingerUnknown, err
	}

	if muted {
		return domain.RingerSilent, nil
	}

	return domain.RingerNormal, nil
}

// SetRingerMode implements device.AudioService. Vibrate mutes the sink.
func (a *Audio) SetRingerMode(ctx context.Context, mode domain.RingerMode) error {
	mute := "1"
	if mode == domain.RingerNormal {
		mute = "0"
	}

	_, err := a.pactl(ctx, "set-sink-mute", defaultSink, mute)

	return err
}

// Unmute implements device.AudioService.
func (a *Audio) Unmute(ctx context.Context, _ domain.Stream) error {
	_, err := a.pactl(ctx, "set-sink-mute", defaultSink, "0")

	return err
}

// Volume implements device.AudioService. The level is in percent.
func (a *Audio) Volume(ctx context.Context, _ domain.Stream) (int, error) {
	out, err := a.pactl(ctx, "get-sink-volume", defaultSink)
	if err != nil {
		return 0, err
	}

	return parseVolume(out)
}

// MaxVolume implements device.AudioService.
func (a *Audio) MaxVolume(ctx context.Context, _ domain.Stream) (int, error) {
	if err := a.ensureServer(); err != nil {
		return 0, err
	}

	return maxVolumePercent, nil
}

// SetVolume implements device.AudioService.
func (a *Audio) SetVolume(ctx context.Context, _ domain.Stream, volume int) error {
	volume = min(max(volume, 0), maxVolumePercent)

	_, err := a.pactl(ctx, "set-sink-volume", defaultSink, strconv.Itoa(volume)+"%")

	return err
}

func (a *Audio) pactl(ctx context.Context, args ...string) (string, error) {
	if err := a.ensureServer(); err != nil {
		return "", err
	}

	out, err := a.runner.Output(ctx, pactlCommand, args...)
	if err != nil {
		return "", err
	}

	return string(out), nil
}

func (a *Audio) ensureServer() error {
	running, err := soundServerRunning(a.processes)
	if err != nil {
		return err
	}

	if !running {
		return fmt.Errorf("no sound server running: %w", device.ErrUnavailable)
	}

	return nil
}

// parseMute reads the output of "pactl get-sink-mute", e.g. "Mute: no".
func parseMute(out string) (bool, error) {
	_, value, found := strings.Cut(strings.TrimSpace(out), ":")
	if !found {
		return false, fmt.Errorf("%w: %q", errUnexpectedOutput, out)
	}

	switch strings.TrimSpace(value) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", errUnexpectedOutput, out)
	}
}

// parseVolume reads the output of "pactl get-sink-volume" and returns the
// loudest channel in percent.
func parseVolume(out string) (int, error) {
	loudest := -1

	for field := range strings.FieldsSeq(out) {
		percent, found := strings.CutSuffix(strings.TrimSuffix(field, ","), "%")
		if !found {
			continue
		}

		value, err := strconv.Atoi(percent)
		if err != nil {
			continue
		}

		loudest = max(loudest, value)
	}

	if loudest < 0 {
		return 0, fmt.Errorf("%w: %q", errUnexpectedOutput, out)
	}

	return loudest, nil
}
