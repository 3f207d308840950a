package desktop

import (
	"context"

	"github.com/Asami3315/Emergency-Ringer/internal/alert"
	"github.com/Asami3315/Emergency-Ringer/internal/config"
	"github.com/Asami3315/Emergency-Ringer/internal/device"
	"github.com/Asami3315/Emergency-Ringer/internal/logger"
)

// Host bundles the platform services of the running desktop.
type Host struct {
	Audio  *Audio
	Policy *Policy
	Banner *Banner
	// Devices are the alert services. Missing hardware is left nil.
	Devices alert.Devices
}

// NewHost binds the platform services described by cfg.
func NewHost(ctx context.Context, cfg *config.Desktop) *Host {
	runner := ExecRunner{}

	host := &Host{
		Audio:  NewAudio(runner, nil),
		Policy: NewPolicy(runner),
		Devices: alert.Devices{
			Player:          NewPlayer(runner, cfg.Player),
			Tones:           NewTones(),
			WakeLock:        NewInhibitor(runner),
			DefaultRingtone: cfg.DefaultRingtone,
		},
	}

	if cfg.Banner {
		host.Banner = NewBanner()
	}

	if led, err := NewLED(DefaultLEDRoot, cfg.StrobeLED); err == nil {
		host.Devices.Torch = led
	} else if cfg.StrobeLED != "" {
		logger.Warnf(ctx, "strobe disabled: %v", err)
	}

	if led, err := NewLED(DefaultLEDRoot, cfg.VibratorLED); err == nil {
		host.Devices.Vibrator = led
	} else if cfg.VibratorLED != "" {
		logger.Warnf(ctx, "vibration disabled: %v", err)
	}

	return host
}

// Override returns the device-state override bound to this host.
func (h *Host) Override(opts ...device.Option) *device.Override {
	return device.NewOverride(h.Policy, h.Audio, opts...)
}

// Available reports whether the sound server can be reached.
func (h *Host) Available() error {
	return h.Audio.ensureServer()
}
