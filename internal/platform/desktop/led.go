package desktop

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Asami3315/Emergency-Ringer/internal/device"
)

// DefaultLEDRoot is the sysfs LED class directory.
const DefaultLEDRoot = "/sys/class/leds"

// LED is a sysfs LED class device.
type LED struct {
	dir string
}

// NewLED opens the LED called name under root.
func NewLED(root, name string) (*LED, error) {
	if name == "" {
		return nil, fmt.Errorf("no LED configured: %w", device.ErrUnavailable)
	}

	dir := filepath.Join(root, name)
	if _, err := os.Stat(filepath.Join(dir, "brightness")); err != nil {
		return nil, fmt.Errorf("LED %q: %w: %w", name, device.ErrUnavailable, err)
	}

	return &LED{dir: dir}, nil
}

// SetTorch implements alert.Torch.
func (l *LED) SetTorch(_ context.Context, on bool) error {
	value := "0"

	if on {
		brightness, err := l.maxBrightness()
		if err != nil {
			return err
		}

		value = strconv.Itoa(brightness)
	}

	return l.write("brightness", value)
}

// Vibrate implements alert.Vibrator for LED devices driven by the
// "transient" trigger, as vibration motors on Linux handsets are.
func (l *LED) Vibrate(_ context.Context, length time.Duration) error {
	if err := l.write("duration", strconv.FormatInt(length.Milliseconds(), 10)); err != nil {
		return err
	}

	return l.write("activate", "1")
}

// Cancel implements alert.Vibrator.
func (l *LED) Cancel() error {
	return l.write("activate", "0")
}

func (l *LED) maxBrightness() (int, error) {
	raw, err := os.ReadFile(filepath.Join(l.dir, "max_brightness"))
	if err != nil {
		return 0, fmt.Errorf("failed to read max brightness: %w", err)
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("%w: max_brightness %q", errUnexpectedOutput, raw)
	}

	return value, nil
}

func (l *LED) write(attribute, value string) error {
	path := filepath.Join(l.dir, attribute)

	//nolint:gosec // sysfs attributes have fixed permissions.
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
