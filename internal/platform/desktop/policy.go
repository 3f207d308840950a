package desktop

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

const (
	gsettingsCommand    = "gsettings"
	notificationsSchema = "org.gnome.desktop.notifications"
	showBannersKey      = "show-banners"
)

// Policy is the PolicyService of a GNOME session. GNOME's "Do Not Disturb"
// switch is the inverse of the show-banners key, so an enabled switch reads
// as the priority filter.
type Policy struct {
	runner Runner
}

// NewPolicy creates the policy service. A nil runner uses os/exec.
func NewPolicy(runner Runner) *Policy {
	if runner == nil {
		runner = ExecRunner{}
	}

	return &Policy{runner: runner}
}

// AccessGranted implements device.PolicyService.
func (p *Policy) AccessGranted(ctx context.Context) (bool, error) {
	out, err := p.runner.Output(ctx, gsettingsCommand, "writable", notificationsSchema, showBannersKey)
	if err != nil {
		return false, err
	}

	return parseBool(string(out))
}

// InterruptionFilter implements device.PolicyService.
func (p *Policy) InterruptionFilter(ctx context.Context) (domain.InterruptionFilter, error) {
	out, err := p.runner.Output(ctx, gsettingsCommand, "get", notificationsSchema, showBannersKey)
	if err != nil {
		return domain.FilterUnknown, err
	}

	banners, err := parseBool(string(out))
	if err != nil {
		return domain.FilterUnknown, err
	}

	if banners {
		return domain.FilterAll, nil
	}

	return domain.FilterPriority, nil
}

// SetInterruptionFilter implements device.PolicyService.
func (p *Policy) SetInterruptionFilter(ctx context.Context, filter domain.InterruptionFilter) error {
	value := "false"
	if filter == domain.FilterAll {
		value = "true"
	}

	_, err := p.runner.Output(ctx, gsettingsCommand, "set", notificationsSchema, showBannersKey, value)

	return err
}

func parseBool(out string) (bool, error) {
	switch strings.TrimSpace(out) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", errUnexpectedOutput, out)
	}
}
