package desktop

import (
	"context"

	"github.com/gen2brain/beeep"

	"github.com/Asami3315/Emergency-Ringer/internal/logger"
)

// appName is shown as the sender of desktop notifications.
const appName = "Emergency Ringer"

// Banner posts desktop notifications.
type Banner struct {
	notify func(title, message string, icon any) error
}

// NewBanner creates the banner poster.
func NewBanner() *Banner {
	beeep.AppName = appName

	return &Banner{notify: beeep.Notify}
}

// Show posts a notification. Failures are logged only.
func (b *Banner) Show(ctx context.Context, title, message string) {
	if err := b.notify(title, message, ""); err != nil {
		logger.Warnf(ctx, "failed to show banner: %v", err)
	}
}
