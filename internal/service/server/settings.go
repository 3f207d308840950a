package server

import (
	"context"
	"sync"

	"github.com/Asami3315/Emergency-Ringer/internal/config"
	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
	"github.com/Asami3315/Emergency-Ringer/internal/logger"
)

// settingsFile serves alert settings re-read from the settings file on every
// trigger, so edits apply without a restart. A broken file keeps the last
// good settings.
type settingsFile struct {
	path string

	mu       sync.Mutex
	lastGood domain.AlertSettings
}

func newSettingsFile(path string, loaded *config.Config) *settingsFile {
	return &settingsFile{
		path:     path,
		lastGood: loaded.Alert,
	}
}

// AlertSettings implements alert.SettingsProvider.
func (f *settingsFile) AlertSettings() domain.AlertSettings {
	f.mu.Lock()
	defer f.mu.Unlock()

	cfg, err := config.LoadOrDefault(f.path)
	if err != nil {
		logger.Warnf(context.Background(), "Keeping previous alert settings: %v", err)

		return f.lastGood
	}

	f.lastGood = cfg.Alert

	return f.lastGood
}
