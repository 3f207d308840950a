package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

// TestValidate checks required fields and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	// Missing address.
	cfg := new(Config)
	require.Error(t, Validate(cfg))

	// Bad address.
	cfg = &Config{ServerAddress: "bad:address"}
	require.Error(t, Validate(cfg))

	// Bad volume.
	cfg = &Config{ServerAddress: "127.0.0.1:0", Alert: domain.AlertSettings{VolumePercent: 150}}
	require.Error(t, Validate(cfg))

	// Custom ringtone without a file.
	cfg = &Config{
		ServerAddress: "127.0.0.1:0",
		Alert:         domain.AlertSettings{RingtoneSource: domain.RingtoneSourceCustom},
	}
	require.Error(t, Validate(cfg))

	// Unknown ringtone source.
	cfg = &Config{
		ServerAddress: "127.0.0.1:0",
		Alert:         domain.AlertSettings{RingtoneSource: "cloud"},
	}
	require.Error(t, Validate(cfg))

	// Unknown log level.
	cfg = &Config{ServerAddress: "127.0.0.1:0", LogLevel: "chatty"}
	require.Error(t, Validate(cfg))

	// Okay, defaults applied.
	cfg = &Config{ServerAddress: "127.0.0.1:0"}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, DefaultContactsFilename, cfg.ContactsFile)
	require.Equal(t, domain.VoiceRingtone, cfg.Alert.Voice)
	require.Equal(t, DefaultAutoStop, cfg.Alert.AutoStop)
	require.Equal(t, DefaultPreviewDuration, cfg.Alert.PreviewDuration)
	require.Equal(t, DefaultWakeCeiling, cfg.Alert.WakeCeiling)
	require.Equal(t, domain.RingtoneSourcePhone, cfg.Alert.RingtoneSource)
	require.Equal(t, DefaultPlayer, cfg.Desktop.Player)
	require.Equal(t, DefaultSettleDelay, cfg.Desktop.SettleDelay)
}

// TestDefault checks the defaults match the product behaviour.
func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.Equal(t, DefaultServerAddress, cfg.ServerAddress)
	require.Equal(t, 100, cfg.Alert.VolumePercent)
	require.True(t, cfg.Alert.Vibrate)
	require.False(t, cfg.Alert.Strobe)
	require.True(t, cfg.Desktop.DBusFeed)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := Default()
	cfg.ServerAddress = "127.0.0.1:50099"
	cfg.MonitoredSources = []string{"org.example.voip"}
	cfg.Alert.Voice = domain.VoiceSiren
	cfg.Alert.AutoStop = 45 * time.Second
	cfg.Alert.Strobe = true

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ServerAddress, loaded.ServerAddress)
	require.Equal(t, cfg.MonitoredSources, loaded.MonitoredSources)
	require.Equal(t, domain.VoiceSiren, loaded.Alert.Voice)
	require.Equal(t, 45*time.Second, loaded.Alert.AutoStop)
	require.True(t, loaded.Alert.Strobe)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_PartialFileKeepsDefaults checks that missing keys keep defaults.
func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("alert:\n  voice: beep\n"), DefaultFilePermissions))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultServerAddress, cfg.ServerAddress)
	require.Equal(t, domain.VoiceBeep, cfg.Alert.Voice)
	require.True(t, cfg.Alert.Vibrate)
}

// TestLoadOrDefault falls back to defaults for a missing file only.
func TestLoadOrDefault(t *testing.T) {
	t.Parallel()

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultServerAddress, cfg.ServerAddress)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("alert:\n  voice: trumpet\n"), DefaultFilePermissions))

	_, err = LoadOrDefault(bad)
	require.Error(t, err)
}
