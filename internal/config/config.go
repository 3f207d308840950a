package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
	"github.com/Asami3315/Emergency-Ringer/internal/logger"
)

// Config holds the settings of the ringer daemon and control CLI.
type Config struct {
	// ServerAddress is the gRPC control-plane address.
	ServerAddress string `yaml:"server_addr"`
	// ContactsFile is where trusted contacts and the monitoring toggle are stored.
	ContactsFile string `yaml:"contacts_file"`
	// DebugLogFile optionally mirrors log output into a file.
	DebugLogFile string `yaml:"debug_log_file,omitempty"`
	// LogLevel is the minimum level of emitted log lines.
	LogLevel string `yaml:"log_level"`
	// NotificationLogLevel gates the per-notification trace, which carries
	// message text. Empty means info, hiding the trace even at debug level.
	NotificationLogLevel string `yaml:"notification_log_level,omitempty"`
	// Timeout is the duration for RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// MonitoredSources is the allow-list of call-capable notification sources.
	// Empty means the built-in list.
	MonitoredSources []string `yaml:"monitored_sources,omitempty"`
	// Alert holds the alert settings store.
	Alert domain.AlertSettings `yaml:"alert"`
	// Desktop binds the platform services of a Linux host.
	Desktop Desktop `yaml:"desktop"`
}

// Desktop configures the Linux platform services.
type Desktop struct {
	// DBusFeed enables the session-bus notification monitor.
	DBusFeed bool `yaml:"dbus_feed"`
	// Banner posts a desktop notification when a trusted call is detected.
	Banner bool `yaml:"banner"`
	// Player is the audio playback command used for the ringtone voice.
	Player string `yaml:"player"`
	// DefaultRingtone is the platform ringtone used when no custom one is set.
	DefaultRingtone string `yaml:"default_ringtone"`
	// StrobeLED is the sysfs LED name driven by the strobe, empty disables it.
	StrobeLED string `yaml:"strobe_led,omitempty"`
	// VibratorLED is the sysfs LED name of the vibration motor, empty disables it.
	VibratorLED string `yaml:"vibrator_led,omitempty"`
	// SettleDelay is waited before verifying a device-state change.
	SettleDelay time.Duration `yaml:"settle_delay"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "emergency-ringer-settings.yaml"

	// DefaultContactsFilename is the default filename for trusted contacts.
	DefaultContactsFilename = "emergency-ringer-contacts.json"

	// DefaultServerAddress is the loopback control-plane address.
	DefaultServerAddress = "127.0.0.1:50061"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultAutoStop ends an unattended alert.
	DefaultAutoStop = 30 * time.Second

	// DefaultPreviewDuration is the length of a settings preview.
	DefaultPreviewDuration = 5 * time.Second

	// DefaultWakeCeiling bounds the wake hold independently of alert length.
	DefaultWakeCeiling = 60 * time.Second

	// DefaultSettleDelay lets the platform apply a change before it is read back.
	DefaultSettleDelay = 50 * time.Millisecond

	// DefaultPlayer is the PulseAudio/PipeWire playback tool.
	DefaultPlayer = "paplay"

	// DefaultRingtone is the freedesktop sound theme incoming-call sound.
	DefaultRingtone = "/usr/share/sounds/freedesktop/stereo/phone-incoming-call.oga"

	// DefaultFilePermissions is the default file permission for settings files.
	DefaultFilePermissions = 0o600

	// maxVolumePercent is the upper bound of the volume setting.
	maxVolumePercent = 100
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerAddressRequired is returned when server address is missing.
	errServerAddressRequired = errors.New("server address must be provided")
	// errBadVolume is returned for a volume outside 0-100.
	errBadVolume = errors.New("volume percent must be between 0 and 100")
	// errBadRingtoneSource is returned for an unknown ringtone source.
	errBadRingtoneSource = errors.New("unknown ringtone source")
	// errCustomRingtoneRequired is returned when a custom source has no file.
	errCustomRingtoneRequired = errors.New("custom ringtone source requires ringtone_path")
	// errBadLogLevel is returned for an unknown log level.
	errBadLogLevel = errors.New("unknown log level")
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		ServerAddress: DefaultServerAddress,
		Alert: domain.AlertSettings{
			Voice:          domain.VoiceRingtone,
			VolumePercent:  maxVolumePercent,
			Vibrate:        true,
			Strobe:         false,
			RingtoneSource: domain.RingtoneSourcePhone,
		},
		Desktop: Desktop{
			DBusFeed: true,
			Banner:   true,
		},
	}

	// Defaults cannot fail validation.
	_ = Validate(cfg) //nolint:errcheck // Validated above by construction.

	return cfg
}

// Load reads configuration from the provided path and validates it.
// Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads the file at path, falling back to defaults when it
// does not exist yet.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills in defaults for optional ones.
//
//nolint:cyclop // A flat list of field checks reads best.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ServerAddress == "" {
		return errServerAddressRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server address: %w", err)
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errBadLogLevel, cfg.LogLevel)
	}

	if _, ok := logger.ParseLogLevel(cfg.NotificationLogLevel); !ok {
		return fmt.Errorf("%w: %q", errBadLogLevel, cfg.NotificationLogLevel)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.ContactsFile == "" {
		cfg.ContactsFile = DefaultContactsFilename
	}

	if err := validateAlert(&cfg.Alert); err != nil {
		return err
	}

	if cfg.Desktop.Player == "" {
		cfg.Desktop.Player = DefaultPlayer
	}

	if cfg.Desktop.DefaultRingtone == "" {
		cfg.Desktop.DefaultRingtone = DefaultRingtone
	}

	if cfg.Desktop.SettleDelay < 0 {
		cfg.Desktop.SettleDelay = 0
	} else if cfg.Desktop.SettleDelay == 0 {
		cfg.Desktop.SettleDelay = DefaultSettleDelay
	}

	return nil
}

// validateAlert checks the alert settings and applies their defaults.
func validateAlert(alert *domain.AlertSettings) error {
	if alert.VolumePercent < 0 || alert.VolumePercent > maxVolumePercent {
		return fmt.Errorf("%w: %d", errBadVolume, alert.VolumePercent)
	}

	if alert.Voice == domain.VoiceNone {
		alert.Voice = domain.VoiceRingtone
	}

	if alert.AutoStop <= 0 {
		alert.AutoStop = DefaultAutoStop
	}

	if alert.PreviewDuration <= 0 {
		alert.PreviewDuration = DefaultPreviewDuration
	}

	if alert.WakeCeiling <= 0 {
		alert.WakeCeiling = DefaultWakeCeiling
	}

	switch alert.RingtoneSource {
	case "":
		alert.RingtoneSource = domain.RingtoneSourcePhone
	case domain.RingtoneSourcePhone:
	case domain.RingtoneSourceCustom:
		if alert.RingtonePath == "" {
			return errCustomRingtoneRequired
		}
	default:
		return fmt.Errorf("%w: %q", errBadRingtoneSource, alert.RingtoneSource)
	}

	return nil
}
