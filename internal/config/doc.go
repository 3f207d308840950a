// Package config defines the settings shared by the ringer daemon and the
// control CLI and provides helpers to load, validate and save them as YAML.
//
// Besides connection parameters it carries the alert settings store (voice,
// volume, auto-stop, side-channels, ringtone) and the desktop platform
// bindings.
package config
