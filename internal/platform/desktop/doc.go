// Package desktop implements the platform services of a Linux host.
//
// Audio goes through pactl against the default PulseAudio or PipeWire sink,
// the interruption policy maps onto the GNOME notification banner switch,
// tones and the desktop banner use beeep, and the strobe and vibration motor
// are sysfs LED class devices.
package desktop
