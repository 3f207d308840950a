// Package device forces the host out of silent and Do-Not-Disturb states.
//
// Override.ForceAudible opens the interruption policy, unmutes and sets the
// ringer to normal, and raises the ring, voice, notification and alarm
// streams to their maximum. Every step is read back and retried exactly once
// on mismatch; no step failure stops the later ones.
package device
