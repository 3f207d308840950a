// Package alert drives the physical alert of an emergency call.
//
// The Actuator owns the single alert session. Trigger always tears the
// previous session down before starting one voice (ringtone, siren or beep),
// the optional vibration and strobe side-channels and the auto-stop timer.
// Stop, natural completion of the ringtone and the auto-stop timer all end in
// the same teardown. Every operation is serialized on one mutex.
//
// The observable status lives in State, which the actuator writes and any
// number of readers poll or subscribe to.
package alert
