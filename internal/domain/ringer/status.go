package ringer

import "time"

// FeedStatus reports the lifecycle of one notification feed.
type FeedStatus struct {
	Name      string
	Connected bool
}

// Detection records the last trusted incoming call.
type Detection struct {
	// Source is the app that posted the call notification.
	Source string
	// Contact is the trusted contact that matched.
	Contact TrustedContact
	// At is when the call was detected.
	At time.Time
	// Audible reports whether every override step succeeded.
	Audible bool
}

// Status is the daemon state reported to the control plane.
type Status struct {
	Alert             AlertStatus
	MonitoringEnabled bool
	ContactCount      int
	Feeds             []FeedStatus
	LastDetection     *Detection
}
