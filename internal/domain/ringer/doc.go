// Package ringer contains the core domain types of the emergency ringer.
//
// It defines trusted contacts, inbound notification events and the verdict
// produced for them, the alert voices and settings, and the observable alert
// status. Clone helpers avoid leaking internal references between layers.
package ringer
