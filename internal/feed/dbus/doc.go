// Package dbus feeds desktop notifications into the ringer.
//
// The Monitor becomes a monitor of the session bus for calls to
// org.freedesktop.Notifications.Notify, converts each call into a
// NotificationEvent and reconnects on a ticker when the bus goes away.
package dbus
