// Package control implements the ringerctl operations.
//
// Each operation is a Command run against a connected Session: manual
// trigger and stop, status, notification injection, trusted-contact
// management and the monitoring switch. Results are printed as short
// human-readable lines.
package control
