// Package common holds helpers shared by the ringer command-line tools.
//
// It provides a typed gRPC client for the ringer daemon with call timeouts
// and detects the current system actor (hostname/username) for audit logs.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
