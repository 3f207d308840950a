// Package contacts persists the trusted-contact list and the monitoring
// toggle.
//
// The FileRepository stores both as protobuf JSON (protojson over a
// structpb.Struct) so the file has the same shape as the control-plane
// messages, and exposes a Repository interface the daemon depends on.
package contacts
