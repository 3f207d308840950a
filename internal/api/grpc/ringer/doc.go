// Package ringer implements the gRPC transport of the ringer daemon.
//
// The emergencyringer.v1.RingerService messages are protobuf well-known
// types: requests and responses are google.protobuf.Struct documents,
// parameterless calls take google.protobuf.Empty and the monitoring switch
// takes google.protobuf.BoolValue. The requesting actor travels in call
// metadata. The package holds the service descriptor, a server that calls
// into a business-service interface, a client stub and the codecs between
// documents and domain types.
package ringer
