package ringer

import (
	"context"

	"google.golang.org/grpc/metadata"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

// Metadata keys carrying the requesting actor.
const (
	metadataHostname = "x-ringer-actor-hostname"
	metadataUsername = "x-ringer-actor-username"
)

// WithActor attaches the actor to outgoing call metadata.
func WithActor(ctx context.Context, actor *domain.Actor) context.Context {
	if actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx,
		metadataHostname, actor.Hostname,
		metadataUsername, actor.Username,
	)
}

// ActorFromContext reads the actor from incoming call metadata.
// It returns nil when the caller did not identify itself.
func ActorFromContext(ctx context.Context) *domain.Actor {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}

	hostnames := md.Get(metadataHostname)
	usernames := md.Get(metadataUsername)

	if len(hostnames) == 0 && len(usernames) == 0 {
		return nil
	}

	actor := new(domain.Actor)
	if len(hostnames) > 0 {
		actor.Hostname = hostnames[0]
	}

	if len(usernames) > 0 {
		actor.Username = usernames[0]
	}

	return actor
}
