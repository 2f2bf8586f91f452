package auth

import (
	"context"

	"github.com/fekuna/school-inventory-service/internal/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Metadata keys set by the gateway that authenticated the caller.
const (
	ActorIDKey   = "x-actor-id"
	ActorKindKey = "x-actor-kind"
)

type actorKey struct{}

// WithActor stores an already-resolved actor on ctx, taking precedence over metadata.
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the acting party of an inbound call.
func ActorFromContext(ctx context.Context) (model.Actor, error) {
	if actor, ok := ctx.Value(actorKey{}).(model.Actor); ok {
		return actor, nil
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return model.Actor{}, status.Error(codes.Unauthenticated, "missing actor metadata")
	}

	var actor model.Actor
	if val := md.Get(ActorIDKey); len(val) > 0 {
		actor.ID = val[0]
	}
	if val := md.Get(ActorKindKey); len(val) > 0 {
		actor.Kind = model.ActorKind(val[0])
	}

	if actor.ID == "" {
		return model.Actor{}, status.Error(codes.Unauthenticated, "missing "+ActorIDKey)
	}
	if !actor.Kind.Valid() {
		return model.Actor{}, status.Errorf(codes.Unauthenticated, "invalid %s %q", ActorKindKey, actor.Kind)
	}
	return actor, nil
}

// OutgoingContext attaches actor to ctx for an outbound call.
func OutgoingContext(ctx context.Context, actor model.Actor) context.Context {
	return metadata.AppendToOutgoingContext(ctx, ActorIDKey, actor.ID, ActorKindKey, string(actor.Kind))
}
