package auth

import "context"

// Actor is the authenticated principal attached to a request.
type Actor struct {
	UserID string
	Name   string
	Role   string
}

type contextKey struct{}

var actorKey contextKey

func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(actorKey).(*Actor)
	return actor, ok && actor != nil
}
