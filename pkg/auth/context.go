package auth

import (
	"context"

	"retro-backend/domain/authz"
	"retro-backend/pkg/errors"
)

type contextKey string

const actorContextKey contextKey = "actor"

// WithActor stores the authenticated actor on the context.
func WithActor(ctx context.Context, actor authz.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext retrieves the authenticated actor from the context.
func ActorFromContext(ctx context.Context) (authz.Actor, error) {
	actor, ok := ctx.Value(actorContextKey).(authz.Actor)
	if !ok {
		return authz.Actor{}, errors.NewUnauthorizedError("no authenticated participant")
	}
	return actor, nil
}
