package middleware

import (
	"context"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/queries"
	"stayhub/internal/domain/auth"
)

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// Restricted messages carry the caller session and the role they need.
type Restricted interface {
	Actor() auth.Session
	RequiredRole() auth.Role
}

// SessionAuthorizer enforces the role declared by Restricted messages.
type SessionAuthorizer struct{}

func (SessionAuthorizer) Authorize(_ context.Context, message any) error {
	r, ok := message.(Restricted)
	if !ok {
		return nil
	}
	return r.Actor().Require(r.RequiredRole())
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
}
