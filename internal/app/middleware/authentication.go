package middleware

import (
	"context"

	"stayhub/internal/app/commands"
	"stayhub/internal/domain/auth"
)

// ActorCommand is implemented by commands that may only run for a known user.
type ActorCommand interface {
	commands.Command
	Actor() *auth.Actor
}

// RequireActor rejects anonymous ActorCommands before they reach stores
// further down the chain.
func RequireActor() CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if ac, ok := cmd.(ActorCommand); ok {
				if err := auth.Require(ac.Actor()); err != nil {
					return nil, err
				}
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}
