package middleware

import (
	"context"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/locks"
)

// SerializedCommand names the resource whose writers must run one at a time.
type SerializedCommand interface {
	commands.Command
	LockKey() string
}

// Serialize holds the per-key lock around everything further down the
// chain, so a transaction is committed before the next writer starts.
func Serialize(keyed *locks.Keyed) CommandMiddleware {
	if keyed == nil {
		panic("middleware: keyed lock required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			sc, ok := cmd.(SerializedCommand)
			if !ok || sc.LockKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			unlock, err := keyed.Lock(ctx, sc.LockKey())
			if err != nil {
				return nil, err
			}
			defer unlock()
			return next.Dispatch(ctx, cmd)
		})
	}
}
