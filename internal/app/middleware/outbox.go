package middleware

import (
	"context"
	"fmt"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/outbox"
)

// OutboxFlush hands buffered events to the outbox after a successful command.
// Failed commands leave nothing to flush: their records went out with the
// rolled back unit.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, fmt.Errorf("flush events of %s: %w", cmd.Key(), err)
			}
			return res, nil
		})
	}
}
