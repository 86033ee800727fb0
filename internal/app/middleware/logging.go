package middleware

import (
	"context"
	"log/slog"
	"time"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/queries"
	"stayhub/internal/domain/shared/fault"
)

// Logging records every command with its duration. Classified domain errors
// are logged at debug, anything else at warn.
func Logging(logger *slog.Logger) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		if logger == nil {
			return next
		}
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := next.Dispatch(ctx, cmd)
			logOutcome(ctx, logger, "command", cmd.Key(), time.Since(start), err)
			return res, err
		})
	}
}

func QueryLogging(logger *slog.Logger) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		if logger == nil {
			return next
		}
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := next.Ask(ctx, q)
			logOutcome(ctx, logger, "query", q.Key(), time.Since(start), err)
			return res, err
		})
	}
}

func logOutcome(ctx context.Context, logger *slog.Logger, kind, key string, took time.Duration, err error) {
	switch {
	case err == nil:
		logger.DebugContext(ctx, kind+" handled", "key", key, "duration", took)
	case fault.KindOf(err) != nil && fault.KindOf(err) != fault.ErrUpstream:
		logger.DebugContext(ctx, kind+" rejected", "key", key, "duration", took, "error", err)
	default:
		logger.WarnContext(ctx, kind+" failed", "key", key, "duration", took, "error", err)
	}
}
