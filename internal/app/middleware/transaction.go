package middleware

import (
	"context"
	"fmt"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/uow"
)

// TxOptionsFor picks transaction options per command. nil means defaults.
type TxOptionsFor func(cmd commands.Command) uow.TxOptions

// Transaction gives every command a unit of work and commits it when the
// handler succeeds. A unit already bound to ctx is reused and left to whoever
// opened it.
func Transaction(factory uow.UoWFactory, optionsFor TxOptionsFor) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			var opts uow.TxOptions
			if optionsFor != nil {
				opts = optionsFor(cmd)
			}
			unit, execCtx, release, err := uow.Current(ctx, factory, opts)
			if err != nil {
				return nil, err
			}
			if release == nil {
				return next.Dispatch(execCtx, cmd)
			}
			defer release()

			res, err := next.Dispatch(execCtx, cmd)
			if err != nil {
				return nil, err
			}
			if err := unit.Commit(execCtx); err != nil {
				return nil, fmt.Errorf("commit %s: %w", cmd.Key(), err)
			}
			return res, nil
		})
	}
}
