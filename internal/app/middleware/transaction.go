package middleware

import (
	"context"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/uow"
)

type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// Transaction runs each command inside a unit of work that is committed on
// success and rolled back otherwise. Compensations registered with
// uow.OnRollback run after a rollback.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			opts := uow.TxOptions{}
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			unit, err := factory.Begin(ctx, opts)
			if err != nil {
				return nil, err
			}
			execCtx, compensate := uow.WithCompensations(uow.Bind(ctx, unit))
			committed := false
			defer func() {
				if !committed {
					_ = unit.Rollback(execCtx)
					compensate(context.WithoutCancel(ctx))
				}
			}()

			res, err := next.Dispatch(execCtx, cmd)
			if err != nil {
				return nil, err
			}
			if err := unit.Commit(execCtx); err != nil {
				return nil, err
			}
			committed = true
			return res, nil
		})
	}
}
