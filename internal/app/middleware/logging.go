package middleware

import (
	"context"
	"log/slog"
	"time"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/queries"
)

// Logging writes one debug line per command, or a warning when it fails.
func Logging(logger *slog.Logger) CommandMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := next.Dispatch(ctx, cmd)
			logResult(ctx, logger, "command", cmd.Key(), start, err)
			return res, err
		})
	}
}

func QueryLogging(logger *slog.Logger) QueryMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := next.Ask(ctx, q)
			logResult(ctx, logger, "query", q.Key(), start, err)
			return res, err
		})
	}
}

func logResult(ctx context.Context, logger *slog.Logger, kind, key string, start time.Time, err error) {
	attrs := []any{kind, key, "duration", time.Since(start)}
	if err != nil {
		logger.WarnContext(ctx, kind+" failed", append(attrs, "error", err)...)
		return
	}
	logger.DebugContext(ctx, kind+" handled", attrs...)
}
