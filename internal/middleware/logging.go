package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// It logs the procedure name, terminal ID, duration, and any error codes/messages.
// Register it after the auth interceptor so the terminal ID is known.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			terminalID := GetTerminalID(ctx) // empty for member-facing calls

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			if err != nil {
				var connectErr *connect.Error
				switch {
				case errors.As(err, &connectErr) && connectErr.Code() == connect.CodeInternal:
					logger.Error("RPC error",
						"procedure", procedure,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"terminal_id", terminalID,
						"duration_ms", duration,
					)
				case errors.As(err, &connectErr):
					logger.Warn("RPC error",
						"procedure", procedure,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"terminal_id", terminalID,
						"duration_ms", duration,
					)
				default:
					logger.Error("RPC error",
						"procedure", procedure,
						"error", err,
						"terminal_id", terminalID,
						"duration_ms", duration,
					)
				}
			} else {
				logger.Info("RPC ok",
					"procedure", procedure,
					"terminal_id", terminalID,
					"duration_ms", duration,
				)
			}

			return resp, err
		}
	}
}
