package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// It logs the procedure name, user ID, duration, and any error codes/messages.
// Client errors are logged at warn level, internal ones at error level.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			attrs := []any{
				"procedure", procedure,
				"peer", req.Peer().Addr,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if userID := GetUserID(ctx); userID != "" {
				attrs = append(attrs, "user_id", userID)
			}

			if err == nil {
				logger.Info("RPC ok", attrs...)
				return resp, nil
			}

			var connectErr *connect.Error
			if errors.As(err, &connectErr) && !isServerFault(connectErr.Code()) {
				logger.Warn("RPC error", append(attrs, "code", connectErr.Code(), "error", connectErr.Message())...)
			} else {
				logger.Error("RPC error", append(attrs, "code", connect.CodeOf(err), "error", err)...)
			}
			return resp, err
		}
	}
}

func isServerFault(code connect.Code) bool {
	switch code {
	case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss, connect.CodeUnavailable:
		return true
	}
	return false
}
