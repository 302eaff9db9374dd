// Package middleware holds Connect interceptors and HTTP middleware shared by
// every service.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// expenseTarget is implemented by messages that name a single expense.
type expenseTarget interface {
	GetExpenseID() string
}

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// with its procedure, result code, duration and, when the call concerns a
// single expense, the expense ID.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"peer", req.Peer().Addr,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if id := expenseID(req, resp); id != "" {
				attrs = append(attrs, "expense_id", id)
			}

			if err == nil {
				slog.Info("RPC ok", append(attrs, "code", "ok")...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			attrs = append(attrs, "code", code.String())
			switch code {
			case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodeCanceled:
				slog.Warn("RPC rejected", append(attrs, "error", err)...)
			default:
				slog.Error("RPC failed", append(attrs, "error", err)...)
			}
			return resp, err
		}
	}
}

// expenseID reads the expense ID from the request, or from the response for
// calls that create one.
func expenseID(req connect.AnyRequest, resp connect.AnyResponse) string {
	if t, ok := req.Any().(expenseTarget); ok {
		if id := t.GetExpenseID(); id != "" {
			return id
		}
	}
	if resp == nil {
		return ""
	}
	if t, ok := resp.Any().(expenseTarget); ok {
		return t.GetExpenseID()
	}
	return ""
}
