package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// recoverMiddleware turns a panic inside a method handler into an error so
// one bad call does not take down a long-lived session.
func recoverMiddleware(logger *slog.Logger) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (result sdkmcp.Result, err error) {
			defer func() {
				if recovered := recover(); recovered != nil {
					logger.Error("mcp handler panic", "method", method, "panic", recovered, "stack", string(debug.Stack()))
					result, err = nil, fmt.Errorf("internal error in %s", method)
				}
			}()
			return next(ctx, method, req)
		}
	}
}
