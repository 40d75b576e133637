package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/tandemwire/tandem/pkg/mux"
)

// Recover creates middleware that converts a handler panic into a
// handler error, so the remote caller gets a failed call instead of a
// hung one and the peer's dispatch worker survives. The stack goes to
// the log; only the panic value's text crosses the wire.
func Recover() mux.Middleware {
	return func(next mux.HandlerFunc) mux.HandlerFunc {
		return func(ctx context.Context, req *mux.Request) (reply []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("handler panic",
						"message", req.Name,
						"panic", r,
						"stack", string(debug.Stack()))
					reply = nil
					err = fmt.Errorf("handler panic: %v", r)
				}
			}()
			return next(ctx, req)
		}
	}
}
