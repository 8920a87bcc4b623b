package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type contextKey string

const loggerKey contextKey = "logger"

// echoKey is the echo context key Middleware stores the request logger under.
const echoKey = "logger"

// FromContext returns the request-scoped logger carried by ctx. Callers that
// run outside a request (or before Middleware) get the global logger, so a
// nil check is never needed.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}

// WithContext returns a context carrying the given logger, for handing a
// request's fields to background work such as the import flow.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromEcho returns the request logger Middleware stored on the echo context,
// already tagged with the request id. Falls back to the global logger.
func FromEcho(c echo.Context) *zap.Logger {
	if l, ok := c.Get(echoKey).(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}
