// Package restclient provides a single-use envelope around an outbound REST call.
// A request is configured, sent without blocking, and then consumed by exactly
// one decode operation that classifies the response status and turns the body
// into a typed value.
//
// Failures never surface as Go errors from the decode operations: each one
// returns a *Response carrying either the decoded payload or an *Error
// describing what went wrong, so callers branch on Response.IsError().
package restclient

import (
	"context"
	"log/slog"
	"reflect"
)

var (
	// Debug enables verbose logging of requests and their timings
	Debug = false
)

const (
	// ContentTypeText is used by SetBodyText when no content type is given
	ContentTypeText = "text/plain; charset=UTF-8"
	// ContentTypeJSON is used by SetBodyJSON
	ContentTypeJSON = "application/json; charset=utf-8"
)

// warn logs a non fatal event on the given logger. Events are prefixed with
// "rest:" so they can be filtered the same way as the rest of the package.
func warn(ctx context.Context, logger *slog.Logger, event, msg string, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, msg, append([]any{"event", "rest:" + event}, args...)...)
}

func debugLog(ctx context.Context, logger *slog.Logger, event, msg string, args ...any) {
	if !Debug {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.DebugContext(ctx, msg, append([]any{"event", "rest:" + event}, args...)...)
}

// typeName returns a printable name for T, used in decode error messages.
func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
