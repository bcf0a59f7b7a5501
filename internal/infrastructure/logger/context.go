package logger

import "context"

// contextKey is the private key type for values this package stores in
// a context
type contextKey string

// RequestIDKey carries the inbound request identifier so SQL traces can
// be correlated with the HTTP request log line
const RequestIDKey contextKey = "request_id"

// WithRequestID returns a context carrying the request id
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request id from the context, or an empty
// string when none was set
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
