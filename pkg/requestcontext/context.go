// Package requestcontext provides HTTP-independent accessors for request-scoped values.
//
// Middleware sets the values; services read them without importing net/http.
//
//	requestID := requestcontext.RequestID(ctx)
//	ident := requestcontext.Saksbehandler(ctx)
package requestcontext

import "context"

type (
	requestIDKey     struct{}
	saksbehandlerKey struct{}
)

var (
	ContextKeyRequestID     = requestIDKey{}
	ContextKeySaksbehandler = saksbehandlerKey{}
)

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Saksbehandler returns the case worker ident taken from the request, or "".
func Saksbehandler(ctx context.Context) string {
	if ident, ok := ctx.Value(ContextKeySaksbehandler).(string); ok {
		return ident
	}
	return ""
}

func WithSaksbehandler(ctx context.Context, ident string) context.Context {
	return context.WithValue(ctx, ContextKeySaksbehandler, ident)
}
