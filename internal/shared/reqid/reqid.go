package reqid

import "context"

type ctxKey struct{}

// With attaches a request ID to the context for logging.
func With(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// FromContext returns the request ID carried by the context, if any.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// Background returns a fresh background context that keeps the request ID of
// ctx. Used when work outlives the originating HTTP request.
func Background(ctx context.Context) context.Context {
	requestID := FromContext(ctx)
	if requestID == "" {
		return context.Background()
	}
	return With(context.Background(), requestID)
}
