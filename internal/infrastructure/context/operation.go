package context

import "context"

// OperationKey is the context key for the logical API operation name
// (for example "GET /customers/{id}").
const OperationKey contextKey = "operation"

// WithOperation records the logical operation name for logging and auditing.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, OperationKey, operation)
}

// GetOperation returns the operation name stored in ctx, or "".
func GetOperation(ctx context.Context) string {
	if op, ok := ctx.Value(OperationKey).(string); ok {
		return op
	}
	return ""
}
