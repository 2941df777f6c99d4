package serverlessgql

import (
	"context"

	reqid "github.com/hanpama/serverlessgql/internal/reqid"
)

type requestContextKey struct{}

// RequestContext returns the Context value of the request being executed,
// or nil. Resolvers call it with the ctx they receive.
func RequestContext(ctx context.Context) any {
	return ctx.Value(requestContextKey{})
}

// OperationID returns the id assigned to the running operation. Events
// published for the operation carry the same id.
func OperationID(ctx context.Context) (string, bool) {
	return reqid.FromContext(ctx)
}

func withRequest(ctx context.Context, req Request) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Context != nil {
		ctx = context.WithValue(ctx, requestContextKey{}, req.Context)
	}
	ctx, _ = reqid.NewContext(ctx)
	return ctx
}
