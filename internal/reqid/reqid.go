// Package reqid tags a context with the id of the GraphQL operation it
// belongs to. Ids are xids: sortable by creation time and unique without
// coordination between processes.
package reqid

import (
	"context"

	"github.com/rs/xid"
)

type ctxKey struct{}

// NewContext derives a context carrying a fresh operation id and returns
// both. An id already present in parent is shadowed.
func NewContext(parent context.Context) (context.Context, string) {
	id := xid.New().String()
	return context.WithValue(parent, ctxKey{}, id), id
}

// FromContext returns the operation id stored in ctx, if any.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok
}
