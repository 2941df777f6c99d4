package reqid

import (
	"context"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, id, got)

	_, err := xid.FromString(id)
	require.NoError(t, err)

	_, ok = FromContext(context.Background())
	require.False(t, ok)
}

func TestNestedOperationsGetTheirOwnID(t *testing.T) {
	outer, first := NewContext(context.Background())
	inner, second := NewContext(outer)
	require.NotEqual(t, first, second)

	got, _ := FromContext(inner)
	require.Equal(t, second, got)
	got, _ = FromContext(outer)
	require.Equal(t, first, got)
}
