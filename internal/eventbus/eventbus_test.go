package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ N int }
type pong struct{ N int }

func TestBusDispatchesByType(t *testing.T) {
	b := New()
	var pings, pongs []int
	On(b, func(ctx context.Context, e ping) { pings = append(pings, e.N) })
	On(b, func(ctx context.Context, e ping) { pings = append(pings, e.N*10) })
	On(b, func(ctx context.Context, e pong) { pongs = append(pongs, e.N) })

	Emit(b, context.Background(), ping{N: 1})
	Emit(b, context.Background(), pong{N: 2})

	require.Equal(t, []int{1, 10}, pings)
	require.Equal(t, []int{2}, pongs)
}

func TestUnsubscribeRemovesOnlyItsHandler(t *testing.T) {
	b := New()
	var got []string
	first := On(b, func(ctx context.Context, e ping) { got = append(got, "first") })
	On(b, func(ctx context.Context, e ping) { got = append(got, "second") })

	first()
	first()
	Emit(b, context.Background(), ping{})

	require.Equal(t, []string{"second"}, got)
}

func TestNilBusIsNoop(t *testing.T) {
	var b *Bus
	unsubscribe := On(b, func(ctx context.Context, e ping) { t.Fatal("unexpected event") })
	Emit(b, context.Background(), ping{})
	unsubscribe()
}
