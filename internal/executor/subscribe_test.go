package executor

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	schema "github.com/hanpama/serverlessgql/internal/schema"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newSubscriptionSchema(t testing.TB) *schema.Schema {
	return buildSchema(t, `
		type Query { ok: Boolean }
		type Subscription { counter(from: Int!): Int! other: Int }`)
}

// sendAll returns a subscriber emitting values until ctx is cancelled.
func sendAll(values ...any) MockSubscriber {
	return func(ctx context.Context, source any, args map[string]any) (<-chan any, error) {
		ch := make(chan any)
		go func() {
			defer close(ch)
			for _, v := range values {
				select {
				case ch <- v:
				case <-ctx.Done():
					return
				}
			}
		}()
		return ch, nil
	}
}

func collect(t *testing.T, stream ResultStream) []*ExecutionResult {
	t.Helper()
	var out []*ExecutionResult
	for res, err := range Results(context.Background(), stream) {
		require.NoError(t, err)
		out = append(out, res)
	}
	return out
}

func TestSubscribe_StreamsOneResultPerEvent(t *testing.T) {
	rt := NewMockRuntime(map[string]MockResolver{
		"Subscription.counter": func(ctx context.Context, src any, args map[string]any) (any, error) {
			return src.(map[string]any)["counter"], nil
		},
	})
	rt.SetSubscriber("Subscription", "counter", sendAll(
		map[string]any{"counter": 1},
		map[string]any{"counter": 2},
	))
	exec := NewExecutor(rt, newSubscriptionSchema(t))
	doc := mustParseQuery(t, "subscription($n: Int!) { counter(from: $n) }")

	outcome := exec.Subscribe(context.Background(), doc, "", map[string]any{"n": 7}, "root")
	stream, ok := outcome.Stream()
	require.True(t, ok)

	got := collect(t, stream)
	want := []*ExecutionResult{
		{Data: map[string]any{"counter": 1}, Errors: []GraphQLError{}},
		{Data: map[string]any{"counter": 2}, Errors: []GraphQLError{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}

	calls := rt.GetCalls()
	require.Equal(t, CallKindSubscribe, calls[0].Kind)
	require.Equal(t, "root", calls[0].Source)
	require.Equal(t, map[string]any{"from": 7}, calls[0].Args)
}

func TestSubscribe_FailuresBeforeStreamAreSingle(t *testing.T) {
	tests := []struct {
		name  string
		query string
		op    string
		vars  map[string]any
		want  []GraphQLError
	}{
		{
			name:  "not a subscription",
			query: "{ ok }",
			want:  []GraphQLError{{Message: "expected a subscription operation, got query"}},
		},
		{
			name:  "unknown operation",
			query: "subscription A { other }",
			op:    "B",
			want:  []GraphQLError{{Message: `Unknown operation named "B".`}},
		},
		{
			name:  "missing variable",
			query: "subscription($n: Int!) { counter(from: $n) }",
			want:  []GraphQLError{{Message: "variable $n of required type Int! was not provided"}},
		},
		{
			name:  "missing argument",
			query: "subscription { counter }",
			want:  []GraphQLError{{Message: "argument 'from' of required type was not provided", Path: Path{"counter"}}},
		},
		{
			name:  "unknown field",
			query: "subscription { nope }",
			want:  []GraphQLError{{Message: `The subscription field "nope" is not defined.`, Path: Path{"nope"}}},
		},
		{
			name:  "subscriber error",
			query: "subscription { other }",
			want:  []GraphQLError{{Message: "no subscriber for Subscription.other", Path: Path{"other"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewMockRuntime(nil)
			exec := NewExecutor(rt, newSubscriptionSchema(t))
			doc := mustParseQuery(t, tt.query)

			outcome := exec.Subscribe(context.Background(), doc, tt.op, tt.vars, nil)
			res, ok := outcome.Result()
			require.True(t, ok)
			want := &ExecutionResult{Errors: tt.want}
			if diff := cmp.Diff(want, res); diff != "" {
				t.Fatalf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSubscribe_SourceErrorEndsStream(t *testing.T) {
	boom := errors.New("source failed")
	rt := NewMockRuntime(map[string]MockResolver{
		"Subscription.other": NewMockValueResolver(1),
	})
	rt.SetSubscriber("Subscription", "other", sendAll("first", boom, "never"))
	exec := NewExecutor(rt, newSubscriptionSchema(t))

	stream, ok := exec.Subscribe(context.Background(), mustParseQuery(t, "subscription { other }"), "", nil, nil).Stream()
	require.True(t, ok)

	res, err := stream.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[string]any{"other": 1}, res.Data)

	_, err = stream.Next(context.Background())
	require.ErrorIs(t, err, boom)

	_, err = stream.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestSubscribe_CloseCancelsSubscriberContext(t *testing.T) {
	cancelled := make(chan struct{})
	rt := NewMockRuntime(nil)
	rt.SetSubscriber("Subscription", "other", func(ctx context.Context, source any, args map[string]any) (<-chan any, error) {
		ch := make(chan any)
		go func() {
			defer close(ch)
			<-ctx.Done()
			close(cancelled)
		}()
		return ch, nil
	})
	exec := NewExecutor(rt, newSubscriptionSchema(t))

	stream, ok := exec.Subscribe(context.Background(), mustParseQuery(t, "subscription { other }"), "", nil, nil).Stream()
	require.True(t, ok)
	require.NoError(t, stream.Close())
	<-cancelled

	_, err := stream.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
	require.NoError(t, stream.Close())
}

func TestSubscribe_NextHonorsCallerContext(t *testing.T) {
	rt := NewMockRuntime(nil)
	rt.SetSubscriber("Subscription", "other", func(ctx context.Context, source any, args map[string]any) (<-chan any, error) {
		ch := make(chan any)
		go func() {
			defer close(ch)
			<-ctx.Done()
		}()
		return ch, nil
	})
	exec := NewExecutor(rt, newSubscriptionSchema(t))

	stream, ok := exec.Subscribe(context.Background(), mustParseQuery(t, "subscription { other }"), "", nil, nil).Stream()
	require.True(t, ok)
	defer stream.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := stream.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestResults_BreakClosesStream(t *testing.T) {
	rt := NewMockRuntime(map[string]MockResolver{
		"Subscription.other": NewMockValueResolver(1),
	})
	rt.SetSubscriber("Subscription", "other", sendAll("a", "b", "c"))
	exec := NewExecutor(rt, newSubscriptionSchema(t))

	stream, ok := exec.Subscribe(context.Background(), mustParseQuery(t, "subscription { other }"), "", nil, nil).Stream()
	require.True(t, ok)

	n := 0
	for _, err := range Results(context.Background(), stream) {
		require.NoError(t, err)
		n++
		break
	}
	require.Equal(t, 1, n)

	_, err := stream.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}
