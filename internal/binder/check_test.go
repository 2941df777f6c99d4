package binder

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCheckAcceptsMatchingMap(t *testing.T) {
	fn := ResolverFunc(func(ctx context.Context, source any, args map[string]any) (any, error) { return nil, nil })
	err := Check(mustCompile(t), ResolverMap{
		"Query":        {"hello": fn},
		"Node":         {"label": fn},
		"Subscription": {"ticks": SubscriptionResolver{Subscribe: func(ctx context.Context, source any, args map[string]any) (<-chan any, error) { return nil, nil }}},
	})
	require.NoError(t, err)
}

func TestCheckReportsMismatches(t *testing.T) {
	fn := ResolverFunc(func(ctx context.Context, source any, args map[string]any) (any, error) { return nil, nil })
	err := Check(mustCompile(t), ResolverMap{
		"Ghost":        {"x": fn},
		"Color":        {"RED": fn},
		"Query":        {"nope": fn, "hello": SubscriptionResolver{}, "user": ResolverFunc(nil)},
		"Subscription": {"ticks": fn, "greetings": SubscriptionResolver{}},
	})
	require.Error(t, err)

	var got []MismatchError
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var m *MismatchError
		require.True(t, errors.As(e, &m))
		got = append(got, *m)
	}
	want := []MismatchError{
		{Type: "Color", Reason: "ENUM types have no field resolvers"},
		{Type: "Ghost", Reason: "not defined in the schema"},
		{Type: "Query", Field: "hello", Reason: "SubscriptionResolver is only valid on the subscription type"},
		{Type: "Query", Field: "nope", Reason: "not defined in the schema"},
		{Type: "Query", Field: "user", Reason: "nil resolver"},
		{Type: "Subscription", Field: "greetings", Reason: "SubscriptionResolver has no Subscribe function"},
		{Type: "Subscription", Field: "ticks", Reason: "subscription fields take a SubscriptionResolver, got binder.ResolverFunc"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatches (-want +got):\n%s", diff)
	}
	require.Contains(t, err.Error(), "resolver map: Query.nope: not defined in the schema")
}
