package binder

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	executor "github.com/hanpama/serverlessgql/internal/executor"
	language "github.com/hanpama/serverlessgql/internal/language"
	schema "github.com/hanpama/serverlessgql/internal/schema"
)

const testSDL = `
type Query {
  hello(name: String = "world"): String
  user(id: ID!): User
  node: Node
  color: Color
}

type Mutation {
  first: Int
  second: Int
}

type Subscription {
  ticks: Int
  greetings: String
}

interface Node { id: ID! label: String }

type User implements Node {
  id: ID!
  label: String
  name: String
  email: String
}

type Robot implements Node {
  id: ID!
  label: String
}

enum Color { RED GREEN }
`

func mustCompile(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL("test.graphql", testSDL)
	require.NoError(t, err)
	return s
}

func run(t *testing.T, es *ExecutableSchema, query string, root any) *executor.ExecutionResult {
	t.Helper()
	doc, errs := language.LoadQuery(es.Schema().Document, query)
	require.Empty(t, errs)
	return executor.NewExecutor(es, es.Schema()).ExecuteRequest(context.Background(), doc, "", nil, root)
}

type user struct {
	ID    string `json:"id"`
	Name  string
	Email string `json:"email,omitempty"`
	Label string `json:"-"`
}

func TestBindLeavesCompiledUntouched(t *testing.T) {
	compiled := mustCompile(t)
	es := Bind(compiled, ResolverMap{
		"Query": {"hello": ResolverFunc(func(ctx context.Context, source any, args map[string]any) (any, error) {
			return "hi", nil
		})},
	})

	require.False(t, compiled.GetQueryType().Field("hello").Async)
	require.True(t, es.Schema().GetQueryType().Field("hello").Async)
	require.False(t, es.Schema().GetQueryType().Field("user").Async)
	require.NotSame(t, compiled, es.Schema())
}

func TestBindIgnoresMismatchedEntries(t *testing.T) {
	compiled := mustCompile(t)
	fn := ResolverFunc(func(ctx context.Context, source any, args map[string]any) (any, error) {
		return "bound", nil
	})
	es := Bind(compiled, ResolverMap{
		"Nope":         {"x": fn},
		"Query":        {"missing": fn, "hello": SubscriptionResolver{}},
		"Subscription": {"ticks": fn},
	})

	for _, typ := range es.Schema().Types {
		for _, f := range typ.Fields {
			require.False(t, f.Async, "%s.%s should not be bound", typ.Name, f.Name)
		}
	}
	res := run(t, es, "{ hello }", map[string]any{"hello": "from root"})
	require.Equal(t, map[string]any{"hello": "from root"}, res.Data)
}

func TestBindIsIdempotent(t *testing.T) {
	compiled := mustCompile(t)
	resolvers := ResolverMap{
		"Query": {"hello": ResolverFunc(func(ctx context.Context, source any, args map[string]any) (any, error) {
			return "hello " + args["name"].(string), nil
		})},
	}
	a := run(t, Bind(compiled, resolvers), "{ hello }", nil)
	b := run(t, Bind(compiled, resolvers), "{ hello }", nil)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("results differ (-first +second):\n%s", diff)
	}
	require.Equal(t, map[string]any{"hello": "hello world"}, a.Data)
}

func TestExecuteBoundAndDefaultResolvers(t *testing.T) {
	var gotSource any
	es := Bind(mustCompile(t), ResolverMap{
		"Query": {
			"user": ResolverFunc(func(ctx context.Context, source any, args map[string]any) (any, error) {
				gotSource = source
				return &user{ID: args["id"].(string), Name: "Ada", Email: "ada@example.com", Label: "hidden"}, nil
			}),
		},
	})

	res := run(t, es, `{ user(id: "7") { id name email label } }`, "root")
	require.Empty(t, res.Errors)
	require.Equal(t, "root", gotSource)
	want := map[string]any{
		"user": map[string]any{"id": "7", "name": "Ada", "email": "ada@example.com", "label": nil},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestInterfaceResolversAreInherited(t *testing.T) {
	es := Bind(mustCompile(t), ResolverMap{
		"Node": {"label": ResolverFunc(func(ctx context.Context, source any, args map[string]any) (any, error) {
			return "node:" + source.(map[string]any)["id"].(string), nil
		})},
	})

	res := run(t, es, `{ node { id label } }`, map[string]any{
		"node": map[string]any{"__typename": "Robot", "id": "r2"},
	})
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"node": map[string]any{"id": "r2", "label": "node:r2"}}, res.Data)
}

func TestResolverErrorsAndPanics(t *testing.T) {
	es := Bind(mustCompile(t), ResolverMap{
		"Query": {
			"hello": ResolverFunc(func(ctx context.Context, source any, args map[string]any) (any, error) {
				return nil, errors.New("boom")
			}),
			"color": ResolverFunc(func(ctx context.Context, source any, args map[string]any) (any, error) {
				panic("kaput")
			}),
		},
	})

	res := run(t, es, `{ hello color }`, nil)
	require.Equal(t, map[string]any{"hello": nil, "color": nil}, res.Data)
	want := []executor.GraphQLError{
		{Message: "boom", Path: executor.Path{"hello"}},
		{Message: "resolver panic: kaput", Path: executor.Path{"color"}},
	}
	if diff := cmp.Diff(want, res.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMutationsRunInOrder(t *testing.T) {
	var order []string
	record := func(name string, v int) ResolverFunc {
		return func(ctx context.Context, source any, args map[string]any) (any, error) {
			order = append(order, name)
			return v, nil
		}
	}
	es := Bind(mustCompile(t), ResolverMap{
		"Mutation": {"first": record("first", 1), "second": record("second", 2)},
	})

	res := run(t, es, `mutation { b: second a: first }`, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, []string{"second", "first"}, order)
	require.Equal(t, map[string]any{"b": 2, "a": 1}, res.Data)
}

func TestBatchResolveAsyncHonorsCancellation(t *testing.T) {
	called := false
	es := Bind(mustCompile(t), ResolverMap{
		"Query": {"hello": ResolverFunc(func(ctx context.Context, source any, args map[string]any) (any, error) {
			called = true
			return "x", nil
		})},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := es.BatchResolveAsync(ctx, []executor.AsyncResolveTask{{ObjectType: "Query", Field: "hello"}})
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Error, context.Canceled)
	require.False(t, called)
}

type robot struct{ ID string }

type named struct{}

func (named) TypeName() string { return "User" }

type Robot struct{ ID string }

func TestResolveType(t *testing.T) {
	es := Bind(mustCompile(t), nil)
	ctx := context.Background()

	name, err := es.ResolveType(ctx, "Node", map[string]any{"__typename": "Robot"})
	require.NoError(t, err)
	require.Equal(t, "Robot", name)

	name, err = es.ResolveType(ctx, "Node", named{})
	require.NoError(t, err)
	require.Equal(t, "User", name)

	name, err = es.ResolveType(ctx, "Node", &Robot{ID: "1"})
	require.NoError(t, err)
	require.Equal(t, "Robot", name)

	_, err = es.ResolveType(ctx, "Node", robot{ID: "1"})
	require.Error(t, err)
}

func TestResolveSubscribe(t *testing.T) {
	ctx := context.Background()
	bound := make(chan any)
	es := Bind(mustCompile(t), ResolverMap{
		"Subscription": {
			"ticks": SubscriptionResolver{
				Subscribe: func(ctx context.Context, source any, args map[string]any) (<-chan any, error) {
					return bound, nil
				},
			},
			"greetings": &SubscriptionResolver{
				Resolve: func(ctx context.Context, source any, args map[string]any) (any, error) {
					return "hello " + source.(string), nil
				},
			},
		},
	})

	ch, err := es.ResolveSubscribe(ctx, "Subscription", "ticks", nil, nil)
	require.NoError(t, err)
	require.Equal(t, (<-chan any)(bound), ch)

	fromRoot := make(chan any)
	ch, err = es.ResolveSubscribe(ctx, "Subscription", "greetings", map[string]any{"greetings": fromRoot}, nil)
	require.NoError(t, err)
	require.Equal(t, (<-chan any)(fromRoot), ch)

	_, err = es.ResolveSubscribe(ctx, "Subscription", "greetings", map[string]any{"greetings": 5}, nil)
	require.ErrorContains(t, err, "must return an event stream")

	_, err = es.ResolveSubscribe(ctx, "Subscription", "greetings", nil, nil)
	require.ErrorContains(t, err, "got null")

	require.True(t, es.Schema().GetSubscriptionType().Field("greetings").Async)
	require.False(t, es.Schema().GetSubscriptionType().Field("ticks").Async)

	results := es.BatchResolveAsync(ctx, []executor.AsyncResolveTask{{ObjectType: "Subscription", Field: "greetings", Source: "ann"}})
	require.Equal(t, "hello ann", results[0].Value)

	v, err := es.ResolveSync(ctx, "Subscription", "ticks", map[string]any{"ticks": 3}, nil)
	require.NoError(t, err)
	require.Equal(t, 3, v)
}
