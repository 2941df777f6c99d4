package executor

import (
	"context"
	"fmt"
	"sync"
)

// Call kinds recorded by MockRuntime.
const (
	CallKindSync      = "sync"
	CallKindAsync     = "async"
	CallKindSubscribe = "subscribe"
)

// MockResolver resolves one field for one source value.
type MockResolver func(ctx context.Context, source any, args map[string]any) (any, error)

// MockSubscriber opens an event channel for a subscription root field.
type MockSubscriber func(ctx context.Context, source any, args map[string]any) (<-chan any, error)

// NewMockValueResolver returns a MockResolver that always yields val.
func NewMockValueResolver(val any) MockResolver {
	return func(context.Context, any, map[string]any) (any, error) { return val, nil }
}

// NewMockErrorResolver returns a MockResolver that always fails with err.
func NewMockErrorResolver(err error) MockResolver {
	return func(context.Context, any, map[string]any) (any, error) { return nil, err }
}

// Call is one recorded runtime invocation. Async calls flushed together
// share a BatchID starting at 1; sync and subscribe calls have BatchID 0.
type Call struct {
	Kind       string
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
	BatchID    int
}

// MockRuntime is a Runtime and SubscribeResolver backed by resolvers keyed
// "Type.field". It records every call so tests can assert how the executor
// routed work.
type MockRuntime struct {
	mu          sync.Mutex
	resolvers   map[string]MockResolver
	subscribers map[string]MockSubscriber
	calls       []Call
	batches     int

	typeOf    func(value any) (string, error)
	serialize func(typeName string, value any) (any, error)
}

// NewMockRuntime returns a MockRuntime using resolvers. Unknown fields
// resolve to nil. Abstract types resolve through a "__typename" map key
// until SetTypeResolver says otherwise.
func NewMockRuntime(resolvers map[string]MockResolver) *MockRuntime {
	m := &MockRuntime{
		resolvers:   make(map[string]MockResolver, len(resolvers)),
		subscribers: make(map[string]MockSubscriber),
	}
	for k, r := range resolvers {
		m.resolvers[k] = r
	}
	return m
}

// SetSubscriber registers the event source for a subscription root field.
func (m *MockRuntime) SetSubscriber(objectType, field string, sub MockSubscriber) {
	m.mu.Lock()
	m.subscribers[objectType+"."+field] = sub
	m.mu.Unlock()
}

// SetTypeResolver replaces the abstract type resolution hook.
func (m *MockRuntime) SetTypeResolver(f func(value any) (string, error)) {
	m.mu.Lock()
	m.typeOf = f
	m.mu.Unlock()
}

// SetSerializer replaces the leaf serialization hook. Without one, leaf
// values pass through unchanged.
func (m *MockRuntime) SetSerializer(f func(typeName string, value any) (any, error)) {
	m.mu.Lock()
	m.serialize = f
	m.mu.Unlock()
}

func (m *MockRuntime) resolver(objectType, field string) MockResolver {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolvers[objectType+"."+field]
}

func (m *MockRuntime) record(c Call) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
}

func (m *MockRuntime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	r := m.resolver(objectType, field)
	m.record(Call{Kind: CallKindSync, ObjectType: objectType, Field: field, Source: source, Args: args})
	if r == nil {
		return nil, nil
	}
	return r(ctx, source, args)
}

// BatchResolveAsync resolves tasks grouped by coordinate, groups taken in
// order of first appearance. Results keep the task order.
func (m *MockRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	if len(tasks) == 0 {
		return nil
	}
	m.mu.Lock()
	m.batches++
	batch := m.batches
	m.mu.Unlock()

	var order []string
	groups := make(map[string][]int)
	for i, t := range tasks {
		key := t.ObjectType + "." + t.Field
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	results := make([]AsyncResolveResult, len(tasks))
	for _, key := range order {
		for _, i := range groups[key] {
			t := tasks[i]
			if r := m.resolver(t.ObjectType, t.Field); r != nil {
				results[i].Value, results[i].Error = r(ctx, t.Source, t.Args)
			}
			m.record(Call{Kind: CallKindAsync, ObjectType: t.ObjectType, Field: t.Field, Source: t.Source, Args: t.Args, BatchID: batch})
		}
	}
	return results
}

func (m *MockRuntime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	m.mu.Lock()
	f := m.typeOf
	m.mu.Unlock()
	if f != nil {
		return f(value)
	}
	if obj, ok := value.(map[string]any); ok {
		if name, ok := obj["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("cannot resolve concrete type of %s", abstractType)
}

func (m *MockRuntime) ResolveSubscribe(ctx context.Context, objectType, field string, source any, args map[string]any) (<-chan any, error) {
	m.record(Call{Kind: CallKindSubscribe, ObjectType: objectType, Field: field, Source: source, Args: args})
	m.mu.Lock()
	sub := m.subscribers[objectType+"."+field]
	m.mu.Unlock()
	if sub == nil {
		return nil, fmt.Errorf("no subscriber for %s.%s", objectType, field)
	}
	return sub(ctx, source, args)
}

func (m *MockRuntime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	m.mu.Lock()
	f := m.serialize
	m.mu.Unlock()
	if f == nil {
		return value, nil
	}
	return f(typeName, value)
}

// GetCalls returns a copy of the recorded calls in order.
func (m *MockRuntime) GetCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}
