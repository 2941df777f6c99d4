package binder

import (
	"context"
	"fmt"
	"reflect"

	executor "github.com/hanpama/serverlessgql/internal/executor"
	schema "github.com/hanpama/serverlessgql/internal/schema"
)

var (
	_ executor.Runtime           = (*ExecutableSchema)(nil)
	_ executor.SubscribeResolver = (*ExecutableSchema)(nil)
)

// ResolveSync serves fields without a bound resolver.
func (es *ExecutableSchema) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	if fn := es.lookup(objectType, field); fn != nil {
		return callResolver(ctx, fn, source, args)
	}
	return defaultResolve(ctx, source, field, args)
}

// BatchResolveAsync runs bound resolvers one after another in task order, on
// the calling goroutine. Mutation fields therefore run serially.
func (es *ExecutableSchema) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			results[i] = executor.AsyncResolveResult{Error: err}
			continue
		}
		var (
			value any
			err   error
		)
		if fn := es.lookup(task.ObjectType, task.Field); fn != nil {
			value, err = callResolver(ctx, fn, task.Source, task.Args)
		} else {
			value, err = defaultResolve(ctx, task.Source, task.Field, task.Args)
		}
		results[i] = executor.AsyncResolveResult{Value: value, Error: err}
	}
	return results
}

func (es *ExecutableSchema) lookup(objectType, field string) ResolverFunc {
	if objectType == es.schema.SubscriptionType && objectType != "" {
		return es.subscriptions[field].Resolve
	}
	return es.resolvers[fieldKey{objectType, field}]
}

// typeNamer lets Go values name their GraphQL object type.
type typeNamer interface {
	TypeName() string
}

// ResolveType determines the object type of a value of an interface or
// union type. It tries, in order: a "__typename" map key, a TypeName method,
// the Go type name, and finally the only possible type if there is one.
func (es *ExecutableSchema) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if m, ok := value.(map[string]any); ok {
		if name, ok := m["__typename"].(string); ok && name != "" {
			return name, nil
		}
	}
	if tn, ok := value.(typeNamer); ok {
		return tn.TypeName(), nil
	}

	abs := es.schema.Types[abstractType]
	if abs == nil {
		return "", fmt.Errorf("unknown abstract type %s", abstractType)
	}
	if t := reflect.TypeOf(value); t != nil {
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		for _, name := range abs.PossibleTypes {
			if t.Name() == name {
				return name, nil
			}
		}
	}
	if len(abs.PossibleTypes) == 1 {
		return abs.PossibleTypes[0], nil
	}
	return "", fmt.Errorf("Abstract type \"%s\" must resolve to an Object type at runtime. Either the value must carry a __typename or implement TypeName() string", abstractType)
}

// ResolveSubscribe opens the event source of a subscription root field.
// Without a bound Subscribe function the field is read from the root value
// and must hold a channel.
func (es *ExecutableSchema) ResolveSubscribe(ctx context.Context, objectType string, field string, source any, args map[string]any) (<-chan any, error) {
	if objectType != es.schema.SubscriptionType {
		return nil, fmt.Errorf("%s is not the subscription type", objectType)
	}
	if sr, ok := es.subscriptions[field]; ok && sr.Subscribe != nil {
		return sr.Subscribe(ctx, source, args)
	}
	v, err := defaultResolve(ctx, source, field, args)
	if err != nil {
		return nil, err
	}
	switch ch := v.(type) {
	case <-chan any:
		return ch, nil
	case chan any:
		return ch, nil
	case nil:
		return nil, fmt.Errorf("Subscription field %s must return an event stream, got null", field)
	}
	return nil, fmt.Errorf("Subscription field %s must return an event stream, got %T", field, v)
}

func (es *ExecutableSchema) typeOf(name string) *schema.Type { return es.schema.Types[name] }

// callResolver invokes fn and turns a panic into an error.
func callResolver(ctx context.Context, fn ResolverFunc, source any, args map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, fmt.Errorf("resolver panic: %v", r)
		}
	}()
	return fn(ctx, source, args)
}
