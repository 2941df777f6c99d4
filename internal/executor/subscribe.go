package executor

import (
	"context"
	"fmt"

	language "github.com/hanpama/serverlessgql/internal/language"
)

// Outcome is the result of Subscribe: either a single result, produced when
// the subscription could not be established, or a stream of results.
// Construct it with Single or Streamed.
type Outcome struct {
	result *ExecutionResult
	stream ResultStream
}

// Single wraps a single execution result.
func Single(result *ExecutionResult) Outcome { return Outcome{result: result} }

// Streamed wraps a stream of execution results.
func Streamed(stream ResultStream) Outcome { return Outcome{stream: stream} }

// Result returns the single result, if this outcome holds one.
func (o Outcome) Result() (*ExecutionResult, bool) { return o.result, o.stream == nil }

// Stream returns the result stream, if this outcome holds one.
func (o Outcome) Stream() (ResultStream, bool) { return o.stream, o.stream != nil }

// Subscribe establishes a subscription. It selects the operation, coerces
// variables and the arguments of the first root field, and asks the runtime
// for that field's event channel. Every failure up to that point yields a
// Single outcome carrying the errors. On success the stream executes the
// operation once per event, with the event as the root value.
//
// The context passed to the runtime is derived from ctx and cancelled when
// the stream is closed.
func (e *Executor) Subscribe(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) Outcome {
	operation, err := selectOperation(document, operationName)
	if err != nil {
		return singleError(err.Error(), nil)
	}
	if operation.Operation != language.Subscription {
		return singleError(fmt.Sprintf("expected a subscription operation, got %s", operation.Operation), nil)
	}

	coercedVariableValues, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return singleError(err.Error(), nil)
	}

	rootType, err := e.rootType(operation)
	if err != nil {
		return singleError(err.Error(), nil)
	}

	state := e.newState(ctx, document, coercedVariableValues)
	collected := collectFields(state, rootType, operation.SelectionSet)
	if len(collected) == 0 {
		return singleError("subscription operation must select a root field", nil)
	}
	first := collected[0]
	field := first.Fields[0]
	path := Path{first.ResponseName}

	fieldDef := rootType.Field(field.Name)
	if fieldDef == nil {
		return singleError(fmt.Sprintf("The subscription field \"%s\" is not defined.", field.Name), path)
	}

	args := coerceArgumentValues(fieldDef, field.Arguments, coercedVariableValues, state, path)
	if len(state.errors) > 0 {
		return Single(&ExecutionResult{Errors: state.errors})
	}

	subscriber, ok := e.runtime.(SubscribeResolver)
	if !ok {
		return singleError("runtime does not support subscriptions", path)
	}

	subCtx, cancel := context.WithCancel(ctx)
	events, err := subscriber.ResolveSubscribe(subCtx, rootType.Name, field.Name, initialValue, args)
	if err != nil {
		cancel()
		return Single(&ExecutionResult{Errors: []GraphQLError{resolverError(err, path)}})
	}
	if events == nil {
		cancel()
		return singleError(fmt.Sprintf("Subscription field %s must return an event stream", field.Name), path)
	}

	return Streamed(&eventStream{
		executor:  e,
		ctx:       subCtx,
		cancel:    cancel,
		events:    events,
		document:  document,
		operation: operation,
		variables: coercedVariableValues,
	})
}

func singleError(message string, path Path) Outcome {
	return Single(&ExecutionResult{Errors: []GraphQLError{{Message: message, Path: path}}})
}
