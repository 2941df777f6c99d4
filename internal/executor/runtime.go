package executor

import (
	"context"
)

// Runtime is the resolution surface the Executor drives: field values,
// batches of async fields, concrete types of abstract values and leaf
// serialization.
//
// Contract
//   - At each depth the Executor resolves sync fields through ResolveSync,
//     then calls BatchResolveAsync once with every async task of that depth.
//     ResolveSync is never called for async fields.
//   - Errors become GraphQL errors at the field's path. A Non-Null field that
//     fails nulls its nearest nullable ancestor.
//   - The Executor may call a Runtime concurrently for different operations.
//     Implementations must not mutate source or args.
//
// Arguments
//   - objectType is the GraphQL type name (e.g. "User"); for root fields it is
//     the root type name (e.g. "Query").
//   - source is the parent value; for root fields it is the root value the
//     caller supplied.
//   - args holds the coerced argument values.
//
// Batches
//   - BatchResolveAsync returns exactly one result per task, results[i] for
//     tasks[i]. Each result fails independently.
//   - Tasks under paths already nulled are filtered out before the call.
type Runtime interface {
	// ResolveSync resolves a synchronous field value immediately.
	//
	// Called only for fields with Async == false. Return (nil, nil) for null.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves one execution depth of async field tasks.
	//
	// len(results) must equal len(tasks), in the same order.
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// ResolveType determines the concrete runtime type name for a value of an
	// abstract GraphQL type (interface or union).
	//
	// Must return a type name that is a possible type of the abstractType in the
	// provided schema; otherwise return an error.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// SerializeLeafValue serializes a scalar or enum value to a JSON-safe Go
	// value. Enums serialize to their member name.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

type AsyncResolveTask struct {
	// ObjectType is the parent GraphQL object type name for the field.
	ObjectType string
	// Field is the GraphQL field name to resolve.
	Field string
	// Source is the parent value, or the root value for root fields.
	Source any
	// Args are the field arguments, coerced to Go values per the schema.
	Args map[string]any
}

type AsyncResolveResult struct {
	// Value is the resolved raw value prior to completion, or nil on error.
	Value any
	// Error contains a failure specific to this element; other elements in the
	// same batch are unaffected.
	Error error
}

// SubscribeResolver is implemented by runtimes that can serve subscription
// operations. The executor asks it for the source event stream of the single
// root field of a subscription, then executes the selection set once per
// event with the event as the root value.
//
// The returned channel is owned by the runtime. The executor stops reading
// when ctx is cancelled; runtimes should close the channel once ctx is done
// or the source is exhausted. An error value received on the channel ends
// the stream with that error.
type SubscribeResolver interface {
	ResolveSubscribe(ctx context.Context, objectType string, field string, source any, args map[string]any) (<-chan any, error)
}
