package executor

import (
	"context"
	"errors"
	"fmt"

	language "github.com/hanpama/serverlessgql/internal/language"
	schema "github.com/hanpama/serverlessgql/internal/schema"
)

type Executor struct {
	runtime Runtime
	schema  *schema.Schema
}

func NewExecutor(runtime Runtime, schema *schema.Schema) *Executor {
	return &Executor{runtime: runtime, schema: schema}
}

// ExecuteRequest selects an operation from document, coerces variables and
// executes it against initialValue. Request-level failures (unknown
// operation, bad variables) are reported as errors with no data.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	operation, err := selectOperation(document, operationName)
	if err != nil {
		return requestError(err)
	}
	variables, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return requestError(err)
	}
	return e.executeOperation(ctx, document, operation, variables, initialValue)
}

// executeOperation runs an already selected operation with coerced
// variables. Synchronous fields are completed depth first while the
// selection set is walked; async fields are queued and flushed one
// BatchResolveAsync call per depth until nothing is pending.
func (e *Executor) executeOperation(
	ctx context.Context,
	document *language.QueryDocument,
	operation *language.OperationDefinition,
	variables map[string]any,
	initialValue any,
) *ExecutionResult {
	rootType, err := e.rootType(operation)
	if err != nil {
		return requestError(err)
	}

	state := e.newState(ctx, document, variables)
	data := state.executeSelectionSet(rootType, operation.SelectionSet, initialValue, Path{})
	for len(state.pending) > 0 {
		tasks := state.takePending()
		if len(tasks) == 0 {
			break
		}
		results := state.resolveBatch(tasks)
		for i, task := range tasks {
			state.completeAsync(task, results[i], data)
		}
	}
	return &ExecutionResult{Data: data, Errors: state.errors}
}

func (e *Executor) rootType(operation *language.OperationDefinition) (*schema.Type, error) {
	var root *schema.Type
	switch operation.Operation {
	case language.Query:
		root = e.schema.GetQueryType()
	case language.Mutation:
		root = e.schema.GetMutationType()
	case language.Subscription:
		root = e.schema.GetSubscriptionType()
	default:
		return nil, fmt.Errorf("unsupported operation type: %s", operation.Operation)
	}
	if root == nil {
		return nil, fmt.Errorf("root type not found for %s operation", operation.Operation)
	}
	return root, nil
}

// selectOperation picks the operation to run. Without a name the document
// must hold exactly one operation.
func selectOperation(document *language.QueryDocument, operationName string) (*language.OperationDefinition, error) {
	if operationName != "" {
		if op := document.Operations.ForName(operationName); op != nil {
			return op, nil
		}
		return nil, fmt.Errorf("Unknown operation named \"%s\".", operationName)
	}
	switch len(document.Operations) {
	case 0:
		return nil, errors.New("Must provide an operation.")
	case 1:
		return document.Operations[0], nil
	default:
		return nil, errors.New("Must provide operation name if query contains multiple operations.")
	}
}

func requestError(err error) *ExecutionResult {
	return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
}
