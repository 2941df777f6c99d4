package executor

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	language "github.com/hanpama/serverlessgql/internal/language"
	schema "github.com/hanpama/serverlessgql/internal/schema"
)

// executionState is the per-operation bookkeeping shared by the walk over
// the selection set and the batch loop.
type executionState struct {
	ctx            context.Context
	runtime        Runtime
	schema         *schema.Schema
	document       *language.QueryDocument
	variableValues map[string]any
	errors         []GraphQLError

	// async fields waiting for the next batch
	pending []asyncTask
	// response keys nulled by non-null propagation; work below them is dropped
	nullified map[string]struct{}
}

// asyncTask is an async field queued for the next batch, with what is
// needed to complete its value once resolved.
type asyncTask struct {
	request   AsyncResolveTask
	path      Path
	fieldType *schema.TypeRef
	fields    []*language.Field
}

// asyncPending marks a response slot filled in by a later batch.
type asyncPending struct{}

func (e *Executor) newState(ctx context.Context, document *language.QueryDocument, variables map[string]any) *executionState {
	return &executionState{
		ctx:            ctx,
		runtime:        e.runtime,
		schema:         e.schema,
		document:       document,
		variableValues: variables,
		errors:         []GraphQLError{},
		nullified:      make(map[string]struct{}),
	}
}

func (s *executionState) addError(message string, path Path) {
	s.errors = append(s.errors, GraphQLError{Message: message, Path: path})
}

func (s *executionState) hasErrorAt(path Path) bool {
	return slices.ContainsFunc(s.errors, func(e GraphQLError) bool {
		return reflect.DeepEqual(e.Path, path)
	})
}

func (s *executionState) enqueue(task asyncTask) {
	s.pending = append(s.pending, task)
}

// takePending empties the queue, dropping tasks under a nulled response key.
func (s *executionState) takePending() []asyncTask {
	tasks := slices.DeleteFunc(s.pending, func(t asyncTask) bool {
		return s.isNullified(t.path)
	})
	s.pending = nil
	return tasks
}

// resolveBatch hands tasks to the runtime as one batch. Once the context is
// done no further batches are sent; every task fails with its error.
func (s *executionState) resolveBatch(tasks []asyncTask) []AsyncResolveResult {
	results := make([]AsyncResolveResult, len(tasks))
	if err := s.ctx.Err(); err != nil {
		for i := range results {
			results[i].Error = err
		}
		return results
	}
	requests := make([]AsyncResolveTask, len(tasks))
	for i, t := range tasks {
		requests[i] = t.request
	}
	got := s.runtime.BatchResolveAsync(s.ctx, requests)
	if len(got) != len(tasks) {
		err := fmt.Errorf("batch resolver returned %d results for %d tasks", len(got), len(tasks))
		for i := range results {
			results[i].Error = err
		}
		return results
	}
	return got
}

func (s *executionState) nullify(p Path) {
	if key := p.String(); key != "" {
		s.nullified[key] = struct{}{}
	}
}

func (s *executionState) isNullified(p Path) bool {
	if len(s.nullified) == 0 {
		return false
	}
	for i := 1; i <= len(p); i++ {
		if _, ok := s.nullified[p[:i].String()]; ok {
			return true
		}
	}
	return false
}
