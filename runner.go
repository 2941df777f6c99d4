package serverlessgql

import (
	"context"
	"errors"
	"fmt"
	"time"

	binder "github.com/hanpama/serverlessgql/internal/binder"
	eventbus "github.com/hanpama/serverlessgql/internal/eventbus"
	events "github.com/hanpama/serverlessgql/internal/events"
	executor "github.com/hanpama/serverlessgql/internal/executor"
	introspection "github.com/hanpama/serverlessgql/internal/introspection"
	language "github.com/hanpama/serverlessgql/internal/language"
	logging "github.com/hanpama/serverlessgql/internal/logging"
	otel "github.com/hanpama/serverlessgql/internal/otel"
)

// QueryRunner executes requests against one executable schema. It is safe
// for concurrent use.
type QueryRunner struct {
	schema   *ExecutableSchema
	document *language.SchemaAST
	exec     *executor.Executor
	bus      *eventbus.Bus
}

// NewQueryRunner compiles typeDefs, binds resolvers and returns a runner for
// the result.
func NewQueryRunner(typeDefs string, resolvers ResolverMap, opts ...Option) (*QueryRunner, error) {
	op := newOptions(opts)
	compiled, err := compile(typeDefs)
	if err != nil {
		return nil, err
	}
	if op.StrictResolvers {
		if err := binder.Check(compiled, resolvers); err != nil {
			return nil, err
		}
	}
	return newRunner(binder.Bind(compiled, resolvers), op)
}

// NewQueryRunnerFromSchema returns a runner for an already built executable
// schema. StrictResolvers has no effect here.
func NewQueryRunnerFromSchema(es *ExecutableSchema, opts ...Option) (*QueryRunner, error) {
	if es == nil || es.Schema() == nil {
		return nil, errors.New("executable schema is required")
	}
	return newRunner(es, newOptions(opts))
}

func newRunner(es *ExecutableSchema, op Options) (*QueryRunner, error) {
	var runtime executor.Runtime = es
	sch := es.Schema()
	if op.Introspection {
		w, err := introspection.Wrap(es, sch)
		if err != nil {
			return nil, err
		}
		runtime, sch = w.Runtime, w.Schema
	}

	var bus *eventbus.Bus
	if op.Logger != nil || op.TracerProvider != nil {
		bus = eventbus.New()
		if op.Logger != nil {
			logging.Attach(bus, *op.Logger)
		}
		if op.TracerProvider != nil {
			otel.Attach(bus, op.TracerProvider)
		}
	}

	return &QueryRunner{
		schema:   es,
		document: es.Schema().Document,
		exec:     executor.NewExecutor(runtime, sch),
		bus:      bus,
	}, nil
}

// Schema returns the executable schema requests run against.
func (r *QueryRunner) Schema() *ExecutableSchema { return r.schema }

// RunQuery executes a query or mutation. raw is anything Normalize accepts;
// a malformed request is returned as an error before any execution work.
// Syntax, validation and execution errors are reported in the result.
func (r *QueryRunner) RunQuery(ctx context.Context, raw any) (*ExecutionResult, error) {
	req, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	ctx = withRequest(ctx, req)

	doc, errs := r.loadQuery(req.Req)
	info := operationInfo(doc, req)
	start := time.Now()
	eventbus.Emit(r.bus, ctx, events.OperationStart{Query: req.Req, OperationName: info.name, OperationType: info.typ})

	var result *ExecutionResult
	if len(errs) > 0 {
		result = &ExecutionResult{Errors: errs}
	} else {
		result = r.exec.ExecuteRequest(ctx, doc, req.OperationToRun, req.Variables, req.Root)
	}

	eventbus.Emit(r.bus, ctx, events.OperationFinish{
		Query:         req.Req,
		OperationName: info.name,
		OperationType: info.typ,
		Errors:        resultErrors(result),
		Duration:      time.Since(start),
	})
	return result, nil
}

// RunSubscription establishes a subscription and returns its results as a
// stream. raw is anything Normalize accepts. A malformed request or a
// document that does not parse is returned as an error. Every other failure
// to establish the subscription, validation errors included, is reported as
// a stream yielding one result with the errors.
//
// ctx bounds the lifetime of the subscription: the subscribe resolver
// receives a context derived from it, cancelled by Close.
func (r *QueryRunner) RunSubscription(ctx context.Context, raw any) (ResultStream, error) {
	req, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	doc, err := language.ParseQuery(req.Req)
	if err != nil {
		return nil, fmt.Errorf("parse subscription request: %w", err)
	}
	ctx = withRequest(ctx, req)

	info := operationInfo(doc, req)
	start := time.Now()
	eventbus.Emit(r.bus, ctx, events.OperationStart{Query: req.Req, OperationName: info.name, OperationType: info.typ})

	var outcome executor.Outcome
	if errs := r.validate(doc); len(errs) > 0 {
		outcome = executor.Single(&ExecutionResult{Errors: errs})
	} else {
		outcome = r.exec.Subscribe(ctx, doc, req.OperationToRun, req.Variables, req.Root)
	}

	var refused []error
	if result, ok := outcome.Result(); ok {
		refused = resultErrors(result)
	}
	eventbus.Emit(r.bus, ctx, events.OperationFinish{
		Query:         req.Req,
		OperationName: info.name,
		OperationType: info.typ,
		Errors:        refused,
		Duration:      time.Since(start),
	})

	return r.observe(ctx, info.name, start, adapt(outcome)), nil
}

func (r *QueryRunner) loadQuery(text string) (*language.QueryDocument, []GraphQLError) {
	if r.document == nil {
		doc, err := language.ParseQuery(text)
		if err != nil {
			return nil, []GraphQLError{executor.ErrorFromError(err)}
		}
		return doc, nil
	}
	doc, errs := language.LoadQuery(r.document, text)
	if len(errs) > 0 {
		return nil, executor.ErrorsFromList(errs)
	}
	return doc, nil
}

func (r *QueryRunner) validate(doc *language.QueryDocument) []GraphQLError {
	if r.document == nil {
		return nil
	}
	if errs := language.Validate(r.document, doc); len(errs) > 0 {
		return executor.ErrorsFromList(errs)
	}
	return nil
}

type opInfo struct {
	name string
	typ  string
}

// operationInfo names the operation req selects, when doc is available and
// the selection is unambiguous.
func operationInfo(doc *language.QueryDocument, req Request) opInfo {
	info := opInfo{name: req.OperationToRun}
	if doc == nil {
		return info
	}
	op := doc.Operations.ForName(req.OperationToRun)
	if op == nil && req.OperationToRun == "" && len(doc.Operations) == 1 {
		op = doc.Operations[0]
	}
	if op != nil {
		info.name = op.Name
		info.typ = string(op.Operation)
	}
	return info
}

func resultErrors(result *ExecutionResult) []error {
	if result == nil || len(result.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(result.Errors))
	for i := range result.Errors {
		errs[i] = result.Errors[i]
	}
	return errs
}
