package serverlessgql

import (
	"context"
	"fmt"
	"iter"

	binder "github.com/hanpama/serverlessgql/internal/binder"
	executor "github.com/hanpama/serverlessgql/internal/executor"
	schema "github.com/hanpama/serverlessgql/internal/schema"
)

// Resolver map types. A ResolverMap maps type names to TypeResolvers, which
// map field names to a ResolverFunc or, on the subscription type, a
// SubscriptionResolver.
type (
	ResolverMap          = binder.ResolverMap
	TypeResolvers        = binder.TypeResolvers
	FieldResolver        = binder.FieldResolver
	ResolverFunc         = binder.ResolverFunc
	SubscribeFunc        = binder.SubscribeFunc
	SubscriptionResolver = binder.SubscriptionResolver
	MismatchError        = binder.MismatchError
)

// ExecutableSchema is a compiled schema with a resolver map bound to it.
type ExecutableSchema = binder.ExecutableSchema

// Result types shared with the executor.
type (
	ExecutionResult = executor.ExecutionResult
	GraphQLError    = executor.GraphQLError
	Location        = executor.Location
	ResultStream    = executor.ResultStream
)

// schemaSourceName labels SDL positions in compile errors.
const schemaSourceName = "schema.graphql"

// MakeExecutableSchema compiles typeDefs and binds resolvers onto it.
// Resolver map entries that do not match the schema are ignored.
func MakeExecutableSchema(typeDefs string, resolvers ResolverMap) (*ExecutableSchema, error) {
	compiled, err := compile(typeDefs)
	if err != nil {
		return nil, err
	}
	return binder.Bind(compiled, resolvers), nil
}

func compile(typeDefs string) (*schema.Schema, error) {
	compiled, err := schema.BuildFromSDL(schemaSourceName, typeDefs)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// Results ranges over stream and closes it when the loop ends.
func Results(ctx context.Context, stream ResultStream) iter.Seq2[*ExecutionResult, error] {
	return executor.Results(ctx, stream)
}
