// Package serverlessgql runs GraphQL requests against a schema built from SDL
// text and a map of field resolvers. It is meant for short-lived, stateless
// invocations such as serverless functions: the schema is compiled and bound
// once, and every request reuses it read-only.
//
//	runner, err := serverlessgql.NewQueryRunner(typeDefs, serverlessgql.ResolverMap{
//		"Query": {"hello": serverlessgql.ResolverFunc(hello)},
//	})
//	res, err := runner.RunQuery(ctx, "{ hello }")
//
// Subscriptions always come back as a ResultStream, including when the
// subscription could not be established; in that case the stream yields a
// single result carrying the errors.
package serverlessgql
