// Package executor runs GraphQL operations breadth first against a Runtime.
//
// # Execution model
//
// Fields are split by schema.Field.Async. Synchronous fields are resolved
// through Runtime.ResolveSync as soon as they are reached and expanded in
// place, so a chain of them never adds depth. Asynchronous fields found while
// expanding one depth are queued and handed to Runtime.BatchResolveAsync in a
// single ordered call; their object results seed the next depth. For an
// operation whose asynchronous nesting is d, BatchResolveAsync is called d
// times.
//
// Each iteration runs:
//
//	A. Sync expansion: coerce arguments, resolve sync fields and complete
//	   them immediately; queue async fields for this depth.
//	B. Batch: resolve the queued tasks in one call (one result per task, in
//	   order), skipping tasks under paths already nulled.
//	C. Null propagation: a Non-Null violation met while expanding nulls the
//	   enclosing object; one met in a batch nulls the root field above it
//	   and drops queued work beneath it.
//
// Root mutation fields bound to resolvers are async and land in the first
// batch in document order. Runtimes that must preserve mutation order resolve
// a batch sequentially.
//
// # Value completion
//
// Lists complete element by element with index paths. Scalars and enums go
// through Runtime.SerializeLeafValue. Interfaces and unions ask
// Runtime.ResolveType for the concrete type and check it against the schema's
// possible types. Fragment type conditions match the concrete type, any
// interface it implements and any union containing it.
//
// # Errors
//
// Request level failures (no such operation, bad variables) produce a result
// with errors and no data. Field errors carry the response path and, when the
// resolver error provides them, extensions; execution continues around them.
// Once the context is done no further batch is sent and the queued fields
// fail with the context's error.
//
// # Subscriptions
//
// Subscribe resolves the first root field through SubscribeResolver and
// returns an Outcome: Single with the errors when the subscription cannot be
// established, otherwise Streamed with a ResultStream that executes the
// operation once per event, using the event as the root value.
package executor
