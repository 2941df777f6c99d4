// Package binder attaches caller-supplied field resolvers to a compiled
// schema and serves the result to the executor as a Runtime.
//
// Fields with a resolver are marked async on a private copy of the schema so
// the executor batches them; every other field is served by the default
// resolver, which reads the field from the parent value.
package binder

import "context"

// FieldResolver is the value stored for a field in a ResolverMap. It is
// implemented by ResolverFunc and SubscriptionResolver only.
type FieldResolver interface {
	isFieldResolver()
}

// ResolverFunc resolves one field of one parent value.
type ResolverFunc func(ctx context.Context, source any, args map[string]any) (any, error)

// SubscribeFunc opens the event source of a subscription root field. Closing
// the channel ends the stream; an error value received from it is reported
// as a source failure. Implementations should stop sending once ctx is done.
type SubscribeFunc func(ctx context.Context, source any, args map[string]any) (<-chan any, error)

// SubscriptionResolver binds a subscription root field. Subscribe produces
// the event source and Resolve maps every event to the field value. Either
// may be nil, in which case the default applies: the source is read from the
// root value, and the field is read from the event.
type SubscriptionResolver struct {
	Subscribe SubscribeFunc
	Resolve   ResolverFunc
}

// TypeResolvers maps field names of one type to their resolvers.
type TypeResolvers map[string]FieldResolver

// ResolverMap maps type names to the resolvers of their fields.
type ResolverMap map[string]TypeResolvers

func (ResolverFunc) isFieldResolver()         {}
func (SubscriptionResolver) isFieldResolver() {}
