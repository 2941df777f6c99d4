package binder

import (
	schema "github.com/hanpama/serverlessgql/internal/schema"
)

type fieldKey struct {
	objectType string
	field      string
}

// ExecutableSchema is a compiled schema with resolvers bound to its fields.
// It implements executor.Runtime and executor.SubscribeResolver and is never
// modified after Bind returns, so one value may serve concurrent requests.
type ExecutableSchema struct {
	schema        *schema.Schema
	resolvers     map[fieldKey]ResolverFunc
	subscriptions map[string]SubscriptionResolver
}

// Schema returns the bound schema. Fields with a resolver are marked Async.
// Callers must treat it as read-only.
func (es *ExecutableSchema) Schema() *schema.Schema { return es.schema }

// Bind attaches resolvers to a copy of compiled. compiled is not modified.
//
// Entries naming types or fields that the schema does not define are
// ignored, as are entries whose shape does not fit the field: a
// ResolverFunc on the subscription type, or a SubscriptionResolver anywhere
// else. Use Check to report them. An object field with no entry inherits a
// ResolverFunc bound to the same field of an interface it implements.
func Bind(compiled *schema.Schema, resolvers ResolverMap) *ExecutableSchema {
	s := compiled.Clone()
	es := &ExecutableSchema{
		schema:        s,
		resolvers:     make(map[fieldKey]ResolverFunc),
		subscriptions: make(map[string]SubscriptionResolver),
	}

	for name, typ := range s.Types {
		if schema.IsIntrospectionName(name) || schema.IsBuiltinScalar(name) {
			continue
		}
		if typ.Kind != schema.TypeKindObject && typ.Kind != schema.TypeKindInterface {
			continue
		}
		entries := resolvers[name]
		for _, field := range typ.Fields {
			if schema.IsIntrospectionName(field.Name) {
				continue
			}
			if name == s.SubscriptionType {
				if sr, ok := asSubscriptionResolver(entries[field.Name]); ok {
					es.subscriptions[field.Name] = sr
					if sr.Resolve != nil {
						field.SetAsync(true)
					}
				}
				continue
			}
			fn := asResolverFunc(entries[field.Name])
			if fn == nil && typ.Kind == schema.TypeKindObject {
				fn = inheritedResolver(typ, field.Name, resolvers)
			}
			if fn != nil {
				es.resolvers[fieldKey{name, field.Name}] = fn
				field.SetAsync(true)
			}
		}
	}
	return es
}

func inheritedResolver(typ *schema.Type, field string, resolvers ResolverMap) ResolverFunc {
	for _, iface := range typ.Interfaces {
		if fn := asResolverFunc(resolvers[iface][field]); fn != nil {
			return fn
		}
	}
	return nil
}

func asResolverFunc(entry FieldResolver) ResolverFunc {
	fn, _ := entry.(ResolverFunc)
	return fn
}

func asSubscriptionResolver(entry FieldResolver) (SubscriptionResolver, bool) {
	switch sr := entry.(type) {
	case SubscriptionResolver:
		return sr, true
	case *SubscriptionResolver:
		if sr != nil {
			return *sr, true
		}
	}
	return SubscriptionResolver{}, false
}
