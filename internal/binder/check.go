package binder

import (
	"errors"
	"fmt"
	"slices"

	schema "github.com/hanpama/serverlessgql/internal/schema"
)

// MismatchError describes a ResolverMap entry that Bind ignores.
type MismatchError struct {
	Type   string
	Field  string // empty when the whole type entry is at fault
	Reason string
}

func (e *MismatchError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("resolver map: type %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("resolver map: %s.%s: %s", e.Type, e.Field, e.Reason)
}

// Check reports every entry of resolvers that does not fit compiled: unknown
// types and fields, nil resolvers, subscription fields bound with anything
// other than a SubscriptionResolver with a Subscribe function, and
// SubscriptionResolver values outside the subscription type. The result
// joins one *MismatchError per problem, in type then field name order, or is
// nil when every entry binds.
func Check(compiled *schema.Schema, resolvers ResolverMap) error {
	var errs []error
	mismatch := func(typeName, field, reason string) {
		errs = append(errs, &MismatchError{Type: typeName, Field: field, Reason: reason})
	}

	typeNames := make([]string, 0, len(resolvers))
	for name := range resolvers {
		typeNames = append(typeNames, name)
	}
	slices.Sort(typeNames)

	for _, typeName := range typeNames {
		typ := compiled.Types[typeName]
		if typ == nil || schema.IsIntrospectionName(typeName) {
			mismatch(typeName, "", "not defined in the schema")
			continue
		}
		if typ.Kind != schema.TypeKindObject && typ.Kind != schema.TypeKindInterface {
			mismatch(typeName, "", fmt.Sprintf("%s types have no field resolvers", typ.Kind))
			continue
		}

		entries := resolvers[typeName]
		fieldNames := make([]string, 0, len(entries))
		for name := range entries {
			fieldNames = append(fieldNames, name)
		}
		slices.Sort(fieldNames)

		for _, fieldName := range fieldNames {
			if typ.Field(fieldName) == nil || schema.IsIntrospectionName(fieldName) {
				mismatch(typeName, fieldName, "not defined in the schema")
				continue
			}
			entry := entries[fieldName]
			if typeName == compiled.SubscriptionType {
				sr, ok := asSubscriptionResolver(entry)
				switch {
				case !ok:
					mismatch(typeName, fieldName, fmt.Sprintf("subscription fields take a SubscriptionResolver, got %T", entry))
				case sr.Subscribe == nil:
					mismatch(typeName, fieldName, "SubscriptionResolver has no Subscribe function")
				}
				continue
			}
			if _, ok := asSubscriptionResolver(entry); ok {
				mismatch(typeName, fieldName, "SubscriptionResolver is only valid on the subscription type")
				continue
			}
			if asResolverFunc(entry) == nil {
				mismatch(typeName, fieldName, "nil resolver")
			}
		}
	}
	return errors.Join(errs...)
}
