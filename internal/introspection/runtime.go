package introspection

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	executor "github.com/hanpama/serverlessgql/internal/executor"
	schema "github.com/hanpama/serverlessgql/internal/schema"
)

// Wrapper pairs a Runtime that answers introspection fields with the schema
// it must be executed against.
type Wrapper struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap extends sch with the introspection types and returns a Runtime that
// resolves them, delegating every other field to base. sch itself is left
// untouched. Subscriptions are forwarded to base when it supports them.
func Wrap(base executor.Runtime, sch *schema.Schema) (*Wrapper, error) {
	extended, err := extend(sch)
	if err != nil {
		return nil, err
	}
	return &Wrapper{
		Runtime: &runtime{base: base, schema: extended},
		Schema:  extended,
	}, nil
}

type runtime struct {
	base   executor.Runtime
	schema *schema.Schema
}

type args = map[string]any

// fieldTable maps the fields of one introspection type to their resolvers.
type fieldTable[T any] map[string]func(r *runtime, src T, a args) any

func (t fieldTable[T]) resolve(r *runtime, src T, field string, a args) (any, bool) {
	f, ok := t[field]
	if !ok {
		return nil, false
	}
	return f(r, src, a), true
}

var schemaFields = fieldTable[*schema.Schema]{
	"description": func(_ *runtime, s *schema.Schema, _ args) any { return optional(s.Description) },
	"types": func(_ *runtime, s *schema.Schema, _ args) any {
		return sortedValues(s.Types, func(t *schema.Type) string { return t.Name })
	},
	"queryType":        func(_ *runtime, s *schema.Schema, _ args) any { return s.GetQueryType() },
	"mutationType":     func(_ *runtime, s *schema.Schema, _ args) any { return s.GetMutationType() },
	"subscriptionType": func(_ *runtime, s *schema.Schema, _ args) any { return s.GetSubscriptionType() },
	"directives": func(_ *runtime, s *schema.Schema, _ args) any {
		return sortedValues(s.Directives, func(d *schema.Directive) string { return d.Name })
	},
}

var typeFields = fieldTable[*schema.Type]{
	"kind":           func(_ *runtime, t *schema.Type, _ args) any { return string(t.Kind) },
	"name":           func(_ *runtime, t *schema.Type, _ args) any { return t.Name },
	"description":    func(_ *runtime, t *schema.Type, _ args) any { return t.Description },
	"specifiedByURL": func(_ *runtime, t *schema.Type, _ args) any { return deref(t.SpecifiedByURL) },
	"isOneOf":        func(_ *runtime, t *schema.Type, _ args) any { return t.OneOf },
	"ofType": func(*runtime, *schema.Type, args) any {
		return nil // named types never wrap another type
	},
	"fields": func(_ *runtime, t *schema.Type, a args) any {
		if !isComposite(t) {
			return nil
		}
		fields := slices.DeleteFunc(slices.Clone(t.Fields), func(f *schema.Field) bool {
			return schema.IsIntrospectionName(f.Name)
		})
		return visible(fields, a, func(f *schema.Field) bool { return f.IsDeprecated })
	},
	"interfaces": func(r *runtime, t *schema.Type, _ args) any {
		if !isComposite(t) {
			return nil
		}
		return r.lookup(t.Interfaces)
	},
	"possibleTypes": func(r *runtime, t *schema.Type, _ args) any {
		if t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion {
			return nil
		}
		return r.lookup(t.PossibleTypes)
	},
	"enumValues": func(_ *runtime, t *schema.Type, a args) any {
		if t.Kind != schema.TypeKindEnum {
			return nil
		}
		return visible(t.EnumValues, a, func(v *schema.EnumValue) bool { return v.IsDeprecated })
	},
	"inputFields": func(_ *runtime, t *schema.Type, a args) any {
		if t.Kind != schema.TypeKindInputObject {
			return nil
		}
		return visible(t.InputFields, a, func(v *schema.InputValue) bool { return v.IsDeprecated })
	},
}

var fieldFields = fieldTable[*schema.Field]{
	"name":         func(_ *runtime, f *schema.Field, _ args) any { return f.Name },
	"description":  func(_ *runtime, f *schema.Field, _ args) any { return f.Description },
	"type":         func(_ *runtime, f *schema.Field, _ args) any { return f.Type },
	"isDeprecated": func(_ *runtime, f *schema.Field, _ args) any { return f.IsDeprecated },
	"deprecationReason": func(_ *runtime, f *schema.Field, _ args) any {
		return reason(f.IsDeprecated, f.DeprecationReason)
	},
	"args": func(_ *runtime, f *schema.Field, a args) any {
		return visible(f.Arguments, a, func(v *schema.InputValue) bool { return v.IsDeprecated })
	},
}

var inputValueFields = fieldTable[*schema.InputValue]{
	"name":         func(_ *runtime, v *schema.InputValue, _ args) any { return v.Name },
	"description":  func(_ *runtime, v *schema.InputValue, _ args) any { return v.Description },
	"type":         func(_ *runtime, v *schema.InputValue, _ args) any { return v.Type },
	"isDeprecated": func(_ *runtime, v *schema.InputValue, _ args) any { return v.IsDeprecated },
	"deprecationReason": func(_ *runtime, v *schema.InputValue, _ args) any {
		return reason(v.IsDeprecated, v.DeprecationReason)
	},
	// Defaults are reported as GraphQL literals.
	"defaultValue": func(_ *runtime, v *schema.InputValue, _ args) any {
		switch {
		case v.DefaultLiteral != "":
			return optional(v.DefaultLiteral)
		case v.DefaultValue != nil:
			return optional(fmt.Sprint(v.DefaultValue))
		}
		return nil
	},
}

var enumValueFields = fieldTable[*schema.EnumValue]{
	"name":         func(_ *runtime, v *schema.EnumValue, _ args) any { return v.Name },
	"description":  func(_ *runtime, v *schema.EnumValue, _ args) any { return v.Description },
	"isDeprecated": func(_ *runtime, v *schema.EnumValue, _ args) any { return v.IsDeprecated },
	"deprecationReason": func(_ *runtime, v *schema.EnumValue, _ args) any {
		return reason(v.IsDeprecated, v.DeprecationReason)
	},
}

var directiveFields = fieldTable[*schema.Directive]{
	"name":         func(_ *runtime, d *schema.Directive, _ args) any { return d.Name },
	"description":  func(_ *runtime, d *schema.Directive, _ args) any { return d.Description },
	"isRepeatable": func(_ *runtime, d *schema.Directive, _ args) any { return d.IsRepeatable },
	"locations":    func(_ *runtime, d *schema.Directive, _ args) any { return slices.Clone(d.Locations) },
	"args": func(_ *runtime, d *schema.Directive, a args) any {
		return visible(d.Arguments, a, func(v *schema.InputValue) bool { return v.IsDeprecated })
	},
}

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, a map[string]any) (any, error) {
	var (
		v  any
		ok bool
	)
	switch src := source.(type) {
	case *schema.Schema:
		v, ok = schemaFields.resolve(r, src, field, a)
	case *schema.Type:
		v, ok = typeFields.resolve(r, src, field, a)
	case *schema.TypeRef:
		v, ok = r.resolveTypeRef(src, field, a)
	case *schema.Field:
		v, ok = fieldFields.resolve(r, src, field, a)
	case *schema.InputValue:
		v, ok = inputValueFields.resolve(r, src, field, a)
	case *schema.EnumValue:
		v, ok = enumValueFields.resolve(r, src, field, a)
	case *schema.Directive:
		v, ok = directiveFields.resolve(r, src, field, a)
	}
	if ok {
		return v, nil
	}

	if objectType == r.schema.QueryType {
		switch field {
		case "__schema":
			return r.schema, nil
		case "__type":
			name, _ := a["name"].(string)
			return r.schema.Types[name], nil
		}
	}
	return r.base.ResolveSync(ctx, objectType, field, source, a)
}

// resolveTypeRef answers __Type fields for a type reference. Wrappers
// (LIST and NON_NULL) expose only kind and ofType; a named reference is
// answered by the type it names.
func (r *runtime) resolveTypeRef(ref *schema.TypeRef, field string, a args) (any, bool) {
	if ref.Kind == schema.TypeRefKindNamed {
		named := r.schema.Types[ref.Named]
		if named == nil {
			return nil, true
		}
		return typeFields.resolve(r, named, field, a)
	}
	switch field {
	case "kind":
		return string(ref.Kind), true
	case "ofType":
		return ref.OfType, true
	}
	return nil, true
}

func (r *runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	return r.base.BatchResolveAsync(ctx, tasks)
}

func (r *runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	return r.base.ResolveType(ctx, abstractType, value)
}

// SerializeLeafValue serializes __TypeKind and __DirectiveLocation itself;
// the base runtime has never heard of them.
func (r *runtime) SerializeLeafValue(ctx context.Context, typ string, value any) (any, error) {
	if schema.IsIntrospectionName(typ) {
		return fmt.Sprint(value), nil
	}
	return r.base.SerializeLeafValue(ctx, typ, value)
}

func (r *runtime) ResolveSubscribe(ctx context.Context, objectType, field string, source any, a map[string]any) (<-chan any, error) {
	sub, ok := r.base.(executor.SubscribeResolver)
	if !ok {
		return nil, fmt.Errorf("runtime does not support subscriptions")
	}
	return sub.ResolveSubscribe(ctx, objectType, field, source, a)
}

// lookup returns the named types that exist, sorted by name.
func (r *runtime) lookup(names []string) []*schema.Type {
	out := make([]*schema.Type, 0, len(names))
	for _, name := range names {
		if t := r.schema.Types[name]; t != nil {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b *schema.Type) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// visible drops deprecated items unless includeDeprecated is true.
func visible[T any](items []T, a args, deprecated func(T) bool) []T {
	include, _ := a["includeDeprecated"].(bool)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !include && deprecated(item) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func sortedValues[T any](m map[string]T, name func(T) string) []T {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(name(a), name(b)) })
	return out
}

func isComposite(t *schema.Type) bool {
	return t.Kind == schema.TypeKindObject || t.Kind == schema.TypeKindInterface
}

// optional reports an empty string as null.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func reason(deprecated bool, why string) any {
	if !deprecated {
		return nil
	}
	return why
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
