package schema

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// annotationDirectives are declared by every schema and never rendered.
var annotationDirectives = map[string]bool{
	"include": true, "skip": true, "deprecated": true, "specifiedBy": true, "oneOf": true,
}

// Render prints s as SDL. Types and directives are sorted by name; builtin
// scalars and the introspection types are left out.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	w := &sdlWriter{}
	w.schemaBlock(s)
	for _, name := range slices.Sorted(maps.Keys(s.Types)) {
		if IsBuiltinScalar(name) || IsIntrospectionName(name) {
			continue
		}
		w.typeDef(s.Types[name])
	}
	for _, name := range slices.Sorted(maps.Keys(s.Directives)) {
		if !annotationDirectives[name] {
			w.directiveDef(s.Directives[name])
		}
	}
	return strings.TrimRight(w.String(), "\n") + "\n"
}

type sdlWriter struct{ strings.Builder }

func (w *sdlWriter) printf(format string, args ...any) { fmt.Fprintf(w, format, args...) }

// schemaBlock is written only when it carries something: a description or
// root types with unconventional names.
func (w *sdlWriter) schemaBlock(s *Schema) {
	conventional := s.QueryType == "Query" &&
		(s.MutationType == "" || s.MutationType == "Mutation") &&
		(s.SubscriptionType == "" || s.SubscriptionType == "Subscription")
	if conventional && s.Description == "" {
		return
	}
	w.description(s.Description)
	w.printf("schema {\n  query: %s\n", s.QueryType)
	if s.MutationType != "" {
		w.printf("  mutation: %s\n", s.MutationType)
	}
	if s.SubscriptionType != "" {
		w.printf("  subscription: %s\n", s.SubscriptionType)
	}
	w.printf("}\n\n")
}

func (w *sdlWriter) typeDef(t *Type) {
	w.description(t.Description)
	switch t.Kind {
	case TypeKindScalar:
		w.printf("scalar %s", t.Name)
		if t.SpecifiedByURL != nil {
			w.printf(" @specifiedBy(url: %s)", strconv.Quote(*t.SpecifiedByURL))
		}
		w.printf("\n\n")
	case TypeKindEnum:
		w.printf("enum %s {\n", t.Name)
		for _, v := range t.EnumValues {
			w.description(v.Description)
			w.printf("  %s", v.Name)
			w.deprecated(v.IsDeprecated, v.DeprecationReason)
			w.printf("\n")
		}
		w.printf("}\n\n")
	case TypeKindInputObject:
		w.printf("input %s", t.Name)
		if t.OneOf {
			w.printf(" @oneOf")
		}
		w.printf(" {\n")
		for _, f := range t.InputFields {
			w.description(f.Description)
			w.printf("  %s", inputValueSDL(f))
			w.deprecated(f.IsDeprecated, f.DeprecationReason)
			w.printf("\n")
		}
		w.printf("}\n\n")
	case TypeKindObject, TypeKindInterface:
		keyword := "type"
		if t.Kind == TypeKindInterface {
			keyword = "interface"
		}
		w.printf("%s %s", keyword, t.Name)
		if len(t.Interfaces) > 0 {
			w.printf(" implements %s", strings.Join(t.Interfaces, " & "))
		}
		w.printf(" {\n")
		for _, f := range t.Fields {
			w.description(f.Description)
			w.printf("  %s%s: %s", f.Name, argumentsSDL(f.Arguments), f.Type)
			w.deprecated(f.IsDeprecated, f.DeprecationReason)
			w.printf("\n")
		}
		w.printf("}\n\n")
	case TypeKindUnion:
		w.printf("union %s = %s\n\n", t.Name, strings.Join(t.PossibleTypes, " | "))
	}
}

func (w *sdlWriter) directiveDef(d *Directive) {
	w.description(d.Description)
	w.printf("directive @%s%s", d.Name, argumentsSDL(d.Arguments))
	if d.IsRepeatable {
		w.printf(" repeatable")
	}
	w.printf(" on %s\n\n", strings.Join(d.Locations, " | "))
}

func (w *sdlWriter) description(desc string) {
	if desc != "" {
		w.printf("\"\"\"\n%s\n\"\"\"\n", strings.ReplaceAll(desc, `"`, `\"`))
	}
}

func (w *sdlWriter) deprecated(deprecated bool, reason string) {
	switch {
	case !deprecated:
	case reason == "":
		w.printf(" @deprecated")
	default:
		w.printf(" @deprecated(reason: %s)", strconv.Quote(reason))
	}
}

func argumentsSDL(args []*InputValue) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = inputValueSDL(a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func inputValueSDL(v *InputValue) string {
	out := v.Name + ": " + v.Type.String()
	switch {
	case v.DefaultLiteral != "":
		out += " = " + v.DefaultLiteral
	case v.DefaultValue != nil:
		out += " = " + valueSDL(v.DefaultValue)
	}
	return out
}

// valueSDL prints a Go value as a GraphQL literal. Strings are quoted;
// anything unrecognised is printed bare, which suits enum values.
func valueSDL(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = valueSDL(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		parts := make([]string, 0, len(v))
		for _, k := range slices.Sorted(maps.Keys(v)) {
			parts = append(parts, k+": "+valueSDL(v[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprint(value)
}
