package schema

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	language "github.com/hanpama/serverlessgql/internal/language"
)

const defaultDeprecationReason = "No longer supported"

// preludeDirectives are the built-in directives an executable schema keeps.
// The rest of the prelude (@deprecated, @specifiedBy, @oneOf) only annotates
// type definitions and is folded into the built types.
var preludeDirectives = map[string]bool{"include": true, "skip": true}

// BuildFromSDL parses and validates SDL type definitions and builds an
// executable schema from them. Fields are left synchronous; a runtime that
// resolves them marks them Async on its own copy.
func BuildFromSDL(name, sdl string) (*Schema, error) {
	doc, err := language.LoadSchema(name, sdl)
	if err != nil {
		return nil, err
	}
	return BuildFromAST(doc)
}

// BuildFromAST builds a Schema from a validated gqlparser schema. Types and
// fields in the introspection namespace are left out; see MetaTypes.
func BuildFromAST(doc *language.SchemaAST) (*Schema, error) {
	if doc == nil {
		return nil, fmt.Errorf("schema: nil document")
	}
	if doc.Query == nil {
		return nil, fmt.Errorf("schema: query root type must be provided")
	}
	s := NewSchema(doc.Description)
	s.Document = doc
	s.SetQueryType(doc.Query.Name)
	if doc.Mutation != nil {
		s.SetMutationType(doc.Mutation.Name)
	}
	if doc.Subscription != nil {
		s.SetSubscriptionType(doc.Subscription.Name)
	}

	for name, def := range doc.Types {
		if IsIntrospectionName(name) {
			continue
		}
		if isPrelude(def.Position) && !IsBuiltinScalar(name) {
			continue
		}
		t, err := buildDefinition(doc, def)
		if err != nil {
			return nil, err
		}
		s.AddType(t)
	}
	for name, dir := range doc.Directives {
		if isPrelude(dir.Position) && !preludeDirectives[name] {
			continue
		}
		d, err := buildDirective(dir)
		if err != nil {
			return nil, err
		}
		s.AddDirective(d)
	}
	return s, nil
}

// MetaTypes builds the introspection types (__Schema, __Type and the rest)
// that the validator's prelude declares in doc.
func MetaTypes(doc *language.SchemaAST) ([]*Type, error) {
	var out []*Type
	for name, def := range doc.Types {
		if !IsIntrospectionName(name) {
			continue
		}
		t, err := buildDefinition(doc, def)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func buildDefinition(doc *language.SchemaAST, def *ast.Definition) (*Type, error) {
	switch def.Kind {
	case ast.Object:
		return buildComposite(def, TypeKindObject), nil
	case ast.Interface:
		t := buildComposite(def, TypeKindInterface)
		for _, impl := range doc.PossibleTypes[def.Name] {
			t.AddPossibleType(impl.Name)
		}
		return t, nil
	case ast.Union:
		t := NewType(def.Name, TypeKindUnion, def.Description)
		for _, name := range def.Types {
			t.AddPossibleType(name)
		}
		return t, nil
	case ast.Enum:
		t := NewType(def.Name, TypeKindEnum, def.Description)
		for _, v := range def.EnumValues {
			e := NewEnumValue(v.Name, v.Description)
			if reason, ok := deprecation(v.Directives); ok {
				e.Deprecate(reason)
			}
			t.AddEnumValue(e)
		}
		return t, nil
	case ast.InputObject:
		t := NewType(def.Name, TypeKindInputObject, def.Description)
		t.SetOneOf(def.Directives.ForName("oneOf") != nil)
		for _, f := range def.Fields {
			v, err := buildInputValue(def.Name, f.Name, f.Description, f.Type, f.DefaultValue, f.Directives)
			if err != nil {
				return nil, err
			}
			t.AddInputField(v)
		}
		return t, nil
	case ast.Scalar:
		t := NewType(def.Name, TypeKindScalar, def.Description)
		if url := directiveArg(def.Directives, "specifiedBy", "url"); url != nil {
			t.SetSpecifiedByURL(url.Raw)
		}
		return t, nil
	}
	return nil, fmt.Errorf("schema: unsupported definition kind %q for %s", def.Kind, def.Name)
}

// buildComposite builds an object or interface type. Meta fields such as
// __typename are answered by the executor and never listed.
func buildComposite(def *ast.Definition, kind TypeKind) *Type {
	t := NewType(def.Name, kind, def.Description)
	t.Interfaces = append(t.Interfaces, def.Interfaces...)
	for _, fd := range def.Fields {
		if IsIntrospectionName(fd.Name) {
			continue
		}
		f := NewField(fd.Name, fd.Description, buildTypeRef(fd.Type))
		if reason, ok := deprecation(fd.Directives); ok {
			f.Deprecate(reason)
		}
		for _, arg := range fd.Arguments {
			// The validator already checked argument defaults.
			v, _ := buildInputValue(def.Name+"."+fd.Name, arg.Name, arg.Description, arg.Type, arg.DefaultValue, arg.Directives)
			f.AddArgument(v)
		}
		t.AddField(f)
	}
	return t
}

// buildInputValue builds an argument or input field; owner names where it
// is declared, for errors.
func buildInputValue(owner, name, description string, typ *ast.Type, def *ast.Value, dirs ast.DirectiveList) (*InputValue, error) {
	v := NewInputValue(name, description, buildTypeRef(typ))
	if reason, ok := deprecation(dirs); ok {
		v.Deprecate(reason)
	}
	if def == nil {
		return v, nil
	}
	val, err := def.Value(nil)
	if err != nil {
		return v, fmt.Errorf("schema: default value of %s(%s): %w", owner, name, err)
	}
	v.SetDefault(val, def.String())
	return v, nil
}

func buildDirective(def *ast.DirectiveDefinition) (*Directive, error) {
	d := NewDirective(def.Name, def.Description).SetRepeatable(def.IsRepeatable)
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range def.Arguments {
		v, err := buildInputValue("@"+def.Name, arg.Name, arg.Description, arg.Type, arg.DefaultValue, arg.Directives)
		if err != nil {
			return nil, err
		}
		d.AddArgument(v)
	}
	return d, nil
}

func buildTypeRef(t *ast.Type) *TypeRef {
	ref := NamedType(t.NamedType)
	if t.Elem != nil {
		ref = ListType(buildTypeRef(t.Elem))
	}
	if t.NonNull {
		return NonNullType(ref)
	}
	return ref
}

func deprecation(dirs ast.DirectiveList) (string, bool) {
	if dirs.ForName("deprecated") == nil {
		return "", false
	}
	if reason := directiveArg(dirs, "deprecated", "reason"); reason != nil {
		return reason.Raw, true
	}
	return defaultDeprecationReason, true
}

func directiveArg(dirs ast.DirectiveList, directive, arg string) *ast.Value {
	d := dirs.ForName(directive)
	if d == nil {
		return nil
	}
	if a := d.Arguments.ForName(arg); a != nil {
		return a.Value
	}
	return nil
}

func isPrelude(pos *ast.Position) bool {
	return pos != nil && pos.Src != nil && pos.Src.BuiltIn
}
