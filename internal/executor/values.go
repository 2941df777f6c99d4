package executor

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	language "github.com/hanpama/serverlessgql/internal/language"
	schema "github.com/hanpama/serverlessgql/internal/schema"
)

// coerceVariableValues checks the provided variables against the
// operation's definitions. Defaults fill omitted variables; a variable may
// be keyed with or without its leading "$".
func coerceVariableValues(
	s *schema.Schema,
	operation *language.OperationDefinition,
	provided map[string]any,
) (map[string]any, error) {
	coerced := make(map[string]any)
	for _, def := range operation.VariableDefinitions {
		name, t := def.Variable, def.Type
		val, ok := lookupVariable(provided, name)
		if !ok {
			switch {
			case def.DefaultValue != nil:
				val = valueFromAST(def.DefaultValue, nil)
			case t.NonNull:
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, t.String())
			default:
				continue
			}
		}
		if val == nil && t.NonNull {
			return nil, fmt.Errorf("variable $%s of type %s cannot be null", name, t.String())
		}
		cv, err := coerceValue(s, val, typeRefFromAST(t))
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s cannot be coerced: %v", name, t.String(), err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

func lookupVariable(vars map[string]any, name string) (any, bool) {
	if v, ok := vars[name]; ok {
		return v, true
	}
	v, ok := vars["$"+name]
	return v, ok
}

// coerceArgumentValues builds the argument map passed to a resolver.
// Problems are recorded on state at path; the field still resolves with
// whatever arguments could be coerced.
func coerceArgumentValues(
	def *schema.Field,
	arguments language.ArgumentList,
	variables map[string]any,
	state *executionState,
	path Path,
) map[string]any {
	coerced := make(map[string]any)
	for _, arg := range arguments {
		argDef := findArgument(def, arg.Name)
		if argDef == nil {
			continue
		}
		if arg.Value != nil && arg.Value.Kind == language.Variable {
			if _, ok := variables[arg.Value.Raw]; !ok {
				// An unset variable behaves as if the argument was omitted.
				continue
			}
		}
		cv, err := coerceValue(state.schema, valueFromAST(arg.Value, variables), argDef.Type)
		if err != nil {
			state.addError(fmt.Sprintf("argument '%s' cannot be coerced: %v", arg.Name, err), path)
			continue
		}
		coerced[arg.Name] = cv
	}
	for _, argDef := range def.Arguments {
		name := argDef.Name
		if _, ok := coerced[name]; ok {
			continue
		}
		switch {
		case argDef.DefaultValue != nil:
			cv, err := coerceValue(state.schema, argDef.DefaultValue, argDef.Type)
			if err != nil {
				state.addError(fmt.Sprintf("argument '%s' default cannot be coerced: %v", name, err), path)
				continue
			}
			coerced[name] = cv
		case schema.IsNonNull(argDef.Type):
			state.addError(fmt.Sprintf("argument '%s' of required type was not provided", name), path)
		}
	}
	return coerced
}

func findArgument(def *schema.Field, name string) *schema.InputValue {
	for _, a := range def.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// valueFromAST converts a literal to a Go value, substituting variables
// anywhere inside it. Object fields bound to unset variables are left out
// so input defaults apply.
func valueFromAST(value *language.Value, variables map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		v, _ := lookupVariable(variables, value.Raw)
		return v
	case language.IntValue:
		n, _ := strconv.Atoi(value.Raw)
		return n
	case language.FloatValue:
		f, _ := strconv.ParseFloat(value.Raw, 64)
		return f
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = valueFromAST(c.Value, variables)
		}
		return out
	case language.ObjectValue:
		out := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			if f.Value.Kind == language.Variable {
				if _, ok := lookupVariable(variables, f.Value.Raw); !ok {
					continue
				}
			}
			out[f.Name] = valueFromAST(f.Value, variables)
		}
		return out
	}
	return nil
}

// builtinScalars coerce input values for the specified scalar types.
var builtinScalars = map[string]func(any) (any, error){
	"Int":     coerceInt,
	"Float":   coerceFloat,
	"String":  coerceString,
	"Boolean": coerceBoolean,
	"ID":      coerceID,
}

// coerceValue coerces an input value to target. Named types are looked up
// in s so enums and input objects are checked; a nil schema or an unknown
// named type passes the value through, as do custom scalars.
func coerceValue(s *schema.Schema, value any, target *schema.TypeRef) (any, error) {
	if schema.IsNonNull(target) {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type")
		}
		return coerceValue(s, value, target.Unwrap())
	}
	if value == nil {
		return nil, nil
	}
	if schema.IsList(target) {
		return coerceList(s, value, target.Unwrap())
	}

	name := schema.GetNamedType(target)
	if coerce, ok := builtinScalars[name]; ok {
		return coerce(value)
	}
	var typ *schema.Type
	if s != nil {
		typ = s.Types[name]
	}
	switch {
	case typ == nil:
		return value, nil
	case typ.Kind == schema.TypeKindEnum:
		member, ok := value.(string)
		if !ok || !typ.HasEnumValue(member) {
			return nil, fmt.Errorf("value %v is not a member of enum %s", value, typ.Name)
		}
		return member, nil
	case typ.Kind == schema.TypeKindInputObject:
		return coerceInputObject(s, value, typ)
	}
	return value, nil
}

// coerceList coerces each item of a list; a single value is wrapped in a
// list of one.
func coerceList(s *schema.Schema, value any, itemType *schema.TypeRef) (any, error) {
	items, ok := value.([]any)
	if !ok {
		items = []any{value}
	}
	out := make([]any, len(items))
	for i, item := range items {
		cv, err := coerceValue(s, item, itemType)
		if err != nil {
			return nil, err
		}
		out[i] = cv
	}
	return out, nil
}

func coerceInputObject(s *schema.Schema, value any, typ *schema.Type) (any, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object for input type %s, got %T", typ.Name, value)
	}
	for name := range fields {
		if !hasInputField(typ, name) {
			return nil, fmt.Errorf("field %q is not defined by type %s", name, typ.Name)
		}
	}
	out := make(map[string]any, len(typ.InputFields))
	for _, def := range typ.InputFields {
		raw, present := fields[def.Name]
		if !present {
			switch {
			case def.DefaultValue != nil:
				raw = def.DefaultValue
			case schema.IsNonNull(def.Type):
				return nil, fmt.Errorf("required field '%s' of type %s was not provided for %s", def.Name, def.Type, typ.Name)
			default:
				continue
			}
		}
		cv, err := coerceValue(s, raw, def.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %v", typ.Name, def.Name, err)
		}
		out[def.Name] = cv
	}
	if typ.OneOf && !exactlyOneSet(out) {
		return nil, fmt.Errorf("exactly one field must be specified for oneOf input type %s", typ.Name)
	}
	return out, nil
}

func hasInputField(typ *schema.Type, name string) bool {
	for _, def := range typ.InputFields {
		if def.Name == name {
			return true
		}
	}
	return false
}

func exactlyOneSet(fields map[string]any) bool {
	if len(fields) != 1 {
		return false
	}
	for _, v := range fields {
		return v != nil
	}
	return false
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	switch {
	case t == nil:
		return nil
	case t.NonNull:
		return schema.NonNullType(typeRefFromAST(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	case t.NamedType != "":
		return schema.NamedType(t.NamedType)
	case t.Elem != nil:
		return schema.ListType(typeRefFromAST(t.Elem))
	}
	return nil
}

func coerceInt(value any) (any, error) {
	var n int64
	switch v := value.(type) {
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != math.Trunc(v) {
			return nil, errCoerce(value, "int")
		}
		n = int64(v)
	case float32:
		if float64(v) != math.Trunc(float64(v)) {
			return nil, errCoerce(value, "int")
		}
		n = int64(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, errCoerce(value, "int")
		}
		n = i
	default:
		return nil, errCoerce(value, "int")
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return nil, fmt.Errorf("int cannot represent non 32-bit signed integer value: %d", n)
	}
	return int(n), nil
}

func coerceFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, nil
		}
	}
	return nil, errCoerce(value, "float")
}

func coerceString(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return fmt.Sprint(value), nil
}

func coerceBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, errCoerce(value, "boolean")
}

func coerceID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	}
	return fmt.Sprint(value), nil
}

func errCoerce(value any, to string) error {
	return fmt.Errorf("cannot coerce %v (%T) to %s", value, value, to)
}
