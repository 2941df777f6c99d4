package binder

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	argsType    = reflect.TypeFor[map[string]any]()
	errorType   = reflect.TypeFor[error]()
)

// defaultResolve reads field from source. Maps are indexed by the field name,
// structs are matched by json tag and then by field name ignoring case, and
// a method named like the field is called. Function values found this way
// are invoked with ctx and args when their signature allows it. Anything
// else resolves to null.
func defaultResolve(ctx context.Context, source any, field string, args map[string]any) (any, error) {
	if source == nil {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if m, ok := source.(map[string]any); ok {
		return invokeIfFunc(ctx, m[field], args)
	}

	rv := reflect.ValueOf(source)
	if method := methodFor(rv, field); method.IsValid() {
		if out, ok, err := callFunc(ctx, method, args); ok {
			return out, err
		}
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, nil
		}
		v := rv.MapIndex(reflect.ValueOf(field).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, nil
		}
		return invokeIfFunc(ctx, v.Interface(), args)
	case reflect.Struct:
		v, ok := structField(rv, field)
		if !ok || !v.CanInterface() {
			return nil, nil
		}
		return invokeIfFunc(ctx, v.Interface(), args)
	}
	return nil, nil
}

// structField finds the exported field of rv that serves the GraphQL field
// name. A json tag match wins over a case-insensitive name match.
func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	var byName []int
	for _, sf := range reflect.VisibleFields(rv.Type()) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		tag, hasTag := sf.Tag.Lookup("json")
		tagName := strings.Split(tag, ",")[0]
		if tagName == "-" {
			continue
		}
		if hasTag && tagName == name {
			return fieldByIndex(rv, sf.Index)
		}
		if byName == nil && (!hasTag || tagName == "") && strings.EqualFold(sf.Name, name) {
			byName = sf.Index
		}
	}
	if byName != nil {
		return fieldByIndex(rv, byName)
	}
	return reflect.Value{}, false
}

func fieldByIndex(rv reflect.Value, index []int) (reflect.Value, bool) {
	v, err := rv.FieldByIndexErr(index)
	if err != nil {
		// Embedded through a nil pointer.
		return reflect.Value{}, false
	}
	return v, true
}

// methodFor returns the exported method of rv whose name matches field
// ignoring case, or the zero Value.
func methodFor(rv reflect.Value, field string) reflect.Value {
	if !rv.IsValid() {
		return reflect.Value{}
	}
	t := rv.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if strings.EqualFold(m.Name, field) {
			return rv.Method(i)
		}
	}
	return reflect.Value{}
}

func invokeIfFunc(ctx context.Context, v any, args map[string]any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch fn := v.(type) {
	case ResolverFunc:
		return fn(ctx, nil, args)
	case func(context.Context, map[string]any) (any, error):
		return fn(ctx, args)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func {
		return v, nil
	}
	if out, ok, err := callFunc(ctx, rv, args); ok {
		return out, err
	}
	return v, nil
}

// callFunc calls fn when its signature is one of
//
//	func() T
//	func(context.Context) T
//	func(context.Context, map[string]any) T
//
// where T is a single value or a (value, error) pair. ok is false when the
// signature does not fit and fn was not called.
func callFunc(ctx context.Context, fn reflect.Value, args map[string]any) (out any, ok bool, err error) {
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, false, nil
	}
	t := fn.Type()
	if t.IsVariadic() {
		return nil, false, nil
	}

	var in []reflect.Value
	switch t.NumIn() {
	case 0:
	case 1:
		if t.In(0) != contextType {
			return nil, false, nil
		}
		in = []reflect.Value{reflect.ValueOf(ctx)}
	case 2:
		if t.In(0) != contextType || t.In(1) != argsType {
			return nil, false, nil
		}
		a := args
		if a == nil {
			a = map[string]any{}
		}
		in = []reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(a)}
	default:
		return nil, false, nil
	}

	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errorType {
			return nil, false, nil
		}
	default:
		return nil, false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			out, ok, err = nil, true, fmt.Errorf("resolver panic: %v", r)
		}
	}()
	res := fn.Call(in)
	if len(res) == 2 && !res[1].IsNil() {
		return nil, true, res[1].Interface().(error)
	}
	return res[0].Interface(), true, nil
}
