package executor

import (
	"fmt"
	"reflect"

	language "github.com/hanpama/serverlessgql/internal/language"
	schema "github.com/hanpama/serverlessgql/internal/schema"
)

// executeSelectionSet resolves the selections of one object value. Async
// fields are left as placeholders for the batch loop. A nested object whose
// non-null field came back null is itself null; at the root the field is
// written as null and the walk continues.
func (s *executionState) executeSelectionSet(objectType *schema.Type, selections language.SelectionSet, source any, path Path) map[string]any {
	out := make(map[string]any)
	for _, group := range collectFields(s, objectType, selections) {
		key := group.ResponseName
		fieldPath := path.with(key)
		name := group.Fields[0].Name
		if name == "__typename" {
			out[key] = objectType.Name
			continue
		}
		def := objectType.Field(name)
		if def == nil {
			s.addError(fmt.Sprintf("Cannot query field '%s' on type '%s'", name, objectType.Name), fieldPath)
			continue
		}
		value := s.executeField(objectType, def, group.Fields, source, fieldPath)
		if isNullish(value) {
			if schema.IsNonNull(def.Type) && len(path) > 0 {
				return nil
			}
			value = nil
		}
		out[key] = value
	}
	return out
}

func (s *executionState) executeField(objectType *schema.Type, def *schema.Field, fields []*language.Field, source any, path Path) any {
	args := coerceArgumentValues(def, fields[0].Arguments, s.variableValues, s, path)
	if def.Async {
		s.enqueue(asyncTask{
			request:   AsyncResolveTask{ObjectType: objectType.Name, Field: def.Name, Source: source, Args: args},
			path:      path,
			fieldType: def.Type,
			fields:    fields,
		})
		return asyncPending{}
	}
	value, err := s.runtime.ResolveSync(s.ctx, objectType.Name, def.Name, source, args)
	if err != nil {
		s.errors = append(s.errors, resolverError(err, path))
		value = nil
	}
	return s.completeValue(def.Type, fields, value, path)
}

// completeAsync writes a batch result into data. A null for a non-null
// field nulls the root field it sits under and drops pending work there.
func (s *executionState) completeAsync(task asyncTask, res AsyncResolveResult, data map[string]any) {
	path := task.path
	if s.isNullified(path) {
		return
	}
	var value any
	if res.Error != nil {
		s.errors = append(s.errors, resolverError(res.Error, path))
	} else {
		value = s.completeValue(task.fieldType, task.fields, res.Value, path)
	}
	if isNullish(value) && schema.IsNonNull(task.fieldType) {
		top := path.top()
		setAt(data, top, nil)
		s.nullify(top)
		return
	}
	if isNullish(value) {
		value = nil
	}
	setAt(data, path, value)
}

func (s *executionState) completeValue(fieldType *schema.TypeRef, fields []*language.Field, value any, path Path) any {
	if schema.IsNonNull(fieldType) {
		if isNullish(value) {
			if !s.hasErrorAt(path) {
				s.addError(fmt.Sprintf("Cannot return null for non-nullable field %s", path), path)
			}
			return nil
		}
		return s.completeValue(fieldType.Unwrap(), fields, value, path)
	}
	if isNullish(value) {
		return nil
	}
	if fieldType.IsList() {
		return s.completeList(fieldType.Unwrap(), fields, value, path)
	}

	name := fieldType.GetNamedType()
	typ := s.schema.Types[name]
	if typ == nil {
		s.addError(fmt.Sprintf("Unknown type: %s", name), path)
		return nil
	}
	switch typ.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		out, err := s.runtime.SerializeLeafValue(s.ctx, name, value)
		if err != nil {
			s.addError(err.Error(), path)
			return nil
		}
		return out
	case schema.TypeKindObject:
		return s.executeSelectionSet(typ, subSelections(fields), value, path)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		concrete, err := s.runtime.ResolveType(s.ctx, name, value)
		if err != nil {
			s.addError(err.Error(), path)
			return nil
		}
		objectType := s.schema.Types[concrete]
		if objectType == nil || objectType.Kind != schema.TypeKindObject {
			s.addError(fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime. Got: %s", name, concrete), path)
			return nil
		}
		return s.executeSelectionSet(objectType, subSelections(fields), value, path)
	default:
		s.addError(fmt.Sprintf("Cannot complete value of unexpected type: %s", typ.Kind), path)
		return nil
	}
}

// completeList completes each item of a list value. Any slice type is
// accepted. A null item of a non-null item type nulls the whole list.
func (s *executionState) completeList(itemType *schema.TypeRef, fields []*language.Field, value any, path Path) any {
	items, ok := value.([]any)
	if !ok {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice {
			s.addError(fmt.Sprintf("Expected list value, got %T", value), path)
			return nil
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}
	out := make([]any, len(items))
	for i, item := range items {
		v := s.completeValue(itemType, fields, item, path.with(i))
		if isNullish(v) && itemType.IsNonNull() {
			return nil
		}
		out[i] = v
	}
	return out
}

// subSelections merges the selection sets of every field in a group.
func subSelections(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish reports nil interfaces and typed nils.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
