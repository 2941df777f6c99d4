package introspection

import (
	"fmt"
	"sync"

	language "github.com/hanpama/serverlessgql/internal/language"
	schema "github.com/hanpama/serverlessgql/internal/schema"
)

// preludeDocument is consulted for schemas that were built by hand and so
// carry no validated document of their own.
var preludeDocument = sync.OnceValues(func() (*language.SchemaAST, error) {
	return language.LoadSchema("introspection.graphql", "type Query { ok: Boolean }")
})

// extend returns a copy of sch with the __ types of the validator's prelude
// added and __schema/__type appended to the query root.
func extend(sch *schema.Schema) (*schema.Schema, error) {
	doc := sch.Document
	if doc == nil {
		var err error
		if doc, err = preludeDocument(); err != nil {
			return nil, fmt.Errorf("introspection: load prelude: %w", err)
		}
	}
	metaTypes, err := schema.MetaTypes(doc)
	if err != nil {
		return nil, fmt.Errorf("introspection: %w", err)
	}

	extended := sch.Clone()
	for _, t := range metaTypes {
		extended.AddType(t)
	}
	query := extended.GetQueryType()
	if query == nil || query.Field("__schema") != nil {
		return extended, nil
	}
	query.AddField(schema.NewField("__schema",
		"Access the current type schema of this server.",
		schema.NonNullType(schema.NamedType("__Schema"))))
	query.AddField(schema.NewField("__type",
		"Request the type information of a single type.",
		schema.NamedType("__Type")).
		AddArgument(schema.NewInputValue("name", "", schema.NonNullType(schema.NamedType("String")))))
	return extended, nil
}
