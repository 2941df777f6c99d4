package language

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadSchemaIncludesPrelude(t *testing.T) {
	s, err := LoadSchema("test.graphql", "type Query { hello: String }")
	require.NoError(t, err)
	require.NotNil(t, s.Types["__Schema"])
	require.NotNil(t, s.Types["String"])
	require.NotNil(t, s.Directives["skip"])
}

func TestParseAndValidate(t *testing.T) {
	s, err := LoadSchema("test.graphql", "type Query { hello: String }")
	require.NoError(t, err)

	_, err = ParseQuery("{ hello")
	require.Error(t, err)

	doc, err := ParseQuery("{ nope }")
	require.NoError(t, err)
	errs := Validate(s, doc)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Message, `Cannot query field "nope"`)

	doc, errs = LoadQuery(s, "query Q { hello }")
	require.Empty(t, errs)
	require.Equal(t, Query, doc.Operations.ForName("Q").Operation)
}
