package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testSDL = `
type Query {
  user(id: ID!): User
  users: [User!]!
}

type Subscription {
  userAdded: User
}

"A person."
type User {
  id: ID!
  name: String
}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var docs []map[string]any
	dec := json.NewDecoder(strings.NewReader(out))
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		docs = append(docs, m)
	}
	return docs
}

func TestSDL(t *testing.T) {
	schemaFile := writeFile(t, "schema.graphql", testSDL)
	out, err := run(t, "sdl", "--schema", schemaFile)
	require.NoError(t, err)
	require.Contains(t, out, "type Query {")
	require.Contains(t, out, "users: [User!]!")
	require.Contains(t, out, "\"\"\"\nA person.\n\"\"\"\ntype User")

	_, err = run(t, "sdl", "--schema", writeFile(t, "bad.graphql", "type Query { a: Nope }"))
	require.ErrorContains(t, err, "build schema")

	_, err = run(t, "sdl")
	require.Error(t, err)
}

func TestExecQueryAgainstFixture(t *testing.T) {
	schemaFile := writeFile(t, "schema.graphql", testSDL)
	root := writeFile(t, "root.yaml", `
user:
  id: u1
  name: Ada
users:
  - {id: u1, name: Ada}
  - {id: u2}
`)
	vars := writeFile(t, "vars.json", `{"id": "u1"}`)

	out, err := run(t, "exec", "--schema", schemaFile, "--root", root, "--variables", vars,
		"--query", `query ($id: ID!) { user(id: $id) { name } users { id name } }`)
	require.NoError(t, err)

	docs := decodeLines(t, out)
	require.Len(t, docs, 1)
	require.Equal(t, map[string]any{
		"user":  map[string]any{"name": "Ada"},
		"users": []any{map[string]any{"id": "u1", "name": "Ada"}, map[string]any{"id": "u2", "name": nil}},
	}, docs[0]["data"])
	require.NotContains(t, docs[0], "errors")
}

func TestExecReportsErrorsInResult(t *testing.T) {
	schemaFile := writeFile(t, "schema.graphql", testSDL)
	query := writeFile(t, "q.graphql", "{ missing }")

	out, err := run(t, "exec", "--schema", schemaFile, "--query-file", query, "--pretty")
	require.NoError(t, err)
	require.Contains(t, out, "\n  \"errors\": [")
	require.Contains(t, out, `Cannot query field \"missing\" on type \"Query\"`)
}

func TestExecSubscriptionReplaysLists(t *testing.T) {
	schemaFile := writeFile(t, "schema.graphql", testSDL)
	root := writeFile(t, "root.yaml", `
userAdded:
  - {id: u1, name: Ada}
  - {id: u2, name: Grace}
`)

	out, err := run(t, "exec", "--schema", schemaFile, "--root", root,
		"--query", "subscription { userAdded { name } }")
	require.NoError(t, err)

	docs := decodeLines(t, out)
	require.Len(t, docs, 2)
	require.Equal(t, map[string]any{"userAdded": map[string]any{"name": "Ada"}}, docs[0]["data"])
	require.Equal(t, map[string]any{"userAdded": map[string]any{"name": "Grace"}}, docs[1]["data"])
}

func TestExecFlagErrors(t *testing.T) {
	schemaFile := writeFile(t, "schema.graphql", testSDL)

	_, err := run(t, "exec", "--schema", schemaFile)
	require.Error(t, err)

	_, err = run(t, "exec", "--schema", schemaFile, "--query", "{ users { id } }", "--log-level", "loud")
	require.ErrorContains(t, err, "--log-level")

	_, err = run(t, "exec", "--schema", schemaFile, "--query", "{ users { id } }",
		"--variables", writeFile(t, "vars.yaml", "- 1\n- 2\n"))
	require.ErrorContains(t, err, "expected a mapping")

	_, err = run(t, "exec", "--schema", schemaFile, "--query", "{ users { id } }",
		"--root", writeFile(t, "root.yaml", "1: one\n"))
	require.ErrorContains(t, err, "fixture keys must be strings")
}

func TestIsSubscription(t *testing.T) {
	require.True(t, isSubscription("subscription { a }", ""))
	require.False(t, isSubscription("{ a }", ""))
	require.True(t, isSubscription("query A { a } subscription B { b }", "B"))
	require.False(t, isSubscription("query A { a } subscription B { b }", ""))
	require.False(t, isSubscription("{", ""))
}
