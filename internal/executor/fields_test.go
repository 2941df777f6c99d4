package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCollectFields(t *testing.T) {
	sch := buildSchema(t, `
		type Query { a: String b: String c: String pet: Pet }
		interface Named { name: String }
		type Dog implements Named { name: String barks: Boolean }
		type Cat { lives: Int }
		union Pet = Dog | Cat`)

	tests := []struct {
		name   string
		on     string
		query  string
		vars   map[string]any
		groups map[string]int // response key -> merged field nodes
		order  []string
	}{
		{
			name:   "fragments merge by response key",
			on:     "Query",
			query:  "{ a ...F1 ...F2 } fragment F1 on Query { a __typename } fragment F2 on Query { __typename }",
			order:  []string{"a", "__typename"},
			groups: map[string]int{"a": 2, "__typename": 2},
		},
		{
			name:   "aliases are separate keys",
			on:     "Query",
			query:  "{ x: a a y: a }",
			order:  []string{"x", "a", "y"},
			groups: map[string]int{"x": 1, "a": 1, "y": 1},
		},
		{
			name:   "skip and include on fields",
			on:     "Query",
			query:  "{ a b @skip(if: true) c @include(if: false) }",
			order:  []string{"a"},
			groups: map[string]int{"a": 1},
		},
		{
			name:   "directives on spreads",
			on:     "Query",
			query:  "{ a ...F1 @include(if: true) ...F2 @skip(if: true) } fragment F1 on Query { b } fragment F2 on Query { c }",
			order:  []string{"a", "b"},
			groups: map[string]int{"a": 1, "b": 1},
		},
		{
			name:   "directives on inline fragments",
			on:     "Query",
			query:  "{ a ... on Query @include(if: true) { b } ... @skip(if: true) { c } }",
			order:  []string{"a", "b"},
			groups: map[string]int{"a": 1, "b": 1},
		},
		{
			name:   "variables drive directives",
			on:     "Query",
			query:  "query($s: Boolean!) { a @skip(if: $s) b @include(if: $s) }",
			vars:   map[string]any{"s": true},
			order:  []string{"b"},
			groups: map[string]int{"b": 1},
		},
		{
			name:   "fragment expanded once",
			on:     "Query",
			query:  "{ ...F ...F } fragment F on Query { a }",
			order:  []string{"a"},
			groups: map[string]int{"a": 1},
		},
		{
			name:   "interface and union conditions",
			on:     "Dog",
			query:  "{ ... on Named { name } ... on Pet { barks } ... on Cat { lives } }",
			order:  []string{"name", "barks"},
			groups: map[string]int{"name": 1, "barks": 1},
		},
		{
			name:   "unknown condition never applies",
			on:     "Dog",
			query:  "{ ... on Missing { name } barks }",
			order:  []string{"barks"},
			groups: map[string]int{"barks": 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParseQuery(t, tt.query)
			state := NewExecutor(NewMockRuntime(nil), sch).newState(context.Background(), doc, tt.vars)

			var order []string
			groups := map[string]int{}
			for _, g := range collectFields(state, sch.Types[tt.on], doc.Operations[0].SelectionSet) {
				order = append(order, g.ResponseName)
				groups[g.ResponseName] = len(g.Fields)
			}
			if diff := cmp.Diff(tt.order, order); diff != "" {
				t.Fatalf("order mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.groups, groups); diff != "" {
				t.Fatalf("groups mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
