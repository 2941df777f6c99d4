package executor

import (
	"slices"

	language "github.com/hanpama/serverlessgql/internal/language"
	schema "github.com/hanpama/serverlessgql/internal/schema"
)

// collectedField is one response key and every field node merged into it.
type collectedField struct {
	ResponseName string
	Fields       []*language.Field
}

// fieldCollector groups fields by response key, keeping first-seen order.
type fieldCollector struct {
	state   *executionState
	object  *schema.Type
	groups  []collectedField
	byKey   map[string]int
	visited map[string]bool
}

// collectFields flattens selections for objectType: fragments whose type
// condition applies are inlined, @skip and @include are honored and each
// named fragment is expanded at most once.
func collectFields(state *executionState, objectType *schema.Type, selections language.SelectionSet) []collectedField {
	c := &fieldCollector{
		state:   state,
		object:  objectType,
		byKey:   make(map[string]int),
		visited: make(map[string]bool),
	}
	c.collect(selections)
	return c.groups
}

func (c *fieldCollector) collect(selections language.SelectionSet) {
	for _, selection := range selections {
		switch sel := selection.(type) {
		case *language.Field:
			if c.included(sel.Directives) {
				c.add(sel)
			}
		case *language.InlineFragment:
			if c.included(sel.Directives) && c.applies(sel.TypeCondition) {
				c.collect(sel.SelectionSet)
			}
		case *language.FragmentSpread:
			if !c.included(sel.Directives) || c.visited[sel.Name] {
				continue
			}
			c.visited[sel.Name] = true
			def := c.state.document.Fragments.ForName(sel.Name)
			if def == nil || !c.applies(def.TypeCondition) || !c.included(def.Directives) {
				continue
			}
			c.collect(def.SelectionSet)
		}
	}
}

func (c *fieldCollector) add(field *language.Field) {
	key := field.Alias
	if key == "" {
		key = field.Name
	}
	if i, ok := c.byKey[key]; ok {
		c.groups[i].Fields = append(c.groups[i].Fields, field)
		return
	}
	c.byKey[key] = len(c.groups)
	c.groups = append(c.groups, collectedField{ResponseName: key, Fields: []*language.Field{field}})
}

// applies reports whether a fragment on typeCondition applies to the
// collected object type. An empty condition always applies.
func (c *fieldCollector) applies(typeCondition string) bool {
	if typeCondition == "" || typeCondition == c.object.Name {
		return true
	}
	cond := c.state.schema.Types[typeCondition]
	if cond == nil {
		return false
	}
	switch cond.Kind {
	case schema.TypeKindInterface:
		return slices.Contains(c.object.Interfaces, typeCondition) || slices.Contains(cond.PossibleTypes, c.object.Name)
	case schema.TypeKindUnion:
		return slices.Contains(cond.PossibleTypes, c.object.Name)
	}
	return false
}

// included evaluates @skip(if:) and @include(if:). A missing or non-boolean
// condition leaves the node in.
func (c *fieldCollector) included(directives language.DirectiveList) bool {
	if skip, ok := c.condition(directives, "skip"); ok && skip {
		return false
	}
	if include, ok := c.condition(directives, "include"); ok && !include {
		return false
	}
	return true
}

func (c *fieldCollector) condition(directives language.DirectiveList, name string) (bool, bool) {
	d := directives.ForName(name)
	if d == nil {
		return false, false
	}
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false, false
	}
	v, ok := valueFromAST(arg.Value, c.state.variableValues).(bool)
	return v, ok
}
