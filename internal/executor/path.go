package executor

import (
	"strconv"
	"strings"
)

// Path locates a value in the response. Elements are response keys
// (string) or list indices (int).
type Path []PathElement

type PathElement any

// String renders p with dots between elements and list indices in
// brackets, e.g. "users.[1].name".
func (p Path) String() string {
	var b strings.Builder
	for i, elem := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		switch v := elem.(type) {
		case string:
			b.WriteString(v)
		case int:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// with returns a copy of p extended by elem.
func (p Path) with(elem PathElement) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, elem)
}

// top returns the root field of p.
func (p Path) top() Path {
	for _, elem := range p {
		if name, ok := elem.(string); ok {
			return Path{name}
		}
	}
	return Path{}
}

// setAt writes value at path inside data. Objects missing along the way are
// created. A path running through null or out of a list's bounds is dropped.
func setAt(data map[string]any, path Path, value any) {
	if len(path) == 0 {
		return
	}
	var cur any = data
	for _, elem := range path[:len(path)-1] {
		switch e := elem.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return
			}
			next, exists := m[e]
			if !exists {
				next = map[string]any{}
				m[e] = next
			}
			cur = next
		case int:
			list, ok := cur.([]any)
			if !ok || e >= len(list) || list[e] == nil {
				return
			}
			cur = list[e]
		}
	}
	switch e := path[len(path)-1].(type) {
	case string:
		if m, ok := cur.(map[string]any); ok {
			m[e] = value
		}
	case int:
		if list, ok := cur.([]any); ok && e < len(list) {
			list[e] = value
		}
	}
}
