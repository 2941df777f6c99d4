package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// loadFixture reads a YAML or JSON document. An empty path yields nil.
func loadFixture(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return normalizeFixture(v)
}

var errNotMapping = errors.New("fixture keys must be strings")

// normalizeFixture rejects mappings with non-string keys anywhere in v.
func normalizeFixture(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			n, err := normalizeFixture(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			t[k] = n
		}
		return t, nil
	case map[any]any:
		return nil, errNotMapping
	case []any:
		for i, item := range t {
			n, err := normalizeFixture(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			t[i] = n
		}
		return t, nil
	}
	return v, nil
}
