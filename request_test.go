package serverlessgql

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestNormalizeStringIsShorthand(t *testing.T) {
	fromString, err := Normalize("query { x }")
	require.NoError(t, err)
	fromMap, err := Normalize(map[string]any{"req": "query { x }"})
	require.NoError(t, err)
	require.Equal(t, fromMap, fromString)
	require.Equal(t, Request{Req: "query { x }"}, fromString)
}

func TestNormalizeAcceptedShapes(t *testing.T) {
	vars, err := structpb.NewStruct(map[string]any{"n": 2, "tags": []any{"a"}})
	require.NoError(t, err)
	payload, err := structpb.NewStruct(map[string]any{
		"req":            "query Q { x }",
		"variables":      map[string]any{"n": 1},
		"operationToRun": "Q",
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input any
		want  Request
	}{
		{
			name:  "request value",
			input: Request{Req: "{ x }", Root: 1},
			want:  Request{Req: "{ x }", Root: 1},
		},
		{
			name:  "request pointer",
			input: &Request{Req: "{ x }", OperationToRun: "Op"},
			want:  Request{Req: "{ x }", OperationToRun: "Op"},
		},
		{
			name: "full map",
			input: map[string]any{
				"req":            "{ x }",
				"variables":      map[string]any{"a": 1},
				"root":           "r",
				"context":        map[string]any{"user": "u"},
				"operationToRun": "Op",
				"ignored":        true,
			},
			want: Request{
				Req:            "{ x }",
				Variables:      map[string]any{"a": 1},
				Root:           "r",
				Context:        map[string]any{"user": "u"},
				OperationToRun: "Op",
			},
		},
		{
			name:  "null variables and operation",
			input: map[string]any{"req": "{ x }", "variables": nil, "operationToRun": nil},
			want:  Request{Req: "{ x }"},
		},
		{
			name:  "typed variables map",
			input: map[string]any{"req": "{ x }", "variables": map[string]string{"a": "b"}},
			want:  Request{Req: "{ x }", Variables: map[string]any{"a": "b"}},
		},
		{
			name:  "protobuf variables",
			input: map[string]any{"req": "{ x }", "variables": vars},
			want:  Request{Req: "{ x }", Variables: map[string]any{"n": float64(2), "tags": []any{"a"}}},
		},
		{
			name:  "protobuf payload",
			input: payload,
			want:  Request{Req: "query Q { x }", Variables: map[string]any{"n": float64(1)}, OperationToRun: "Q"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("request mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeRejectsInvalidShapes(t *testing.T) {
	tests := []struct {
		name  string
		input any
		field string
	}{
		{name: "nil", input: nil},
		{name: "nil request pointer", input: (*Request)(nil)},
		{name: "slice", input: []any{"{ x }"}},
		{name: "array", input: [1]string{"{ x }"}},
		{name: "number", input: 42},
		{name: "empty string", input: "", field: "req"},
		{name: "empty request", input: Request{}, field: "req"},
		{name: "missing req", input: map[string]any{"variables": map[string]any{}}, field: "req"},
		{name: "non-string req", input: map[string]any{"req": 1}, field: "req"},
		{name: "variables list", input: map[string]any{"req": "q", "variables": []any{1, 2}}, field: "variables"},
		{name: "variables scalar", input: map[string]any{"req": "q", "variables": "a=1"}, field: "variables"},
		{name: "non-string operation", input: map[string]any{"req": "q", "operationToRun": 3}, field: "operationToRun"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.input)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidRequestShape))

			var shapeErr *InvalidRequestShapeError
			require.True(t, errors.As(err, &shapeErr))
			require.Equal(t, tt.field, shapeErr.Field)
			if tt.field != "" {
				require.Contains(t, err.Error(), `"`+tt.field+`"`)
			}
		})
	}
}
