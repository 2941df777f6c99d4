package serverlessgql

import (
	"errors"
	"fmt"
	"reflect"

	"google.golang.org/protobuf/types/known/structpb"
)

// Request is the normalized form of every input accepted by RunQuery and
// RunSubscription.
type Request struct {
	// Req is the GraphQL document text. Required.
	Req string `json:"req"`
	// Variables holds the operation's variable values.
	Variables map[string]any `json:"variables,omitempty"`
	// Root is the root value handed to root field resolvers.
	Root any `json:"root,omitempty"`
	// Context is made available to resolvers through RequestContext.
	Context any `json:"context,omitempty"`
	// OperationToRun names the operation to execute when Req holds several.
	OperationToRun string `json:"operationToRun,omitempty"`
}

// ErrInvalidRequestShape is matched by every error Normalize returns.
var ErrInvalidRequestShape = errors.New("invalid request shape")

// InvalidRequestShapeError reports a request input that is not a string or
// a well-formed request object.
type InvalidRequestShapeError struct {
	Field  string // empty when the input as a whole is at fault
	Reason string
}

func (e *InvalidRequestShapeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidRequestShape, e.Reason)
	}
	return fmt.Sprintf("%s: %q %s", ErrInvalidRequestShape, e.Field, e.Reason)
}

func (e *InvalidRequestShapeError) Is(target error) bool { return target == ErrInvalidRequestShape }

func invalidShape(field, reason string) error {
	return &InvalidRequestShapeError{Field: field, Reason: reason}
}

const requestShape = "{req: string, variables?: {[key]: any}, root?: any, context?: any, operationToRun?: string}"

// Normalize turns a request input into a Request. A string is shorthand for
// a request with only Req set. Request values, *Request, map[string]any
// payloads (keys req, variables, root, context, operationToRun) and
// *structpb.Struct payloads with the same keys are accepted. Only the shape
// is checked; the document text is never parsed here.
func Normalize(input any) (Request, error) {
	switch in := input.(type) {
	case string:
		return validateRequest(Request{Req: in})
	case Request:
		return validateRequest(in)
	case *Request:
		if in == nil {
			break
		}
		return validateRequest(*in)
	case map[string]any:
		return fromMap(in)
	case *structpb.Struct:
		if in == nil {
			break
		}
		return fromMap(in.AsMap())
	}
	return Request{}, invalidShape("", "request should be a string or an object with shape "+requestShape)
}

func validateRequest(r Request) (Request, error) {
	if r.Req == "" {
		return Request{}, invalidShape("req", "property of request should be a non-empty string")
	}
	return r, nil
}

func fromMap(m map[string]any) (Request, error) {
	var r Request

	req, ok := m["req"].(string)
	if !ok {
		return Request{}, invalidShape("req", "property of request should be a non-empty string")
	}
	r.Req = req

	vars, err := variablesFrom(m["variables"])
	if err != nil {
		return Request{}, err
	}
	r.Variables = vars

	if op, present := m["operationToRun"]; present && op != nil {
		s, ok := op.(string)
		if !ok {
			return Request{}, invalidShape("operationToRun", "property of request should be a string")
		}
		r.OperationToRun = s
	}

	r.Root = m["root"]
	r.Context = m["context"]
	return validateRequest(r)
}

func variablesFrom(v any) (map[string]any, error) {
	switch vars := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return vars, nil
	case *structpb.Struct:
		if vars == nil {
			return nil, nil
		}
		return vars.AsMap(), nil
	}

	// Named map types with string keys, e.g. map[string]string.
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil
	}
	return nil, invalidShape("variables", "property of request should be an object of type {[key: string]: any}")
}
