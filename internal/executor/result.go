package executor

import (
	"errors"

	language "github.com/hanpama/serverlessgql/internal/language"
)

// Location is a 1-based line/column position in the request document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError represents an error that occurred during execution
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// ExecutionResult represents the result of executing a GraphQL query.
// Data is nil when the request failed before execution started.
type ExecutionResult struct {
	Data   any            `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// ErrorsFromList converts parser and validator errors into GraphQL errors.
func ErrorsFromList(list language.ErrorList) []GraphQLError {
	out := make([]GraphQLError, 0, len(list))
	for _, e := range list {
		if e == nil {
			continue
		}
		out = append(out, fromLanguageError(e))
	}
	return out
}

// ErrorFromError converts err into a single GraphQL error. Parser errors keep
// their locations.
func ErrorFromError(err error) GraphQLError {
	var gerr *language.Error
	if errors.As(err, &gerr) {
		return fromLanguageError(gerr)
	}
	var list language.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return fromLanguageError(list[0])
	}
	return GraphQLError{Message: err.Error()}
}

func fromLanguageError(e *language.Error) GraphQLError {
	g := GraphQLError{Message: e.Message, Extensions: e.Extensions}
	for _, loc := range e.Locations {
		g.Locations = append(g.Locations, Location{Line: loc.Line, Column: loc.Column})
	}
	return g
}

// extensionsCarrier lets resolver errors attach an extensions object to the
// error entry they produce.
type extensionsCarrier interface {
	Extensions() map[string]any
}

// resolverError converts an error returned by a resolver into a located error.
func resolverError(err error, path Path) GraphQLError {
	var gerr *language.Error
	if errors.As(err, &gerr) {
		return GraphQLError{Message: gerr.Message, Path: path, Extensions: gerr.Extensions}
	}
	g := GraphQLError{Message: err.Error(), Path: path}
	var ec extensionsCarrier
	if errors.As(err, &ec) {
		g.Extensions = ec.Extensions()
	}
	return g
}
