package executor

import (
	"context"
	"errors"
	"io"
	"iter"
	"sync"

	language "github.com/hanpama/serverlessgql/internal/language"
)

// ResultStream is a pull-based sequence of execution results.
//
// Next blocks until the next result is available and returns io.EOF once
// the stream is exhausted. Any other error ends the stream. Close releases
// the underlying source; Next returns io.EOF after Close. Close is safe to
// call more than once and from another goroutine than Next.
type ResultStream interface {
	Next(ctx context.Context) (*ExecutionResult, error)
	Close() error
}

// Results adapts stream to a range-over-func sequence. The stream is closed
// when iteration ends, whether by exhaustion, error or early break. An error
// is yielded once, as the final element.
func Results(ctx context.Context, stream ResultStream) iter.Seq2[*ExecutionResult, error] {
	return func(yield func(*ExecutionResult, error) bool) {
		defer stream.Close()
		for {
			res, err := stream.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(res, err) || err != nil {
				return
			}
		}
	}
}

// eventStream maps subscription events to execution results.
type eventStream struct {
	executor  *Executor
	ctx       context.Context
	cancel    context.CancelFunc
	events    <-chan any
	document  *language.QueryDocument
	operation *language.OperationDefinition
	variables map[string]any

	mu     sync.Mutex
	closed bool
}

func (s *eventStream) Next(ctx context.Context) (*ExecutionResult, error) {
	if s.isClosed() {
		return nil, io.EOF
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.ctx.Done():
		// Closed while waiting.
		return nil, io.EOF
	case event, ok := <-s.events:
		if !ok {
			s.Close()
			return nil, io.EOF
		}
		if err, isErr := event.(error); isErr {
			s.Close()
			return nil, err
		}
		return s.executor.executeOperation(s.ctx, s.document, s.operation, s.variables, event), nil
	}
}

func (s *eventStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.cancel()
	}
	return nil
}

func (s *eventStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
